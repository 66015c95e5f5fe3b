package geometry

import (
	"math/bits"

	"github.com/gogpu/gputypes"
)

// mipLevelCount returns the number of levels of a full mip chain, down to
// a 1×1 level.
func mipLevelCount(width, height uint32) uint32 {
	return uint32(bits.Len32(max(width, height)))
}

// mipmappable reports whether mip levels can be generated for f: four
// 8-bit channels in any order.
func mipmappable(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

// generateMips builds levels 1..n-1 of a 4-byte-per-pixel image with
// faces stored back to back. Each level averages 2×2 blocks of the
// previous one; odd edges repeat the last row or column.
func generateMips(pixels []byte, width, height uint32, faces int) [][]byte {
	n := mipLevelCount(width, height)
	levels := make([][]byte, 0, n-1)
	src, w, h := pixels, width, height
	for range n - 1 {
		dw, dh := max(w/2, 1), max(h/2, 1)
		srcFace, dstFace := int(w*h*4), int(dw*dh*4)
		dst := make([]byte, dstFace*faces)
		for f := range faces {
			downsample(dst[f*dstFace:(f+1)*dstFace], src[f*srcFace:(f+1)*srcFace], w, h, dw, dh)
		}
		levels = append(levels, dst)
		src, w, h = dst, dw, dh
	}
	return levels
}

// downsample box-filters one face from w×h into dw×dh.
func downsample(dst, src []byte, w, h, dw, dh uint32) {
	at := func(x, y uint32) []byte {
		i := (min(y, h-1)*w + min(x, w-1)) * 4
		return src[i : i+4]
	}
	for y := range dh {
		for x := range dw {
			sx, sy := x*2, y*2
			p0, p1, p2, p3 := at(sx, sy), at(sx+1, sy), at(sx, sy+1), at(sx+1, sy+1)
			o := (y*dw + x) * 4
			for c := range 4 {
				dst[o+uint32(c)] = byte((uint16(p0[c]) + uint16(p1[c]) + uint16(p2[c]) + uint16(p3[c]) + 2) / 4)
			}
		}
	}
}
