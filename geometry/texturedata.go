package geometry

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

var textureIDs atomic.Uint64

// TextureData is application-owned pixel data for a 2D texture or a cube
// map (six faces stored back to back: +X, -X, +Y, -Y, +Z, -Z).
//
// The generation increases on every pixel change, and on size, format,
// face count or transparency changes only when the value actually changes.
type TextureData struct {
	id         uint64
	generation uint64

	width, height   uint32
	format          gputypes.TextureFormat
	faces           int
	pixels          []byte
	hasTransparency bool
	mipmaps         bool
}

// NewTextureData returns empty RGBA8 2D texture data.
func NewTextureData() *TextureData {
	return &TextureData{
		id:         textureIDs.Add(1),
		generation: nextGeneration(),
		format:     gputypes.TextureFormatRGBA8Unorm,
		faces:      1,
	}
}

func (t *TextureData) changed() { t.generation = nextGeneration() }

// ID returns the texture identity used by the buffer cache.
func (t *TextureData) ID() uint64 { return t.id }

// Generation returns the current content generation.
func (t *TextureData) Generation() uint64 { return t.generation }

// Size returns the face size in pixels.
func (t *TextureData) Size() (width, height uint32) { return t.width, t.height }

// Format returns the pixel format.
func (t *TextureData) Format() gputypes.TextureFormat { return t.format }

// IsCube reports whether the data holds six cube faces.
func (t *TextureData) IsCube() bool { return t.faces == 6 }

// Pixels returns the pixel data.
func (t *TextureData) Pixels() []byte { return t.pixels }

// HasTransparency reports whether any pixel is not fully opaque.
func (t *TextureData) HasTransparency() bool { return t.hasTransparency }

// SetSize sets the face size.
func (t *TextureData) SetSize(width, height uint32) {
	if t.width == width && t.height == height {
		return
	}
	t.width, t.height = width, height
	t.changed()
}

// SetFormat sets the pixel format.
func (t *TextureData) SetFormat(f gputypes.TextureFormat) {
	if t.format == f {
		return
	}
	t.format = f
	t.changed()
}

// SetCube switches between one face and six.
func (t *TextureData) SetCube(cube bool) {
	faces := 1
	if cube {
		faces = 6
	}
	if t.faces == faces {
		return
	}
	t.faces = faces
	t.changed()
}

// SetHasTransparency records whether the texture needs blending.
func (t *TextureData) SetHasTransparency(v bool) {
	if t.hasTransparency == v {
		return
	}
	t.hasTransparency = v
	t.changed()
}

// GenerateMipmaps reports whether a full mip chain is built on upload.
func (t *TextureData) GenerateMipmaps() bool { return t.mipmaps }

// SetGenerateMipmaps requests a box-filtered mip chain on upload. Formats
// other than 8-bit RGBA and BGRA upload a single level regardless.
func (t *TextureData) SetGenerateMipmaps(v bool) {
	if t.mipmaps == v {
		return
	}
	t.mipmaps = v
	t.changed()
}

// mipLevels returns the number of levels the GPU copy needs.
func (t *TextureData) mipLevels() uint32 {
	if !t.mipmaps || !mipmappable(t.format) {
		return 1
	}
	return mipLevelCount(t.width, t.height)
}

// SetPixels replaces the pixel data. The generation always changes.
func (t *TextureData) SetPixels(data []byte) {
	t.pixels = data
	t.changed()
}

// validate checks that the pixels cover every face.
func (t *TextureData) validate() error {
	bpp := rhi.BytesPerPixel(t.format)
	if bpp == 0 {
		return fmt.Errorf("%w: unsupported format %s", ErrInvalidTexture, t.format)
	}
	if t.width == 0 || t.height == 0 {
		return fmt.Errorf("%w: zero size", ErrInvalidTexture)
	}
	want := uint64(t.width) * uint64(t.height) * uint64(bpp) * uint64(t.faces)
	if uint64(len(t.pixels)) != want {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInvalidTexture, len(t.pixels), want)
	}
	return nil
}

// TextureDataFromImage converts img to RGBA8 texture data.
func TextureDataFromImage(img image.Image) *TextureData {
	t := NewTextureData()
	rgba, transparent := toRGBA(img)
	b := rgba.Bounds()
	t.SetSize(uint32(b.Dx()), uint32(b.Dy()))
	t.SetHasTransparency(transparent)
	t.SetPixels(rgba.Pix)
	return t
}

// CubeTextureDataFromImages converts six equally sized face images
// (+X, -X, +Y, -Y, +Z, -Z) to RGBA8 cube texture data.
func CubeTextureDataFromImages(faces [6]image.Image) (*TextureData, error) {
	t := NewTextureData()
	t.SetCube(true)
	var size image.Point
	var pix []byte
	transparent := false
	for i, face := range faces {
		if face == nil {
			return nil, fmt.Errorf("%w: cube face %d missing", ErrInvalidTexture, i)
		}
		rgba, tr := toRGBA(face)
		if i == 0 {
			size = rgba.Bounds().Size()
		} else if rgba.Bounds().Size() != size {
			return nil, fmt.Errorf("%w: cube face %d is %v, want %v", ErrInvalidTexture, i, rgba.Bounds().Size(), size)
		}
		transparent = transparent || tr
		pix = append(pix, rgba.Pix...)
	}
	t.SetSize(uint32(size.X), uint32(size.Y))
	t.SetHasTransparency(transparent)
	t.SetPixels(pix)
	return t, nil
}

// toRGBA copies img into a tightly packed RGBA image and reports whether
// any pixel is translucent.
func toRGBA(img image.Image) (*image.RGBA, bool) {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] != 0xff {
			return dst, true
		}
	}
	return dst, false
}
