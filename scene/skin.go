package scene

import "github.com/go-gl/mathgl/mgl32"

// BoneMatrices returns, per joint, the bone matrix
// joint.global · inverseBindPose and its normal matrix (inverse transpose
// of the upper 3x3). Joints that do not resolve yield identity matrices;
// a missing inverse bind pose counts as identity. Global transforms must
// be up to date.
func (s *Skin) BoneMatrices(g *Graph) (bones, normals []mgl32.Mat4) {
	bones = make([]mgl32.Mat4, len(s.Joints))
	normals = make([]mgl32.Mat4, len(s.Joints))
	for i, id := range s.Joints {
		j := g.Node(id)
		if j == nil {
			bones[i] = mgl32.Ident4()
			normals[i] = mgl32.Ident4()
			continue
		}
		ibp := mgl32.Ident4()
		if i < len(s.InverseBindPoses) {
			ibp = s.InverseBindPoses[i]
		}
		bones[i] = j.global.Mul4(ibp)
		normals[i] = mgl32.Mat4Normal(bones[i]).Mat4()
	}
	return bones, normals
}
