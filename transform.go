package softbody

import (
	"github.com/soypat/softbody/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is an affine transformation between the visual mesh's
// local space and world space. The zero value is the identity.
type Transform = d3.Transform

// ComposeTransform returns the transform that scales, then rotates by
// the unit quaternion q and finally translates to position.
func ComposeTransform(position, scale r3.Vec, q r3.Rotation) Transform {
	return d3.ComposeTransform(position, scale, q)
}

// Translation returns a transform that only translates by v.
func Translation(v r3.Vec) Transform {
	return Transform{}.Translate(v)
}
