package mnist

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/loam-ml/datakit/internal/dataset"
	"github.com/loam-ml/datakit/internal/idx"
)

// Images is a dense float32 image tensor. Data is row-major and image-major
// regardless of Shape, so image i always occupies
// Data[i*PerImage() : (i+1)*PerImage()].
type Images struct {
	Data  []float32
	Shape []int
}

// N returns the number of images.
func (im Images) N() int {
	if len(im.Shape) == 0 {
		return 0
	}
	return im.Shape[0]
}

// PerImage returns the number of elements per image.
func (im Images) PerImage() int {
	per := 1
	for _, d := range im.Shape[1:] {
		per *= d
	}
	return per
}

// At returns image i as a flat vector aliasing the backing buffer.
func (im Images) At(i int) []float32 {
	per := im.PerImage()
	return im.Data[i*per : (i+1)*per]
}

// Dense returns the images as an N×784 gonum matrix, one image per row.
// The flattened row layout is the same for every NDim, so the matrix is
// valid regardless of the configured shape. The data is copied, as gonum
// matrices are float64-backed.
func (im Images) Dense() *mat.Dense {
	data := make([]float64, len(im.Data))
	for i, v := range im.Data {
		data[i] = float64(v)
	}
	return mat.NewDense(im.N(), im.PerImage(), data)
}

// Split is one normalized dataset split. Labels is populated only when the
// split was requested with labels.
type Split struct {
	Images Images
	Labels []int32
}

// Len returns the number of examples.
func (s *Split) Len() int {
	return s.Images.N()
}

// Labeled reports whether the split carries labels.
func (s *Split) Labeled() bool {
	return s.Labels != nil
}

// Dataset pairs the split's images with its labels as an index-aligned
// tuple sequence.
func (s *Split) Dataset() (*dataset.TupleDataset, error) {
	if !s.Labeled() {
		return nil, ErrNoLabels
	}
	return dataset.NewTuple(s.Images.Data, s.Images.PerImage(), s.Labels)
}

// normalize converts a raw split into the configured shape and scale. It is
// a pure function of its inputs; raw is never mutated.
func normalize(raw *idx.RawSplit, cfg Config) (*Split, error) {
	var shape []int
	switch cfg.NDim {
	case 1:
		shape = []int{raw.N, idx.ImageSize}
	case 2:
		shape = []int{raw.N, idx.Rows, idx.Cols}
	case 3:
		shape = []int{raw.N, 1, idx.Rows, idx.Cols}
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidNDim, cfg.NDim)
	}

	// Dividing before scaling keeps the endpoints exact: 0 maps to 0 and
	// 255 maps to exactly Scale.
	data := make([]float32, len(raw.X))
	for i, b := range raw.X {
		data[i] = float32(b) / 255 * cfg.Scale
	}

	split := &Split{Images: Images{Data: data, Shape: shape}}
	if cfg.WithLabel {
		split.Labels = make([]int32, raw.N)
		for i, b := range raw.Y {
			split.Labels[i] = int32(b)
		}
	}
	return split, nil
}
