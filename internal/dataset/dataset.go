// Package dataset provides the labeled-pair container consumed by training
// code: an ordered, read-only view pairing each image with its label.
package dataset

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch reports images and labels that do not describe the same
// number of examples.
var ErrLengthMismatch = errors.New("images and labels describe different example counts")

// TupleDataset is an index-aligned sequence of (image, label) pairs backed
// by a flat image buffer. Index i always refers to the same logical example
// in both underlying arrays. The view is read-only; callers must not write
// through the slices it returns.
type TupleDataset struct {
	images    []float32
	labels    []int32
	imageSize int
}

// NewTuple pairs a flat image buffer with its labels. imageSize is the
// number of elements per image; len(images) must equal
// imageSize*len(labels).
func NewTuple(images []float32, imageSize int, labels []int32) (*TupleDataset, error) {
	if imageSize <= 0 {
		return nil, fmt.Errorf("invalid image size %d", imageSize)
	}
	if len(images) != imageSize*len(labels) {
		return nil, fmt.Errorf("%w: %d image elements for %d labels of size %d",
			ErrLengthMismatch, len(images), len(labels), imageSize)
	}
	return &TupleDataset{images: images, labels: labels, imageSize: imageSize}, nil
}

// Len returns the number of examples.
func (d *TupleDataset) Len() int {
	return len(d.labels)
}

// At returns example i as its image vector and label. The image slice
// aliases the dataset's backing buffer.
func (d *TupleDataset) At(i int) ([]float32, int32) {
	return d.images[i*d.imageSize : (i+1)*d.imageSize], d.labels[i]
}

// Image returns the image vector of example i.
func (d *TupleDataset) Image(i int) []float32 {
	image, _ := d.At(i)
	return image
}

// Label returns the label of example i.
func (d *TupleDataset) Label(i int) int32 {
	return d.labels[i]
}
