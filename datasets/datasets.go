// Copyright 2025 The Datakit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package datasets provides the labeled-pair container shared by the dataset
// packages: an ordered, read-only sequence of (image, label) tuples where
// index i always refers to the same logical example in both arrays.
package datasets

import (
	"github.com/loam-ml/datakit/internal/dataset"
)

// TupleDataset is an index-aligned sequence of (image, label) pairs.
type TupleDataset = dataset.TupleDataset

// ErrLengthMismatch reports images and labels that do not describe the same
// number of examples.
var ErrLengthMismatch = dataset.ErrLengthMismatch

// NewTuple pairs a flat image buffer with its labels. imageSize is the
// number of elements per image; len(images) must equal
// imageSize*len(labels).
func NewTuple(images []float32, imageSize int, labels []int32) (*TupleDataset, error) {
	return dataset.NewTuple(images, imageSize, labels)
}
