// Copyright 2025 The Datakit Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mnist downloads, caches and normalizes the MNIST handwritten-digit
// dataset (and Fashion-MNIST, which shares its format).
//
// The first call downloads the four published gzip archives into the cache,
// parses them and stores a compressed snapshot per split; every later call is
// served from the snapshot without touching the network or the parser.
//
// Example usage:
//
//	train, test, err := mnist.GetMNIST(context.Background(), mnist.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ds, err := train.Dataset()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i := 0; i < ds.Len(); i++ {
//	    image, label := ds.At(i) // 784 float32 pixels in [0,1], label in [0,9]
//	    _ = image
//	    _ = label
//	}
//	_ = test
package mnist

import (
	"context"

	"github.com/loam-ml/datakit/internal/mnist"
)

// Config controls normalization and cache placement.
type Config = mnist.Config

// Source names a dataset and its four archive URLs.
type Source = mnist.Source

// Split is one normalized dataset split (train or test).
type Split = mnist.Split

// Images is a dense float32 image tensor with its shape.
type Images = mnist.Images

// Common errors.
var (
	// ErrInvalidNDim reports a Config.NDim outside {1, 2, 3}.
	ErrInvalidNDim = mnist.ErrInvalidNDim
	// ErrNoLabels reports a Dataset call on a split loaded without labels.
	ErrNoLabels = mnist.ErrNoLabels
)

// Built-in dataset sources.
var (
	MNIST        = mnist.MNIST
	FashionMNIST = mnist.FashionMNIST
)

// DefaultConfig returns the conventional defaults: labeled flat vectors
// scaled into [0,1], cached under the user cache directory.
func DefaultConfig() Config {
	return mnist.DefaultConfig()
}

// GetMNIST returns the normalized train and test splits of MNIST.
func GetMNIST(ctx context.Context, cfg Config) (train, test *Split, err error) {
	return mnist.Get(ctx, MNIST, cfg)
}

// GetFashionMNIST returns the normalized train and test splits of
// Fashion-MNIST.
func GetFashionMNIST(ctx context.Context, cfg Config) (train, test *Split, err error) {
	return mnist.Get(ctx, FashionMNIST, cfg)
}

// Get runs the pipeline for an arbitrary IDX-format source. Useful for
// mirrors and for MNIST-shaped datasets not built in here.
func Get(ctx context.Context, src Source, cfg Config) (train, test *Split, err error) {
	return mnist.Get(ctx, src, cfg)
}
