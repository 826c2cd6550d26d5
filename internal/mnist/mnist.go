// Package mnist implements the MNIST acquisition pipeline: fetch the four
// published archives, parse the IDX pairs, cache the parsed splits on disk
// and normalize them into the caller's requested shape and scale.
package mnist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/loam-ml/datakit/internal/download"
	"github.com/loam-ml/datakit/internal/idx"
	"github.com/loam-ml/datakit/internal/snapshot"
)

// Source names a dataset and its four archive URLs, two per split. Name is
// also the cache namespace the parsed snapshots live under.
type Source struct {
	Name        string
	TrainImages string
	TrainLabels string
	TestImages  string
	TestLabels  string
}

// MNIST is the classic handwritten-digit dataset. The S3 mirror serves the
// same bytes as the original yann.lecun.com archives, which now sit behind
// a cookie wall.
var MNIST = Source{
	Name:        "mnist",
	TrainImages: "https://ossci-datasets.s3.amazonaws.com/mnist/train-images-idx3-ubyte.gz",
	TrainLabels: "https://ossci-datasets.s3.amazonaws.com/mnist/train-labels-idx1-ubyte.gz",
	TestImages:  "https://ossci-datasets.s3.amazonaws.com/mnist/t10k-images-idx3-ubyte.gz",
	TestLabels:  "https://ossci-datasets.s3.amazonaws.com/mnist/t10k-labels-idx1-ubyte.gz",
}

// FashionMNIST is Zalando's drop-in replacement. Identical file format and
// geometry, so the whole pipeline is shared.
var FashionMNIST = Source{
	Name:        "fashion-mnist",
	TrainImages: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/train-images-idx3-ubyte.gz",
	TrainLabels: "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/train-labels-idx1-ubyte.gz",
	TestImages:  "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/t10k-images-idx3-ubyte.gz",
	TestLabels:  "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/t10k-labels-idx1-ubyte.gz",
}

// Config controls normalization and cache placement.
type Config struct {
	// WithLabel pairs each image with its label. When false only the image
	// tensor is populated.
	WithLabel bool
	// NDim selects the image shape: 1 → (N,784), 2 → (N,28,28),
	// 3 → (N,1,28,28).
	NDim int
	// Scale maps the byte range [0,255] onto [0,Scale].
	Scale float32
	// CacheDir is the cache root. Empty selects the user cache directory
	// (e.g. ~/.cache/datakit).
	CacheDir string
}

// DefaultConfig mirrors the conventional defaults: labeled flat vectors
// scaled into [0,1].
func DefaultConfig() Config {
	return Config{WithLabel: true, NDim: 1, Scale: 1}
}

func (c Config) validate() error {
	switch c.NDim {
	case 1, 2, 3:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidNDim, c.NDim)
	}
}

// Get runs the pipeline for both splits of src and returns the normalized
// train and test splits. The first call downloads and parses the archives;
// later calls load the cached snapshots and touch neither the network nor
// the IDX parser.
func Get(ctx context.Context, src Source, cfg Config) (train, test *Split, err error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	root, err := cacheRoot(cfg.CacheDir)
	if err != nil {
		return nil, nil, err
	}
	client, err := download.New(filepath.Join(root, "downloads"))
	if err != nil {
		return nil, nil, err
	}

	trainRaw, err := retrieve(ctx, client, root, src, "train", src.TrainImages, src.TrainLabels)
	if err != nil {
		return nil, nil, fmt.Errorf("%s train split: %w", src.Name, err)
	}
	train, err = normalize(trainRaw, cfg)
	if err != nil {
		return nil, nil, err
	}

	testRaw, err := retrieve(ctx, client, root, src, "test", src.TestImages, src.TestLabels)
	if err != nil {
		return nil, nil, fmt.Errorf("%s test split: %w", src.Name, err)
	}
	test, err = normalize(testRaw, cfg)
	if err != nil {
		return nil, nil, err
	}

	return train, test, nil
}

// cacheRoot resolves the cache root directory for an explicit or default
// configuration value.
func cacheRoot(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(base, "datakit"), nil
}

// retrieve returns the raw split, parsing the downloaded archives only when
// no snapshot exists yet.
func retrieve(ctx context.Context, client *download.Client, root string, src Source, split, imagesURL, labelsURL string) (*idx.RawSplit, error) {
	path := filepath.Join(root, src.Name, split+".dksn.gz")

	return snapshot.Ensure(path, func() (*idx.RawSplit, error) {
		imagesPath, err := client.Fetch(ctx, imagesURL)
		if err != nil {
			return nil, err
		}
		labelsPath, err := client.Fetch(ctx, labelsURL)
		if err != nil {
			return nil, err
		}

		images, err := os.Open(imagesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open image archive: %w", err)
		}
		defer images.Close()
		labels, err := os.Open(labelsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open label archive: %w", err)
		}
		defer labels.Close()

		raw, err := idx.ReadPair(images, labels)
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{"dataset": src.Name, "split": split, "records": raw.N}).Info("parsed split")
		return raw, nil
	})
}
