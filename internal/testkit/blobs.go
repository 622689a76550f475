package testkit

import (
	"fmt"
	"math/rand"

	"edabench/domain/dataset"
)

// BlobConfig places Gaussian clusters around fixed centers
type BlobConfig struct {
	Centers    [][]float64
	PerCluster int
	Spread     float64
	Seed       int64
}

// Blobs returns a dataset with numeric columns f1..fp drawn around each
// center, plus a categorical "true_cluster" column naming the source center.
func Blobs(cfg BlobConfig) (*dataset.Dataset, error) {
	if len(cfg.Centers) == 0 || cfg.PerCluster < 1 {
		return nil, fmt.Errorf("blobs need at least one center and one point per cluster")
	}
	p := len(cfg.Centers[0])
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(cfg.Centers) * cfg.PerCluster

	features := make([][]float64, p)
	for j := range features {
		features[j] = make([]float64, 0, n)
	}
	truth := make([]string, 0, n)
	for c, center := range cfg.Centers {
		if len(center) != p {
			return nil, fmt.Errorf("center %d has %d coordinates, expected %d", c, len(center), p)
		}
		for i := 0; i < cfg.PerCluster; i++ {
			for j, mu := range center {
				features[j] = append(features[j], mu+rng.NormFloat64()*cfg.Spread)
			}
			truth = append(truth, fmt.Sprintf("c%d", c))
		}
	}

	cols := make([]*dataset.Column, 0, p+1)
	for j, f := range features {
		cols = append(cols, dataset.NewNumeric(fmt.Sprintf("f%d", j+1), f))
	}
	cols = append(cols, dataset.NewCategorical("true_cluster", truth, nil))
	return dataset.New("blobs", cols...)
}
