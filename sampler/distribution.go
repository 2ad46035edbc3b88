package sampler

import "sort"

// A piecewise-constant discrete distribution over a finite set of weights,
// supporting O(log n) inverse-CDF sampling. Immutable after construction.
type Distribution1D struct {
	// Normalized cumulative weights; non-decreasing, last entry 1 within
	// float tolerance whenever the total weight is positive.
	cdf []float32

	// Sum of the raw, pre-normalization weights.
	total float32
}

// Build a distribution from a set of non-negative weights. Negative weights
// are treated as zero. When every weight is zero the distribution is empty
// and all sampling fails.
func NewDistribution1D(weights []float32) *Distribution1D {
	d := &Distribution1D{
		cdf: make([]float32, len(weights)),
	}

	var sum float32
	for i, w := range weights {
		if w > 0 {
			sum += w
		}
		d.cdf[i] = sum
	}
	d.total = sum

	if sum > 0 {
		inv := 1.0 / sum
		for i := range d.cdf {
			d.cdf[i] *= inv
		}
	}
	return d
}

// Get the number of entries in the distribution.
func (d *Distribution1D) Count() int {
	return len(d.cdf)
}

// Get the sum of the raw weights.
func (d *Distribution1D) TotalWeight() float32 {
	return d.total
}

// Returns true when the distribution carries no probability mass.
func (d *Distribution1D) Empty() bool {
	return len(d.cdf) == 0 || d.total <= 0
}

// Sample the distribution with a uniform variate u in [0, 1]. Returns the
// sampled index and its probability mass. An empty distribution returns
// (-1, 0). u == 1 resolves to the last entry rather than running off the
// table.
func (d *Distribution1D) SampleDiscrete(u float32) (int, float32) {
	if d.Empty() {
		return -1, 0
	}

	// First cumulative entry >= u.
	index := sort.Search(len(d.cdf), func(i int) bool {
		return d.cdf[i] >= u
	})
	if index == len(d.cdf) {
		index = len(d.cdf) - 1
	}
	return index, d.Property(index)
}

// Get the normalized probability mass of entry i. Out-of-range indices and
// the empty distribution yield zero.
func (d *Distribution1D) Property(i int) float32 {
	if d.Empty() || i < 0 || i >= len(d.cdf) {
		return 0
	}
	if i == 0 {
		return d.cdf[0]
	}
	return d.cdf[i] - d.cdf[i-1]
}
