package service

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator), or
// nil with fewer than two observations.
func sampleStdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	avg := mean(values)
	var squared float64
	for _, v := range values {
		squared += (v - avg) * (v - avg)
	}
	stddev := math.Sqrt(squared / float64(len(values)-1))
	return &stddev
}
