// ABOUTME: Distance metrics for ranking query hits
// ABOUTME: Distances follow the lower-is-closer convention used for ranking
package vectorstore

import "math"

// Metric names a distance function
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
	MetricIP     Metric = "ip"
)

// IsValid reports whether the metric is supported
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricL2, MetricIP:
		return true
	}
	return false
}

// Distance computes the distance between two equal-length vectors.
// cosine: 1 - cos(a,b); l2: squared euclidean; ip: 1 - a·b
func (m Metric) Distance(a, b []float64) float64 {
	switch m {
	case MetricL2:
		var sum float64
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return sum
	case MetricIP:
		return 1 - dot(a, b)
	}
	return 1 - CosineSimilarity(a, b)
}

// CosineSimilarity calculates cosine similarity between two vectors
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
