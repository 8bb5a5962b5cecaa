package vector

import "math"

// InnerProduct returns the inner product of two vectors, or 0 when lengths differ.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Cosine returns dot(a,b) / (|a|*|b| + epsilon). Non-finite results become 0.
func Cosine(a, b []float32, epsilon float64) float64 {
	return CosineWithNorms(a, b, L2Norm(a), L2Norm(b), epsilon)
}

// CosineWithNorms is Cosine with the norms supplied by the caller.
func CosineWithNorms(a, b []float32, normA, normB, epsilon float64) float64 {
	score := InnerProduct(a, b) / (normA*normB + epsilon)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0
	}
	return score
}
