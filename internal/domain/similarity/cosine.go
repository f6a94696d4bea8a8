package similarity

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/haven/internal/domain"
)

// Cosine returns dot(a,b) / (|a|*|b|) in [-1, 1].
// Vectors of different length are a caller bug and fail with domain.ErrDimensionMismatch.
// A zero-magnitude vector scores 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Rounding can push |score| a hair past 1.
	return math.Max(-1, math.Min(1, score)), nil
}
