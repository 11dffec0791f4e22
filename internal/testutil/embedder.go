package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
)

// embeddingDims keeps mock vectors small; similarity math does not care.
const embeddingDims = 16

// MockEmbedding deterministically embeds text by hashing its words, so
// texts sharing words land near each other and identical text embeds
// identically across runs.
func MockEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, embeddingDims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		sum := sha256.Sum256([]byte(word))
		idx := binary.BigEndian.Uint32(sum[:4]) % embeddingDims
		vec[idx]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}

	out := make([]float32, embeddingDims)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}
