package model

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// EmbedText returns a deterministic hashed bag-of-words embedding for text.
// Texts sharing words land close under L2 distance.
func EmbedText(text string) pgvector.Vector {
	vec := make([]float32, EmbeddingDimensions)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		vec[h.Sum32()%EmbeddingDimensions]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return pgvector.NewVector(vec)
}

// SearchText is the text a catalog item is embedded from.
func (f FoodItem) SearchText() string {
	parts := append([]string{f.Name, f.Category}, f.Tags...)
	return strings.Join(parts, " ")
}

// BeforeSave refreshes the embedding whenever the item is written.
func (f *FoodItem) BeforeSave(tx *gorm.DB) error {
	f.Embedding = EmbedText(f.SearchText())
	return nil
}
