// Package scoring reduces per-frame classifier output to a composite
// manipulation risk report.
//
// The package is pure: every function is a stateless computation over its
// arguments and safe for concurrent use.
package scoring

import "strings"

// LabelScore is one label/probability pair from the image classifier.
// Classifiers usually rank entries by score but nothing here relies on
// the order.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Semantic is the recognized meaning of a classifier label.
type Semantic int

const (
	// SemanticUnknown means the label text matched no known vocabulary.
	SemanticUnknown Semantic = iota
	// SemanticFake marks labels whose score is the fake probability.
	SemanticFake
	// SemanticReal marks labels whose score is the authenticity
	// probability (fake probability is its complement).
	SemanticReal
)

// LabelMapper assigns a Semantic to a raw classifier label. Classifier
// label vocabularies are not standardized, so the mapping is pluggable
// per backend without touching the aggregation math.
type LabelMapper func(label string) Semantic

// MapLabel is the default mapper: case-insensitive substring matching
// against the vocabularies seen in common deepfake classifiers.
func MapLabel(label string) Semantic {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "fake"), strings.Contains(l, "deepfake"), strings.Contains(l, "synthetic"):
		return SemanticFake
	case strings.Contains(l, "real"), strings.Contains(l, "authentic"):
		return SemanticReal
	default:
		return SemanticUnknown
	}
}

// FakeProbability extracts a scalar "probability the content is fake"
// from one classifier result using the given mapper (MapLabel when nil).
//
// Fake-labeled entries win over real-labeled ones regardless of list
// order. With no recognized label at all, the first entry is assumed to
// be the dominant class of a binary classifier and its raw score is
// returned; polarity is then unknown, which is a documented limitation
// of heterogeneous classifier vocabularies. An empty result yields 0.5,
// maximal uncertainty.
func FakeProbability(result []LabelScore, mapper LabelMapper) float64 {
	if len(result) == 0 {
		return 0.5
	}
	if mapper == nil {
		mapper = MapLabel
	}

	for _, entry := range result {
		if mapper(entry.Label) == SemanticFake {
			return entry.Score
		}
	}
	for _, entry := range result {
		if mapper(entry.Label) == SemanticReal {
			return 1.0 - entry.Score
		}
	}

	// No recognized vocabulary anywhere: assume a binary classifier and
	// trust the top-ranked entry's raw score.
	return result[0].Score
}
