package extract

import "github.com/joseph-ayodele/po-tracker/internal/textscan"

// Strategy is one step of an extractor cascade. Find returns ok=false when
// the strategy has nothing valid to offer.
type Strategy[T any] struct {
	Name       string
	Confidence float64
	Find       func(t *textscan.Text) (T, bool)
}

// Candidate is a value together with the strategy that produced it.
type Candidate[T any] struct {
	Value      T       `json:"value"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
}

// Cascade tries strategies in order and returns the first hit.
func Cascade[T any](t *textscan.Text, strategies []Strategy[T]) (Candidate[T], bool) {
	for _, s := range strategies {
		if v, ok := s.Find(t); ok {
			return Candidate[T]{Value: v, Strategy: s.Name, Confidence: s.Confidence}, true
		}
	}
	var zero Candidate[T]
	return zero, false
}
