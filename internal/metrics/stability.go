package metrics

import (
	"math"

	"github.com/san-kum/liesim/internal/dynamo"
)

// Stability is the fraction of observed states that are finite and bounded
// by threshold in every component.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(y dynamo.State, _ float64) {
	s.samples++
	if !y.IsValid() {
		s.violations++
		return
	}
	for _, val := range y {
		if math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
