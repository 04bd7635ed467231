package sim

import "github.com/san-kum/liesim/internal/dynamo"

// Metric accumulates a scalar over the accepted states of a run.
type Metric interface {
	Name() string
	Observe(y dynamo.State, t float64)
	Value() float64
	Reset()
}

// Observer is notified of every accepted state, including the initial one
// as step 0.
type Observer interface {
	OnStep(step int, y dynamo.State, t float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(step int, y dynamo.State, t float64)

func (f ObserverFunc) OnStep(step int, y dynamo.State, t float64) { f(step, y, t) }

// Config is the time grid of a run: steps of size H from TStart, plus one
// shorter step if needed to land on TEnd.
type Config struct {
	TStart float64
	TEnd   float64
	H      float64
}

type Result struct {
	Flow    *Flow
	Metrics map[string]float64
	Steps   int
}
