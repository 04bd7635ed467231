package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/liesim/internal/sim"
)

type ExportData struct {
	Problem  string             `json:"problem"`
	Manifold string             `json:"manifold"`
	Method   string             `json:"method"`
	H        float64            `json:"h"`
	TStart   float64            `json:"t_start"`
	TEnd     float64            `json:"t_end"`
	Steps    int                `json:"steps"`
	Params   map[string]float64 `json:"params,omitempty"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, meta RunMetadata, flow *sim.Flow) error {
	states, times := flow.Unpack()
	data := ExportData{
		Problem:  meta.Problem,
		Manifold: meta.Manifold,
		Method:   meta.Method,
		H:        meta.H,
		TStart:   meta.TStart,
		TEnd:     meta.TEnd,
		Steps:    flow.Len() - 1,
		Params:   meta.Params,
		Times:    times,
		States:   make([][]float64, len(states)),
		Metrics:  meta.Metrics,
	}
	for i, s := range states {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
