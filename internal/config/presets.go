package config

import "sort"

var Presets = map[string]map[string]*Config{
	"sphere": {
		"default": {
			Problem: "sphere", Method: "RKMK4", H: 0.01, TEnd: 5.0,
		},
		"coarse": {
			Problem: "sphere", Method: "E1", H: 0.1, TEnd: 5.0,
		},
		"tilted": {
			Problem: "sphere", Method: "SSPRKMK3", H: 0.01, TEnd: 10.0,
			InitialValue: []float64{0.6, 0, 0.8},
			Params:       map[string]float64{"a": 1.0, "b": 0.5},
		},
	},
	"heavytop": {
		"default": {
			Problem: "heavytop", Method: "RKMK4", H: 0.01, TEnd: 5.0,
		},
		"fast": {
			Problem: "heavytop", Method: "RKMK4", H: 0.005, TEnd: 20.0,
			InitialValue: []float64{0.2, 0, 4, 0, 0.1, 1},
		},
		"heun": {
			Problem: "heavytop", Method: "E2", H: 0.01, TEnd: 5.0,
		},
	},
	"pendulum": {
		"double": {
			Problem: "pendulum", Method: "RKMK4", H: 0.001, TEnd: 10.0,
		},
		"triple": {
			Problem: "pendulum", Method: "RKMK4", H: 0.001, TEnd: 10.0,
			Params: map[string]float64{"pendula": 3, "length2": 0.25},
		},
		"moon": {
			Problem: "pendulum", Method: "SSPRKMK3", H: 0.005, TEnd: 30.0,
			Params: map[string]float64{"gravity": 1.62},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(problem, preset string) *Config {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	cfg, ok := problemPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(problem string) []string {
	problemPresets, ok := Presets[problem]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(problemPresets))
	for name := range problemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
