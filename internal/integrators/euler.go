package integrators

// Lie-Euler: one stage, order 1.
var eulerLie = Tableau{
	Name:  "Lie-Euler",
	A:     [][]float64{{0}},
	B:     []float64{1},
	C:     []float64{0},
	Order: 1,
}

// Improved Lie-Euler (Heun), order 2.
var improvedEulerLie = Tableau{
	Name: "Improved Lie-Euler",
	A: [][]float64{
		{0, 0},
		{1, 0},
	},
	B:     []float64{0.5, 0.5},
	C:     []float64{0, 1},
	Order: 2,
}
