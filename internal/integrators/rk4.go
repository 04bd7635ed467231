package integrators

// Classical fourth order RK lifted to RKMK.
var rkmk4 = Tableau{
	Name: "RKMK4",
	A: [][]float64{
		{0, 0, 0, 0},
		{0.5, 0, 0, 0},
		{0, 0.5, 0, 0},
		{0, 0, 1, 0},
	},
	B:     []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
	C:     []float64{0, 0.5, 0.5, 1},
	Order: 4,
}
