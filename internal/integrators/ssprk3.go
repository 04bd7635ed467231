package integrators

// Shu-Osher strong-stability-preserving RK3 lifted to RKMK.
var ssprkmk3 = Tableau{
	Name: "SSP-RKMK3",
	A: [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0.25, 0.25, 0},
	},
	B:     []float64{1.0 / 6.0, 1.0 / 6.0, 2.0 / 3.0},
	C:     []float64{0, 1, 0.5},
	Order: 3,
}
