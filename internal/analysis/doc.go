// Package analysis projects computed flows onto two state components.
//
//   - [NewPortrait]: phase portrait of components x and y of a flow
//   - [NewPoincareSection]: points where a component crosses a level upward
//
// Both render as text with [Portrait.ASCII] or as an SVG path with
// [Portrait.WriteSVG]:
//
//	p, err := analysis.NewPortrait(flow, 3, 5)
//	fmt.Print(p.ASCII(60, 20))
package analysis
