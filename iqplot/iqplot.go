// Package iqplot renders constellation diagrams. The comms package treats
// plotting as an external collaborator; this package defines the rendering
// boundary and ships one concrete renderer that streams points to a browser
// over a WebSocket.
package iqplot

import "strconv"

// Renderer draws a set of complex signal points. style is a free-form hint
// for the renderer (marker shape, color); labels, when non-nil, carries one
// annotation per point.
type Renderer interface {
	Render(points []complex128, style string, labels []string) error
}

// NumericLabels returns the default labels "0".."n-1", one per symbol value.
func NumericLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return labels
}

// Plot sends points to r, labelling each point with its symbol value when
// numbered is set.
func Plot(r Renderer, points []complex128, style string, numbered bool) error {
	var labels []string
	if numbered {
		labels = NumericLabels(len(points))
	}
	return r.Render(points, style, labels)
}
