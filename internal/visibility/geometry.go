// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package visibility

// Rect is a span on the scroll axis of a single-column feed.
type Rect struct {
	Top    float64
	Height float64
}

// Bottom returns the exclusive lower edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Ratio returns the fraction of r's area that lies inside viewport, in [0,1].
// A zero-height rect is never visible.
func (r Rect) Ratio(viewport Rect) float64 {
	if r.Height <= 0 || viewport.Height <= 0 {
		return 0
	}
	top := max(r.Top, viewport.Top)
	bottom := min(r.Bottom(), viewport.Bottom())
	if bottom <= top {
		return 0
	}
	return (bottom - top) / r.Height
}
