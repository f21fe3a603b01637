package viz

import (
	"math"

	"github.com/san-kum/forcelayout/internal/physics"
)

// Viewport maps layout coordinates on the first two axes onto canvas dots,
// keeping the aspect ratio and leaving a margin of one dot.
type Viewport struct {
	cx, cy float64
	scale  float64
	w, h   int
}

// NewViewport fits box into a w x h dot area. zoom > 1 magnifies around the
// box center.
func NewViewport(box physics.Box, w, h int, zoom float64) Viewport {
	v := Viewport{w: w, h: h, scale: 1}
	if len(box.Min) < 2 {
		return v
	}
	v.cx = (box.Min[0] + box.Max[0]) / 2
	v.cy = (box.Min[1] + box.Max[1]) / 2

	bw := box.Max[0] - box.Min[0]
	bh := box.Max[1] - box.Min[1]
	sx, sy := math.Inf(1), math.Inf(1)
	if bw > 0 {
		sx = float64(w-2) / bw
	}
	if bh > 0 {
		sy = float64(h-2) / bh
	}
	if s := math.Min(sx, sy); !math.IsInf(s, 1) {
		v.scale = s
	}
	if zoom > 0 {
		v.scale *= zoom
	}
	return v
}

// Map returns the dot for (x, y). The y axis points up.
func (v Viewport) Map(x, y float64) (int, int) {
	px := float64(v.w)/2 + (x-v.cx)*v.scale
	py := float64(v.h)/2 - (y-v.cy)*v.scale
	return int(math.Round(px)), int(math.Round(py))
}
