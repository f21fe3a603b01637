package viz

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/physics"
)

// SVGOptions controls WriteSVG output.
type SVGOptions struct {
	Width, Height int
	Radius        float64
	Theme         Theme
	Labels        bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 600, Radius: 4, Theme: ThemeMinimal}
}

// WriteSVG draws the first two axes of l as an SVG document: links as lines
// and bodies as circles, fitted to the page.
func WriteSVG(w io.Writer, l *layout.Layout, opts SVGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid svg size %dx%d", opts.Width, opts.Height)
	}
	margin := int(opts.Radius) + 1
	vp := NewViewport(l.GraphRect(), opts.Width-2*margin, opts.Height-2*margin, 1)
	at := func(p physics.Vector) (float64, float64) {
		x, y := vp.Map(p.Axis(0), p.Axis(1))
		return float64(x + margin), float64(y + margin)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	fmt.Fprintf(bw, "<g stroke=\"%s\" stroke-width=\"1\">\n", opts.Theme.Muted)
	l.Graph().ForEachLink(func(lk *graph.Link) {
		from, to, ok := l.LinkPosition(lk.ID)
		if !ok {
			return
		}
		x1, y1 := at(from)
		x2, y2 := at(to)
		fmt.Fprintf(bw, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x1, y1, x2, y2)
	})
	bw.WriteString("</g>\n")

	fmt.Fprintf(bw, "<g fill=\"%s\">\n", opts.Theme.Graph)
	l.ForEachBody(func(id string, b *physics.Body) {
		cx, cy := at(b.Pos)
		fill := ""
		if b.Pinned {
			fill = fmt.Sprintf(" fill=\"%s\"", opts.Theme.Accent)
		}
		fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"%s><title>%s</title></circle>\n",
			cx, cy, opts.Radius, fill, html.EscapeString(id))
	})
	bw.WriteString("</g>\n")

	if opts.Labels {
		fmt.Fprintf(bw, "<g fill=\"%s\" font-family=\"monospace\" font-size=\"10\">\n", opts.Theme.Header)
		l.ForEachBody(func(id string, b *physics.Body) {
			text := id
			if n := l.Graph().Node(id); n != nil && n.Label != "" {
				text = n.Label
			}
			x, y := at(b.Pos)
			fmt.Fprintf(bw, "<text x=\"%.1f\" y=\"%.1f\">%s</text>\n", x+opts.Radius+1, y-opts.Radius, html.EscapeString(text))
		})
		bw.WriteString("</g>\n")
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
