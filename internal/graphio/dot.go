package graphio

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/san-kum/forcelayout/internal/graph"
)

// ReadDOT parses a Graphviz document. Node attributes pos ("x,y" with an
// optional trailing "!") and pin=true set the initial position and pinning;
// the edge attribute len sets the rest length. Edges always run tail to
// head, whether or not the graph is directed.
func ReadDOT(ctx context.Context, data []byte) (*graph.Graph, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	src, err := graphviz.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer src.Close()

	g := graph.New()
	g.BeginUpdate()
	defer g.EndUpdate()

	n, err := src.FirstNode()
	for ; err == nil && n != nil; n, err = src.NextNode(n) {
		name, err := n.Name()
		if err != nil {
			return nil, fmt.Errorf("node name: %w", err)
		}
		opts, err := dotNodeOptions(name, n.GetStr("label"), n.GetStr("pos"), n.GetStr("pin"))
		if err != nil {
			return nil, err
		}
		g.AddNode(name, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("walk nodes: %w", err)
	}

	n, err = src.FirstNode()
	for ; err == nil && n != nil; n, err = src.NextNode(n) {
		e, err := src.FirstOut(n)
		for ; err == nil && e != nil; e, err = src.NextOut(e) {
			tail, err := endpointName(e.Tail)
			if err != nil {
				return nil, err
			}
			head, err := endpointName(e.Head)
			if err != nil {
				return nil, err
			}
			var opts []graph.LinkOption
			if s := e.GetStr("len"); s != "" {
				l, err := strconv.ParseFloat(s, 64)
				if err != nil || l <= 0 {
					return nil, fmt.Errorf("edge %s -> %s: bad len %q", tail, head, s)
				}
				opts = append(opts, graph.Length(l))
			}
			g.AddLink(tail, head, opts...)
		}
		if err != nil {
			return nil, fmt.Errorf("walk edges: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("walk nodes: %w", err)
	}
	return g, nil
}

func endpointName(end func() (*graphviz.Node, error)) (string, error) {
	n, err := end()
	if err != nil {
		return "", fmt.Errorf("edge endpoint: %w", err)
	}
	return n.Name()
}

func dotNodeOptions(name, label, pos, pin string) ([]graph.NodeOption, error) {
	var opts []graph.NodeOption
	if label != "" && label != `\N` && label != name {
		opts = append(opts, graph.WithLabel(label))
	}
	if pos != "" {
		coords, pinned, err := parsePos(pos)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		opts = append(opts, graph.At(coords...))
		if pinned {
			opts = append(opts, graph.Pinned())
		}
	}
	if b, err := strconv.ParseBool(pin); err == nil && b {
		opts = append(opts, graph.Pinned())
	}
	return opts, nil
}

// parsePos reads a Graphviz point, "x,y[,z...]" with an optional "!" suffix
// marking the node as fixed.
func parsePos(s string) ([]float64, bool, error) {
	s = strings.TrimSpace(s)
	pinned := strings.HasSuffix(s, "!")
	s = strings.TrimSuffix(s, "!")

	parts := strings.Split(s, ",")
	coords := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, false, fmt.Errorf("bad pos %q", s)
		}
		coords[i] = v
	}
	return coords, pinned, nil
}
