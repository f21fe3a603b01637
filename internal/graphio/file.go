package graphio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/forcelayout/internal/graph"
)

// ReadFile loads a graph, choosing the format from the file extension:
// .json for node-link documents, .dot or .gv for Graphviz.
func ReadFile(ctx context.Context, path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g *graph.Graph
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		g, err = ReadJSON(bytes.NewReader(data))
	case ".dot", ".gv":
		g, err = ReadDOT(ctx, data)
	default:
		return nil, fmt.Errorf("unsupported graph format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
