// Package graphio loads graphs for layout from JSON node-link documents and
// DOT files, and builds synthetic graphs from named generators.
package graphio
