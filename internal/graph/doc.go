// Package graph is a small mutable graph that reports its changes.
//
// Every AddNode, AddLink, RemoveNode and RemoveLink produces [Change]
// entries for subscribers. Mutations made between BeginUpdate and EndUpdate
// are delivered as one batch, in the order they happened.
package graph
