// Package bhtree implements a Barnes-Hut tree generalized to any number of
// dimensions.
//
// Each internal node has up to 2^D children; child i covers the half of the
// parent region above the midpoint on every axis whose bit is set in i. The
// root region is a hyper-cube so that the width/distance test treats every
// axis alike.
//
// Insertion and force queries are iterative. Nodes come from an arena indexed
// by int32 and are overwritten in place on each rebuild.
package bhtree
