// Package layout binds a mutable graph to a force simulator.
//
// A Layout creates one body per node and one spring per link, follows the
// graph's change notifications, and reports step, stability and disposal
// events to its subscribers. The caller drives it by calling Step, usually
// once per frame, until it reports a stable layout.
package layout
