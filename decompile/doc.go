// Package decompile turns operation-enter events into indented pseudocode.
//
// Arguments are first normalized into a small canonical shape (integers,
// labels, qubit registers, sequences). Registers are then rendered through
// an allocation table that gives live qubit groups short names (a, b, ...),
// and index lists are compressed into slice notation ([2:5], [5:3:-1]).
//
// The Printer is a trace.Listener that applies depth and terminal-operation
// suppression on top of the Decompiler. A Printer, its Decompiler and its
// Allocations belong to exactly one trace and are not safe for concurrent
// use.
package decompile
