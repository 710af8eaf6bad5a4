// Package trace models the event stream emitted by a quantum program
// simulator.
//
// This package contains:
//   - Raw argument values (tuples, arrays, qubit handles, integer registers)
//   - Operation descriptors and applied-name computation
//   - The Listener contract and a fan-out Bus
//   - Replay of recorded event streams with pairing validation
//   - A line-oriented text format and a CBOR format for recorded traces
//   - Script, a builder for synthetic traces
package trace
