// Package fsa serializes in-memory finite-state automata to the compact
// FSA5 binary format.
//
// # Overview
//
// FSA5 is the automaton format used by Jan Daciuk's fsa utilities and by
// morfologik dictionaries: a word or morphology list compressed into a
// directed graph whose shared paths replace repeated prefixes. This
// package implements the write path. States are linearized in depth-first
// order, each arc is packed into a label byte plus a flag/address word,
// and the fixed address width (the "goto length") is the smallest width at
// which the layout reaches a fixed point. A last arc whose target is the
// state emitted right after it collapses to a single flag byte
// (TARGET_NEXT), which is what makes the width and the offsets mutually
// dependent and the fixed-point search necessary.
//
// Optionally each state record carries its right-language count (the
// number of accepted sequences starting there), the data needed to use the
// automaton as an order-preserving perfect hash.
//
// # Basic usage
//
//	b := fsa.NewBuilder()
//	for _, w := range []string{"cab", "car", "cart"} {
//		if err := b.Add([]byte(w)); err != nil {
//			// only zero-length sequences are rejected
//		}
//	}
//
//	var buf bytes.Buffer
//	n, err := fsa.NewSerializer().WithNumbers().Serialize(b.Automaton(), &buf)
//
// Any value implementing Automaton can be serialized; Builder is a
// convenience for assembling one from raw sequences and performs no
// minimization.
//
// # Determinism
//
// Serializing the same automaton twice produces byte-identical output: the
// layout depends only on the automaton's own arc order and the depth-first
// linearization, never on map iteration or randomness.
//
// # Performance characteristics
//
// Linearization visits every state once. The width search runs at most
// two dry passes per candidate width and widths grow one byte at a time
// from 1, so the whole serialization is a small constant number of passes
// over the arcs. Memory is one offset table entry per state plus, with
// numbering enabled, one count per state.
package fsa
