package fsa

// Automaton is a read-only traversal capability over a finite-state
// automaton. States and arcs are opaque integer handles owned by the
// implementation; handle 0 is reserved and never identifies a real state
// or arc.
//
// Arc order within a state is a total order exposed through FirstArc and
// NextArc. The graph need not be a tree: many arcs may share a target
// state, and back references are allowed.
type Automaton interface {
	// Root returns the root state, or 0 if the automaton is empty.
	Root() int

	// FirstArc returns the first outgoing arc of state, or 0 if the state
	// has none.
	FirstArc(state int) int

	// NextArc returns the arc following arc within the same state, or 0 if
	// arc is the last one.
	NextArc(arc int) int

	// Label returns the byte label of arc.
	Label(arc int) byte

	// IsFinal reports whether arc completes an accepted sequence.
	IsFinal(arc int) bool

	// IsTerminal reports whether arc has no target state.
	IsTerminal(arc int) bool

	// Target returns the target state of arc. The result is undefined for
	// terminal arcs.
	Target(arc int) int
}
