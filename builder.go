package fsa

import (
	"errors"
	"sort"
)

// ErrEmptySequence is returned by Builder.Add for a zero-length input.
// FSA5 keeps finality on arcs, so the empty sequence has no representation.
var ErrEmptySequence = errors.New("fsa: empty sequences are not representable")

// Builder assembles an in-memory automaton from byte sequences. The result
// is a trie: sequences may be added in any order and duplicates are
// tolerated, but no suffix sharing or minimization is performed.
type Builder struct {
	// nodes[0] is reserved so that node handles are never zero; nodes[1]
	// is the root.
	nodes []builderNode
}

// builderNode keeps a node's outgoing arcs as parallel slices sorted by
// label.
type builderNode struct {
	labels []byte
	final  []bool
	child  []int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make([]builderNode, 2)}
}

// Add inserts one sequence into the automaton under construction.
func (b *Builder) Add(seq []byte) error {
	if len(seq) == 0 {
		return ErrEmptySequence
	}
	cur := 1
	for i := 0; i < len(seq); i++ {
		label := seq[i]
		node := &b.nodes[cur]
		j := sort.Search(len(node.labels), func(k int) bool { return node.labels[k] >= label })
		if j == len(node.labels) || node.labels[j] != label {
			b.nodes = append(b.nodes, builderNode{})
			child := len(b.nodes) - 1
			node = &b.nodes[cur] // append may have moved the backing array

			node.labels = append(node.labels, 0)
			copy(node.labels[j+1:], node.labels[j:])
			node.labels[j] = label

			node.final = append(node.final, false)
			copy(node.final[j+1:], node.final[j:])
			node.final[j] = false

			node.child = append(node.child, 0)
			copy(node.child[j+1:], node.child[j:])
			node.child[j] = child
		}
		if i == len(seq)-1 {
			node.final[j] = true
		}
		cur = node.child[j]
	}
	return nil
}

// Automaton returns a frozen read-only view of the current contents. The
// view shares no mutable state with the builder; sequences added later do
// not affect it.
func (b *Builder) Automaton() Automaton {
	t := &trieAutomaton{
		firstArc: make([]int, len(b.nodes)),
		label:    []byte{0}, // arc handle 0 is reserved
		final:    []bool{false},
		target:   []int{0},
		next:     []int{0},
	}
	for idx := 1; idx < len(b.nodes); idx++ {
		node := &b.nodes[idx]
		if len(node.labels) == 0 {
			// Childless nodes are reached through terminal arcs and never
			// become states of their own.
			continue
		}
		first := len(t.label)
		for j := range node.labels {
			target := node.child[j]
			if len(b.nodes[target].labels) == 0 {
				target = 0 // arc to a childless node is terminal
			}
			next := 0
			if j+1 < len(node.labels) {
				next = len(t.label) + 1
			}
			t.label = append(t.label, node.labels[j])
			t.final = append(t.final, node.final[j])
			t.target = append(t.target, target)
			t.next = append(t.next, next)
		}
		t.firstArc[idx] = first
	}
	if t.firstArc[1] != 0 {
		t.root = 1
	}
	return t
}

// trieAutomaton is the frozen arc-array view produced by Builder. Arcs of
// one state occupy consecutive handles.
type trieAutomaton struct {
	firstArc []int
	label    []byte
	final    []bool
	target   []int
	next     []int
	root     int
}

func (t *trieAutomaton) Root() int              { return t.root }
func (t *trieAutomaton) FirstArc(state int) int { return t.firstArc[state] }
func (t *trieAutomaton) NextArc(arc int) int    { return t.next[arc] }
func (t *trieAutomaton) Label(arc int) byte     { return t.label[arc] }
func (t *trieAutomaton) IsFinal(arc int) bool   { return t.final[arc] }
func (t *trieAutomaton) IsTerminal(arc int) bool { return t.target[arc] == 0 }
func (t *trieAutomaton) Target(arc int) int     { return t.target[arc] }
