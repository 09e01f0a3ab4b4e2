package fsa

import (
	"errors"

	"github.com/RoaringBitmap/roaring"
)

// NumberProvider computes the right-language count of every reachable
// state: the number of distinct accepted sequences starting at that state.
// The serializer consumes the mapping read-only when numbering is enabled.
type NumberProvider func(Automaton) (map[int]uint64, error)

// ErrCyclicAutomaton is returned when right-language counts are requested
// for an automaton with a reachable cycle; the counts diverge there.
var ErrCyclicAutomaton = errors.New("fsa: right-language counts require an acyclic automaton")

// RightLanguageCounts is the default NumberProvider. It walks the automaton
// once with an explicit stack, computing each state's count as the sum over
// its arcs of the final bit plus the target's count.
func RightLanguageCounts(a Automaton) (map[int]uint64, error) {
	counts := make(map[int]uint64)
	root := a.Root()
	if root == 0 {
		return counts, nil
	}

	type frame struct {
		state int
		arc   int
		sum   uint64
	}

	onPath := roaring.New()
	onPath.Add(uint32(root))
	stack := []frame{{state: root, arc: a.FirstArc(root)}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]
		if f.arc == 0 {
			counts[f.state] = f.sum
			onPath.Remove(uint32(f.state))
			stack = stack[:len(stack)-1]
			continue
		}
		arc := f.arc
		if a.IsTerminal(arc) {
			if a.IsFinal(arc) {
				f.sum++
			}
			f.arc = a.NextArc(arc)
			continue
		}
		target := a.Target(arc)
		if c, ok := counts[target]; ok {
			if a.IsFinal(arc) {
				f.sum++
			}
			f.sum += c
			f.arc = a.NextArc(arc)
			continue
		}
		if onPath.Contains(uint32(target)) {
			return nil, ErrCyclicAutomaton
		}
		onPath.Add(uint32(target))
		stack = append(stack, frame{state: target, arc: a.FirstArc(target)})
	}
	return counts, nil
}
