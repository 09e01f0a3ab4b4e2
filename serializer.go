package fsa

import (
	"errors"
	"io"

	"github.com/RoaringBitmap/roaring"
)

var (
	// ErrLayoutInconsistent reports an internal fault: the final emission
	// pass derived a state offset that disagrees with the dry-run table.
	ErrLayoutInconsistent = errors.New("fsa: layout diverged from dry-run offsets")

	// ErrTooManyStates is returned when no goto length up to maxGotoLength
	// can address the serialized automaton.
	ErrTooManyStates = errors.New("fsa: automaton too large to address")
)

// Serializer writes automata in the FSA5 format. Each Serialize call owns
// its own transient tables, so distinct Serializer values may run
// concurrently; a single value must not be shared between goroutines.
type Serializer struct {
	// Filler and Annotation pass through into the header unchanged and do
	// not affect the produced layout.
	Filler     byte
	Annotation byte

	withNumbers bool
	provider    NumberProvider

	// offsets maps state handle -> byte offset within the arcs region.
	// Populated by the dry-run passes, asserted by the real pass.
	offsets map[int]uint64
	numbers map[int]uint64
}

// NewSerializer returns a Serializer with the default filler and
// annotation bytes and numbering disabled.
func NewSerializer() *Serializer {
	return &Serializer{Filler: DefaultFiller, Annotation: DefaultAnnotation}
}

// WithNumbers enables per-state right-language counts in the output, the
// input required for perfect hashing. Returns the receiver for chaining.
func (s *Serializer) WithNumbers() *Serializer {
	s.withNumbers = true
	return s
}

// WithNumberProvider enables numbering with a caller-supplied provider
// instead of RightLanguageCounts.
func (s *Serializer) WithNumberProvider(p NumberProvider) *Serializer {
	s.withNumbers = true
	s.provider = p
	return s
}

// WithFiller sets the filler byte written into the header.
func (s *Serializer) WithFiller(b byte) *Serializer {
	s.Filler = b
	return s
}

// WithAnnotationSeparator sets the annotation byte written into the header.
func (s *Serializer) WithAnnotationSeparator(b byte) *Serializer {
	s.Annotation = b
	return s
}

// Serialize writes the automaton to w in FSA5 format and returns the
// number of bytes written. Sink errors abort immediately; a partially
// written stream must be discarded by the caller.
//
// The goto length (bytes per target address) and the resulting state
// offsets depend on each other: the TARGET_NEXT form makes an arc's size a
// function of other states' offsets. The smallest stable width is found by
// relaxation, the same way a two-pass assembler assigns addresses: for
// each candidate width run a dry pass to place states, then a second dry
// pass to confirm the placement still holds; grow the width on any
// overflow and try again.
func (s *Serializer) Serialize(a Automaton, w io.Writer) (int64, error) {
	linearized := linearize(a)

	s.offsets = make(map[int]uint64, len(linearized))
	s.numbers = nil

	nodeDataLength := 0
	if s.withNumbers {
		provider := s.provider
		if provider == nil {
			provider = RightLanguageCounts
		}
		numbers, err := provider(a)
		if err != nil {
			return 0, err
		}
		s.numbers = numbers
		// The root's count is the maximum: its right language contains
		// every other state's.
		for max := numbers[a.Root()]; max > 0; max >>= 8 {
			nodeDataLength++
		}
	}

	gotoLength := 1
	for {
		// First pass places every state; the second confirms the placement
		// is a fixed point under the TARGET_NEXT size dependency.
		_, ok, err := s.emitArcs(a, nil, linearized, gotoLength, nodeDataLength)
		if err != nil {
			return 0, err
		}
		if ok {
			_, ok, err = s.emitArcs(a, nil, linearized, gotoLength, nodeDataLength)
			if err != nil {
				return 0, err
			}
			if ok {
				break
			}
		}
		gotoLength++
		if gotoLength > maxGotoLength {
			return 0, ErrTooManyStates
		}
	}

	written, err := writeHeader(w, s.Filler, s.Annotation, nodeDataLength, gotoLength)
	if err != nil {
		return written, err
	}

	n, ok, err := s.emitArcs(a, w, linearized, gotoLength, nodeDataLength)
	written += n
	if err != nil {
		return written, err
	}
	if !ok {
		// The accepted width overflowed in the final pass; the resolver
		// and the emitter disagree.
		return written, ErrLayoutInconsistent
	}
	return written, nil
}

// linearize orders every state reachable from the root in depth-first
// discovery order. States are marked visited when emitted, before their
// children are pushed, so shared and re-converging targets appear exactly
// once and cyclic graphs terminate.
func linearize(a Automaton) []int {
	root := a.Root()
	if root == 0 {
		return nil
	}
	visited := roaring.New()
	stack := []int{root}
	var linearized []int
	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Contains(uint32(state)) {
			continue
		}
		visited.Add(uint32(state))
		linearized = append(linearized, state)
		for arc := a.FirstArc(state); arc != 0; arc = a.NextArc(arc) {
			if a.IsTerminal(arc) {
				continue
			}
			if target := a.Target(arc); !visited.Contains(uint32(target)) {
				stack = append(stack, target)
			}
		}
	}
	return linearized
}

// emitArcs runs one layout pass over the linearized states. With w == nil
// it is a dry run: offsets are recorded and no bytes leave the function.
// With a sink it is the real pass: offsets are asserted against the
// recorded table instead. ok is false when an arc's address does not fit
// in gotoLength bytes.
func (s *Serializer) emitArcs(a Automaton, w io.Writer, linearized []int, gotoLength, nodeDataLength int) (int64, bool, error) {
	var (
		buf     [scratchSize]byte
		written int64
		offset  uint64
	)

	writeBuf := func(n int) error {
		if w == nil || n == 0 {
			return nil
		}
		nn, err := w.Write(buf[:n])
		written += int64(nn)
		return err
	}

	// Dummy terminal state at offset 0.
	n := packNodeData(buf[:], nodeDataLength, 0)
	if err := writeBuf(n); err != nil {
		return written, false, err
	}
	offset += uint64(n)
	n, _ = packArc(buf[:], gotoLength, 0, 0, 0)
	if err := writeBuf(n); err != nil {
		return written, false, err
	}
	offset += uint64(n)

	// Epsilon state: a single arc leading to the root, or a terminal arc
	// when the automaton is empty.
	n = packNodeData(buf[:], nodeDataLength, 0)
	if err := writeBuf(n); err != nil {
		return written, false, err
	}
	offset += uint64(n)
	epsFlags := uint64(BitLastArc)
	if a.Root() != 0 {
		epsFlags |= BitTargetNext
	}
	n, _ = packArc(buf[:], gotoLength, epsFlags, epsilonLabel, 0)
	if err := writeBuf(n); err != nil {
		return written, false, err
	}
	offset += uint64(n)

	for j, state := range linearized {
		if w == nil {
			s.offsets[state] = offset
		} else if s.offsets[state] != offset {
			return written, false, ErrLayoutInconsistent
		}

		var count uint64
		if s.numbers != nil {
			count = s.numbers[state]
		}
		n = packNodeData(buf[:], nodeDataLength, count)
		if err := writeBuf(n); err != nil {
			return written, false, err
		}
		offset += uint64(n)

		for arc := a.FirstArc(state); arc != 0; arc = a.NextArc(arc) {
			var (
				target       int
				targetOffset uint64
			)
			if !a.IsTerminal(arc) {
				target = a.Target(arc)
				targetOffset = s.offsets[target]
			}

			var flags uint64
			if a.IsFinal(arc) {
				flags |= BitFinalArc
			}
			if a.NextArc(arc) == 0 {
				flags |= BitLastArc
				if j+1 < len(linearized) && target == linearized[j+1] && targetOffset != 0 {
					flags |= BitTargetNext
					targetOffset = 0
				}
			}

			n, ok := packArc(buf[:], gotoLength, flags, a.Label(arc), targetOffset)
			if !ok {
				// gotoLength too small, interrupt eagerly.
				return written, false, nil
			}
			if err := writeBuf(n); err != nil {
				return written, false, err
			}
			offset += uint64(n)
		}
	}

	return written, true, nil
}
