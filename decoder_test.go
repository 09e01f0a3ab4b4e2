package fsa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fsaImage is a minimal reader over a serialized FSA5 stream, just enough
// for the tests to verify what the serializer produced. Reading is not
// part of the package's public surface.
type fsaImage struct {
	arcs       []byte // region after the header; state offsets index into it
	gtl        int
	ndl        int
	filler     byte
	annotation byte
}

func parseImage(t *testing.T, stream []byte) *fsaImage {
	t.Helper()
	require.GreaterOrEqual(t, len(stream), headerSize)
	require.Equal(t, fsaMagic, string(stream[:4]))
	require.EqualValues(t, fsaVersion, stream[4])
	packed := stream[7]
	return &fsaImage{
		arcs:       stream[headerSize:],
		gtl:        int(packed & 0x0f),
		ndl:        int(packed >> 4),
		filler:     stream[5],
		annotation: stream[6],
	}
}

// arcAt decodes the arc record at p. end is the first byte after the
// record. target is the offset of the target state record, 0 for a
// terminal arc; in the TARGET_NEXT form the target starts at end.
func (f *fsaImage) arcAt(p int) (label, flags byte, end, target int) {
	label = f.arcs[p]
	flags = f.arcs[p+1] & flagsMask
	if flags&BitTargetNext != 0 {
		end = p + 2
		target = end
		return
	}
	var word uint64
	for i := 0; i < f.gtl; i++ {
		word |= uint64(f.arcs[p+1+i]) << (8 * i)
	}
	end = p + 1 + f.gtl
	target = int(word >> addressShift)
	return
}

// root returns the offset of the root state record by following the
// epsilon arc, or 0 for an empty automaton.
func (f *fsaImage) root() int {
	dummy := f.ndl + 1 + f.gtl
	_, flags, _, target := f.arcAt(dummy + f.ndl)
	if flags&BitTargetNext == 0 {
		return 0
	}
	return target
}

// count reads the stored right-language count of the state record at off.
func (f *fsaImage) count(off int) uint64 {
	var c uint64
	for i := 0; i < f.ndl; i++ {
		c |= uint64(f.arcs[off+i]) << (8 * i)
	}
	return c
}

// enumerate returns every accepted sequence in traversal order together
// with the per-state-record count of sequences below it. Only valid for
// acyclic automata.
func (f *fsaImage) enumerate() ([][]byte, map[int]uint64) {
	var out [][]byte
	subtree := make(map[int]uint64)
	root := f.root()
	if root == 0 {
		return out, subtree
	}
	var walk func(off int, prefix []byte) uint64
	walk = func(off int, prefix []byte) uint64 {
		var n uint64
		p := off + f.ndl
		for {
			label, flags, end, target := f.arcAt(p)
			seq := append(append([]byte(nil), prefix...), label)
			if flags&BitFinalArc != 0 {
				out = append(out, seq)
				n++
			}
			if target != 0 {
				n += walk(target, seq)
			}
			if flags&BitLastArc != 0 {
				break
			}
			p = end
		}
		subtree[off] = n
		return n
	}
	walk(root, nil)
	return out, subtree
}

// sequences is enumerate flattened to strings for easy comparison.
func (f *fsaImage) sequences() []string {
	seqs, _ := f.enumerate()
	out := make([]string, len(seqs))
	for i, s := range seqs {
		out[i] = string(s)
	}
	return out
}
