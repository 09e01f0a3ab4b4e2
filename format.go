package fsa

import (
	"errors"
	"io"
)

// FSA5 wire format constants.
//
// A serialized automaton is a fixed 8-byte header followed by state
// records. Every state record is nodeDataLength bytes of right-language
// count (little-endian, truncated) followed by the state's arc records.
// An arc record is a label byte plus a flag/address word: either a single
// flag byte (the TARGET_NEXT form) or gotoLength bytes of the flag bits
// OR'd with the target offset shifted left by addressShift, least
// significant byte first.
const (
	fsaMagic   = "\\fsa"
	fsaVersion = 5

	// Flag bits carried in the low bits of every arc's flag/address word.
	BitFinalArc   = 1 << 0 // arc completes an accepted sequence
	BitLastArc    = 1 << 1 // arc is the last outgoing arc of its state
	BitTargetNext = 1 << 2 // target starts right after this arc's last byte

	// addressShift is the left shift applied to a target offset before the
	// flag bits are OR'd in. It must leave room for exactly the three flag
	// bits above.
	addressShift = 3
	flagsMask    = 1<<addressShift - 1

	// DefaultFiller and DefaultAnnotation are the header bytes emitted when
	// the serializer is not configured otherwise.
	DefaultFiller     byte = '_'
	DefaultAnnotation byte = '+'

	// epsilonLabel marks the synthetic arc leading from the epsilon state
	// to the root.
	epsilonLabel = '^'

	// sizeofFlags is the size of the TARGET_NEXT arc form without its label.
	sizeofFlags = 1

	// maxGotoLength bounds the address width search. Offsets are uint64 and
	// the packed word must still hold offset<<addressShift.
	maxGotoLength = 8

	// maxNodeDataLength keeps the node-data length inside its header
	// nibble. uint64 counts need at most 8 bytes, well under the cap.
	maxNodeDataLength = 14

	headerSize = 8

	// scratchSize covers the largest single record piece: either a full arc
	// (1 + maxGotoLength) or the node data (maxNodeDataLength).
	scratchSize = maxNodeDataLength
)

// ErrNodeDataTooWide indicates a node-data length that cannot be encoded
// in the header nibble.
var ErrNodeDataTooWide = errors.New("fsa: node data length exceeds header range")

// writeHeader emits the fixed FSA5 header: magic, version, filler byte,
// annotation byte and the packed (nodeDataLength<<4)|gotoLength byte.
func writeHeader(w io.Writer, filler, annotation byte, nodeDataLength, gotoLength int) (int64, error) {
	if nodeDataLength < 0 || nodeDataLength > maxNodeDataLength {
		return 0, ErrNodeDataTooWide
	}
	if gotoLength < 1 || gotoLength > maxGotoLength {
		return 0, ErrTooManyStates
	}
	var hdr [headerSize]byte
	copy(hdr[:], fsaMagic)
	hdr[4] = fsaVersion
	hdr[5] = filler
	hdr[6] = annotation
	hdr[7] = byte(nodeDataLength<<4 | gotoLength)
	n, err := w.Write(hdr[:])
	return int64(n), err
}

// packArc encodes one arc record into buf. ok is false when the shifted
// target offset leaves residual bits after gotoLength bytes, the overflow
// signal consumed by the layout resolver.
func packArc(buf []byte, gotoLength int, flags uint64, label byte, targetOffset uint64) (n int, ok bool) {
	arcBytes := gotoLength
	if flags&BitTargetNext != 0 {
		arcBytes = sizeofFlags
	}
	word := flags | targetOffset<<addressShift
	buf[0] = label
	for i := 0; i < arcBytes; i++ {
		buf[1+i] = byte(word)
		word >>= 8
	}
	if word != 0 {
		return 0, false
	}
	return 1 + arcBytes, true
}

// packNodeData encodes the little-endian truncation of count into
// nodeDataLength bytes.
func packNodeData(buf []byte, nodeDataLength int, count uint64) int {
	for i := 0; i < nodeDataLength; i++ {
		buf[i] = byte(count)
		count >>= 8
	}
	return nodeDataLength
}
