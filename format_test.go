package fsa

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	n, err := writeHeader(&buf, '_', '+', 2, 3)
	require.NoError(t, err)
	require.EqualValues(t, headerSize, n)
	require.Equal(t, []byte{'\\', 'f', 's', 'a', fsaVersion, '_', '+', 0x23}, buf.Bytes())
}

func TestWriteHeaderValidation(t *testing.T) {
	var buf bytes.Buffer
	_, err := writeHeader(&buf, '_', '+', maxNodeDataLength+1, 1)
	require.ErrorIs(t, err, ErrNodeDataTooWide)
	_, err = writeHeader(&buf, '_', '+', 0, 0)
	require.ErrorIs(t, err, ErrTooManyStates)
	require.Zero(t, buf.Len())
}

func TestPackArcAddressForm(t *testing.T) {
	var buf [scratchSize]byte
	n, ok := packArc(buf[:], 1, BitFinalArc|BitLastArc, 'x', 7)
	require.True(t, ok)
	require.Equal(t, 2, n)
	require.EqualValues(t, 'x', buf[0])
	require.EqualValues(t, 7<<addressShift|BitFinalArc|BitLastArc, buf[1])
}

func TestPackArcOverflow(t *testing.T) {
	var buf [scratchSize]byte

	// 31 is the largest one-byte-addressable offset: 31<<3 still fits.
	n, ok := packArc(buf[:], 1, BitLastArc, 'x', 31)
	require.True(t, ok)
	require.Equal(t, 2, n)

	_, ok = packArc(buf[:], 1, BitLastArc, 'x', 32)
	require.False(t, ok)

	n, ok = packArc(buf[:], 2, BitLastArc, 'x', 32)
	require.True(t, ok)
	require.Equal(t, 3, n)
}

func TestPackArcTargetNextForm(t *testing.T) {
	// TARGET_NEXT carries no address: one flag byte regardless of the
	// goto length.
	var buf [scratchSize]byte
	n, ok := packArc(buf[:], 5, BitLastArc|BitTargetNext, 'x', 0)
	require.True(t, ok)
	require.Equal(t, 2, n)
	require.EqualValues(t, BitLastArc|BitTargetNext, buf[1])
}

func TestPackNodeData(t *testing.T) {
	var buf [scratchSize]byte
	require.Equal(t, 0, packNodeData(buf[:], 0, 300))
	require.Equal(t, 2, packNodeData(buf[:], 2, 300))
	require.Equal(t, []byte{0x2c, 0x01}, buf[:2])
}
