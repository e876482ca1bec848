package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := "alice,lobby1"
	frame := Encode(CreateRoom, data)
	require.Equal(t, "DENTCP|04|0012|alice,lobby1\n", string(frame))

	line := strings.TrimSuffix(string(frame), "\n")
	decoded, reason := Decode([]byte(line))
	require.Equal(t, ReasonNone, reason)
	require.Equal(t, CreateRoom, decoded.Op)
	require.Equal(t, data, string(decoded.Data))
}

func TestDecodeAcceptsNonPaddedDigitWidths(t *testing.T) {
	decoded, reason := Decode([]byte("DENTCP|1|3|abc"))
	require.Equal(t, ReasonNone, reason)
	require.Equal(t, Login, decoded.Op)
	require.Equal(t, "abc", string(decoded.Data))
}

func TestDecodeInvalidPrefix(t *testing.T) {
	_, reason := Decode([]byte("XXXTCP|01|0005|alice"))
	require.Equal(t, ReasonInvalidPrefix, reason)
}

func TestDecodeMissingSeparatorAfterPrefix(t *testing.T) {
	_, reason := Decode([]byte("DENTCP01|0005|alice"))
	require.Equal(t, ReasonInvalidFormat, reason)
}

func TestDecodeZeroDigitOpIsInvalidFormat(t *testing.T) {
	_, reason := Decode([]byte("DENTCP||0005|alice"))
	require.Equal(t, ReasonInvalidFormat, reason)
}

func TestDecodeNonNumericOpIsInvalidOpcode(t *testing.T) {
	_, reason := Decode([]byte("DENTCP|0a|0005|alice"))
	require.Equal(t, ReasonInvalidOpcode, reason)
}

func TestDecodeOutOfSetOpcode(t *testing.T) {
	_, reason := Decode([]byte("DENTCP|99|0005|alice"))
	require.Equal(t, ReasonInvalidOpcode, reason)
}

func TestDecodeNegativeLength(t *testing.T) {
	_, reason := Decode([]byte("DENTCP|01|-001|alice"))
	require.Equal(t, ReasonInvalidLength, reason)
}

func TestDecodeDataMismatch(t *testing.T) {
	_, reason := Decode([]byte("DENTCP|01|0099|alice"))
	require.Equal(t, ReasonDataMismatch, reason)
}

func TestDecodeMissingOpSeparator(t *testing.T) {
	_, reason := Decode([]byte("DENTCP|01"))
	require.Equal(t, ReasonInvalidFormat, reason)
}

func TestDecodeDataExceedingMaxIsBufferOverflow(t *testing.T) {
	oversized := strings.Repeat("a", MaxData) // one byte past the MaxData-1 cap
	// Declare a length within range so the overflow is caught on the
	// actual payload size, not the (lying) LEN field.
	line := "DENTCP|01|" + itoa(MaxData-1) + "|" + oversized
	_, reason := Decode([]byte(line))
	require.Equal(t, ReasonBufferOverflow, reason)
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{digits[n%10]}, b...)
		n /= 10
	}
	return string(b)
}
