package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidClientIDRejectsComma(t *testing.T) {
	require.False(t, IsValidClientID("alice,bob"))
}

func TestIsValidClientIDRejectsEmpty(t *testing.T) {
	require.False(t, IsValidClientID(""))
}

func TestIsValidClientIDRejectsOverlong(t *testing.T) {
	require.False(t, IsValidClientID(strings.Repeat("a", maxIdentifierLen+1)))
}

func TestIsValidClientIDAcceptsOrdinaryName(t *testing.T) {
	require.True(t, IsValidClientID("alice"))
}

func TestIsValidRoomNameRejectsPipeAndWhitespace(t *testing.T) {
	require.False(t, IsValidRoomName("lobby|1"))
	require.False(t, IsValidRoomName("lobby 1"))
}
