package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesDocumentedConstants(t *testing.T) {
	cfg := Default()
	require.Equal(t, DefaultPort, cfg.Port)
	require.Equal(t, DefaultBind, cfg.Bind)
	require.Equal(t, 1, cfg.MaxViolations, "spec.md §9: MaxViolations must default to 1")
	require.Equal(t, 3, cfg.MaxMissedPongs)
}

func TestLoadFromArgsAcceptsPortAndBind(t *testing.T) {
	cfg, help := LoadFromArgs([]string{"9000", "127.0.0.1"})
	require.False(t, help)
	require.Equal(t, 9000, cfg.Port)
	require.Equal(t, "127.0.0.1", cfg.Bind)
}

func TestLoadFromArgsRevertsInvalidPortToDefault(t *testing.T) {
	cfg, _ := LoadFromArgs([]string{"not-a-port"})
	require.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadFromArgsHelpFlag(t *testing.T) {
	_, help := LoadFromArgs([]string{"--help"})
	require.True(t, help)
}
