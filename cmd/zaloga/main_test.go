package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/config"
)

func TestParseFlagsOverrides(t *testing.T) {
	f, err := parseFlags([]string{"-a", ":9000", "-data", "/srv/zaloga", "-c", "zaloga.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "zaloga.yaml", f.configPath)

	cfg := &config.Config{}
	cfg.Server.Addr = ":8080"
	cfg.Data.Dir = "data"
	cfg.Log.File = "keep.log"
	f.apply(cfg)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/srv/zaloga", cfg.Data.Dir)
	assert.Equal(t, "keep.log", cfg.Log.File)
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := parseFlags([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)

	_, err = parseFlags([]string{"serve"})
	assert.Error(t, err)
}
