package configfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlattensNestedTables(t *testing.T) {
	raw := `
create_if_missing = true
max_open_files = 64

[rate_limiter]
rate_bytes_per_sec = 1000
refill_period_us = 50
`
	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "true", got["create_if_missing"])
	assert.Equal(t, "64", got["max_open_files"])
	assert.Equal(t, "1000", got["rate_limiter.rate_bytes_per_sec"])
	assert.Equal(t, "50", got["rate_limiter.refill_period_us"])
}

func TestParseFlattensArraysWithColon(t *testing.T) {
	raw := `listeners = ["host1", "host2", "host3"]`
	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "host1:host2:host3", got["listeners"])
}

func TestParseInvalidTOML(t *testing.T) {
	_, err := Parse("this is not = = valid toml [[[")
	require.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	got, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/does/not/exist.toml")
	require.Error(t, err)
}
