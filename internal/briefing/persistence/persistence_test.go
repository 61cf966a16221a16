package persistence

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	in := sampleRecord{Name: "alex", Count: 3}
	require.NoError(t, s.Save("profile_alex", in))

	var out sampleRecord
	found, err := Load(s, "profile_alex", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestLoadMissingKeyReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	var out sampleRecord
	found, err := Load(s, "nope", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadCorruptedFileReturnsFalseNotError(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.path("bad"), []byte("{not json"), 0o644))

	var out sampleRecord
	found, err := Load(s, "bad", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
