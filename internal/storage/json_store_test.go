package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewJSONStore(dir)
	require.NoError(t, s.Init())

	require.NoError(t, s.PutRecord("subjects", []byte(`[{"id":"1"}]`)))

	got, err := s.GetRecord("subjects")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(got))

	info, err := os.Stat(filepath.Join(dir, "subjects.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestJSONStore_Overwrite(t *testing.T) {
	s := NewJSONStore(t.TempDir())
	require.NoError(t, s.Init())

	require.NoError(t, s.PutRecord("todayTasks", []byte(`[1]`)))
	require.NoError(t, s.PutRecord("todayTasks", []byte(`[]`)))

	got, err := s.GetRecord("todayTasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestJSONStore_MissingRecord(t *testing.T) {
	s := NewJSONStore(t.TempDir())
	require.NoError(t, s.Init())

	_, err := s.GetRecord("subjects")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestJSONStore_RecordsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir)
	require.NoError(t, s.Init())

	require.NoError(t, s.PutRecord("subjects", []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todayTasks.json"), []byte("{not json"), 0600))

	got, err := s.GetRecord("subjects")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestJSONStore_LoadRequiresInit(t *testing.T) {
	s := NewJSONStore(filepath.Join(t.TempDir(), "missing"))
	err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "studymon init")
}

func TestJSONStore_LoadRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	err := NewJSONStore(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestJSONStore_NotLoaded(t *testing.T) {
	s := NewJSONStore(t.TempDir())

	_, err := s.GetRecord("subjects")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, s.PutRecord("subjects", nil), ErrNotLoaded)
}

func TestJSONStore_InvalidKeys(t *testing.T) {
	s := NewJSONStore(t.TempDir())
	require.NoError(t, s.Init())

	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, s.PutRecord(key, []byte("x")))
			_, err := s.GetRecord(key)
			assert.Error(t, err)
		})
	}
}

func TestJSONStore_ReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir)
	require.NoError(t, s.Init())
	require.NoError(t, s.PutRecord("subjects", []byte(`["a"]`)))
	require.NoError(t, s.Close())

	reopened := NewJSONStore(dir)
	require.NoError(t, reopened.Load())
	got, err := reopened.GetRecord("subjects")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(got))
	assert.Equal(t, dir, reopened.GetConfigPath())
}

func TestJSONStore_Reset(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(dir)
	require.NoError(t, s.Init())
	require.NoError(t, s.PutRecord("subjects", []byte(`[]`)))
	require.NoError(t, s.PutRecord("todayTasks", []byte(`[]`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0600))

	require.NoError(t, s.Reset())

	_, err := s.GetRecord("subjects")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}
