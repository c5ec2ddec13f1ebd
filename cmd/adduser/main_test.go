package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "success.db")
	stdout := new(bytes.Buffer)

	args := []string{"-name", "Alice", "-email", "Alice@Example.com", "-password", "secret1", "-db", dbPath}
	err := run(args, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "User alice@example.com created successfully")
	assert.FileExists(t, dbPath)
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "duplicate.db")
	args := []string{"-name", "Alice", "-email", "alice@example.com", "-password", "secret1", "-db", dbPath}

	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)), "first run should succeed")

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)

	err := run([]string{"-password", "secret1"}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "interactive.db")
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	args := []string{"-name", "Bob", "-email", "bob@example.com", "-db", dbPath}
	err := run(args, stdin, stdout, new(bytes.Buffer))
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "User bob@example.com created successfully")
}

func TestRun_PasswordRules(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		want  string
	}{
		{"empty", "\n", "password cannot be empty"},
		{"too short", "abc\n", "at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"-name", "Carol", "-email", "carol@example.com"}
			err := run(args, bytes.NewBufferString(tt.stdin), new(bytes.Buffer), new(bytes.Buffer))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_EnvDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", dbPath)

	args := []string{"-name", "Dana", "-email", "dana@example.com", "-password", "secret1"}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	assert.FileExists(t, dbPath)
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run([]string{"-invalid"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined")
}
