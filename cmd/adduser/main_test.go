package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"wallet-server/auth"
	"wallet-server/database"
	"wallet-server/repository"
)

func dbURL(t *testing.T) string {
	return "sqlite:" + filepath.Join(t.TempDir(), "wallet.db")
}

func TestRun_Success(t *testing.T) {
	url := dbURL(t)
	stdout := new(bytes.Buffer)

	args := []string{"-username", "tester", "-email", "t@example.com", "-password", "secret", "-db", url}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "User tester created successfully with ID 1")

	db, _, err := database.Open(url, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	defer database.Close(db)

	user, err := repository.New(db).GetUserByEmail(context.Background(), "t@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	ok, err := auth.CheckPassword(user.PasswordHash, "secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_Duplicate(t *testing.T) {
	url := dbURL(t)
	args := []string{"-username", "tester", "-email", "t@example.com", "-password", "secret", "-db", url}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	err := run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	args = []string{"-username", "other", "-email", "t@example.com", "-password", "secret", "-db", url}
	err = run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email t@example.com already exists")
}

func TestRun_MissingFlags(t *testing.T) {
	stdout := new(bytes.Buffer)

	err := run([]string{"-username", "tester"}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InvalidEmail(t *testing.T) {
	err := run([]string{"-username", "tester", "-email", "nope", "-password", "x"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email")
}

func TestRun_InteractivePassword(t *testing.T) {
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("typed_secret\n")

	args := []string{"-username", "tester", "-email", "t@example.com", "-db", dbURL(t)}
	require.NoError(t, run(args, stdin, stdout, new(bytes.Buffer)))
	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "created successfully")
}

func TestRun_EmptyPassword(t *testing.T) {
	args := []string{"-username", "tester", "-email", "t@example.com"}
	err := run(args, bytes.NewBufferString("\n"), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password cannot be empty")
}

func TestRun_EnvDatabaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("DATABASE_URL", "sqlite:"+path)

	args := []string{"-username", "envuser", "-email", "e@example.com", "-password", "secret"}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))
	assert.FileExists(t, path)
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run([]string{"-invalid"}, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flag provided but not defined")
}

func TestRun_TrimsEmail(t *testing.T) {
	url := dbURL(t)
	args := []string{"-username", "tester", "-email", "  t@example.com ", "-password", "secret", "-db", url}
	require.NoError(t, run(args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer)))

	db, _, err := database.Open(url, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	defer database.Close(db)

	user, err := repository.New(db).GetUserByEmail(context.Background(), "t@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user)
}
