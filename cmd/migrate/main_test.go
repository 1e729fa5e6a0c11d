package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_UpStatusDown(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:"+filepath.Join(t.TempDir(), "wallet.db"))
	ctx := context.Background()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	require.NoError(t, run(ctx, nil, stdout, stderr))
	assert.Contains(t, stdout.String(), "Applied 0001_create_tables")

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"up"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "Nothing to apply")

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"status"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "applied")

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"down"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "Rolled back 0001_create_tables")

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"status"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "pending")

	stdout.Reset()
	require.NoError(t, run(ctx, []string{"down"}, stdout, stderr))
	assert.Contains(t, stdout.String(), "Nothing to roll back")
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite::memory:")
	stderr := new(bytes.Buffer)

	err := run(context.Background(), []string{"sideways"}, new(bytes.Buffer), stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "sideways"`)
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestRun_UnsupportedURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://localhost/wallet")

	err := run(context.Background(), nil, new(bytes.Buffer), new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open database")
}
