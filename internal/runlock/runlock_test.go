package runlock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireConflictAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applyflow.lock")

	first, err := Acquire(path)
	require.NoError(t, err)

	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}
