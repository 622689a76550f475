package container

import (
	"os"
	"path/filepath"
	"testing"

	"edabench/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("score,group\n60,a\n70,b\n80,a\n"), 0o644))

	c := NewWithLogger(config.Default(), nil)
	defer c.Close()

	sess, reports, err := c.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, "scores", sess.Info().Dataset)

	got, err := c.Sessions.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.NotNil(t, c.Server().Handler())
}
