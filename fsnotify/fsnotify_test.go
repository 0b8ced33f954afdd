package fsnotify

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFile(t *testing.T) {
	t.Run("notifies on file creation", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "config.yaml")

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		msgChan, err := WatchFile(ctx, filePath, WatchFileOpts{})
		require.NoError(t, err)
		require.NotNil(t, msgChan)

		err = os.WriteFile(filePath, []byte("logLevel: debug"), 0644)
		require.NoError(t, err)

		select {
		case <-msgChan:
			// Success
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for notification")
		}
	})

	t.Run("notifies on file write", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "config.yaml")
		err := os.WriteFile(filePath, []byte("logLevel: info"), 0644)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		msgChan, err := WatchFile(ctx, filePath, WatchFileOpts{BatchWindow: 100 * time.Millisecond})
		require.NoError(t, err)

		err = os.WriteFile(filePath, []byte("logLevel: debug"), 0644)
		require.NoError(t, err)

		select {
		case <-msgChan:
			// Success
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for notification")
		}
	})

	t.Run("ignores other files in the folder", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "config.yaml")

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		msgChan, err := WatchFile(ctx, filePath, WatchFileOpts{BatchWindow: 100 * time.Millisecond})
		require.NoError(t, err)

		err = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("foo"), 0644)
		require.NoError(t, err)

		select {
		case <-msgChan:
			t.Fatal("received unexpected notification")
		case <-time.After(500 * time.Millisecond):
			// Success
		}
	})

	t.Run("batches multiple changes", func(t *testing.T) {
		dir := t.TempDir()
		filePath := filepath.Join(dir, "config.yaml")

		ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
		defer cancel()

		msgChan, err := WatchFile(ctx, filePath, WatchFileOpts{})
		require.NoError(t, err)

		for range 5 {
			err = os.WriteFile(filePath, []byte("content"), 0644)
			require.NoError(t, err)
		}

		select {
		case <-msgChan:
			// Success
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for notification")
		}

		select {
		case <-msgChan:
			t.Fatal("received unexpected extra notification")
		case <-time.After(700 * time.Millisecond):
			// Success
		}
	})

	t.Run("closes channel on context cancellation", func(t *testing.T) {
		dir := t.TempDir()

		ctx, cancel := context.WithCancel(t.Context())

		msgChan, err := WatchFile(ctx, filepath.Join(dir, "config.yaml"), WatchFileOpts{})
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-msgChan:
			assert.False(t, ok, "channel should be closed")
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for channel to close")
		}
	})

	t.Run("returns error for non-existent folder", func(t *testing.T) {
		msgChan, err := WatchFile(t.Context(), "/non/existent/path/config.yaml", WatchFileOpts{})
		require.Error(t, err)
		assert.Nil(t, msgChan)
		assert.Contains(t, err.Error(), "failed to add watched folder")
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		_, err := WatchFile(t.Context(), "", WatchFileOpts{})
		require.Error(t, err)
	})
}
