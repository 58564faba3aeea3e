package objectstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreLocal(t *testing.T) {
	store, err := NewStore(context.Background(), PluginConfig{
		Type:       "LOCAL",
		Properties: map[string]string{"rootPath": t.TempDir()},
	})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)
}

func TestNewStoreLocalMissingRootPath(t *testing.T) {
	_, err := NewStore(context.Background(), PluginConfig{Type: "LOCAL"})
	require.Error(t, err)
}

func TestNewStoreUnknownType(t *testing.T) {
	_, err := NewStore(context.Background(), PluginConfig{Type: "TAPE"})
	require.Error(t, err)
}
