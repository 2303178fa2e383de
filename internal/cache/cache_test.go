package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop_AlwaysMisses(t *testing.T) {
	var c QueryCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "opportunities:limit=100", []byte(`[]`), time.Minute))

	val, hit, err := c.Get(ctx, "opportunities:limit=100")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, val)
}

func TestRedisCache_NamespacesKeys(t *testing.T) {
	c := NewRedisCache(nil)

	assert.Equal(t, "querycache:opportunities:limit=100", c.namespaced("opportunities:limit=100"))
}
