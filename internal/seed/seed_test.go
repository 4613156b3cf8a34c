package seed

import (
	"context"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/storage/memory"
)

func TestDiscounts_Idempotent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := zctx.Base(context.Background(), zap.New(core))
	repo := memory.New().Discounts()

	n, err := Discounts(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, logs.FilterMessage("Inserted discount").Len(), "progress goes to the context logger")

	n, err = Discounts(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, n, "second run inserts nothing")
	assert.Equal(t, 5, logs.FilterMessage("Discount exists, skipping").Len())

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 4, "the inactive sample stays hidden")
}

func TestAPIKeys(t *testing.T) {
	ctx := context.Background()
	keys := memory.New().APIKeys()
	pepper := []byte("pepper")

	err := APIKeys(ctx, keys, pepper, Key{ID: "admin", Name: "Admin", Raw: "s3cret", Scopes: []string{"admin"}})
	require.NoError(t, err)

	info, err := keys.FindByHash(ctx, auth.HashAPIKey(pepper, "s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "admin", info.ID)

	assert.Error(t, APIKeys(ctx, keys, pepper, Key{ID: "empty"}))
}
