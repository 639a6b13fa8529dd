package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
)

const unreachableURL = "mongodb://127.0.0.1:1/?directConnection=true"

func TestClient_UnreachableStaysDisconnected(t *testing.T) {
	c := NewClient(unreachableURL, "ecommerce_test", 300*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.EnsureConnected(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, catalog.ErrUnavailable))
		assert.Contains(t, err.Error(), unreachableURL)
		assert.False(t, c.Connected())
	}

	err := c.Ping(ctx)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
	assert.NoError(t, c.Close(ctx))
}

func TestProductRepo_Unreachable(t *testing.T) {
	repo := &ProductRepo{Client: NewClient(unreachableURL, "ecommerce_test", 300*time.Millisecond)}
	_, err := repo.CountProducts(context.Background(), catalog.ProductFilter{})
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestTranslate(t *testing.T) {
	c := NewClient(unreachableURL, "x", time.Second)

	assert.Nil(t, c.translate(nil))

	plain := errors.New("boom")
	assert.Same(t, plain, c.translate(plain))

	err := c.translate(mongo.ErrClientDisconnected)
	var ue *UnavailableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, unreachableURL, ue.Addr)

	err = c.translate(context.DeadlineExceeded)
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestQueryErrorInvalidRegex(t *testing.T) {
	repo := &ProductRepo{Client: NewClient(unreachableURL, "x", time.Second)}
	err := repo.queryError(mongo.CommandError{Code: codeInvalidRegex, Message: "Regular expression is invalid"})
	assert.ErrorIs(t, err, catalog.ErrInvalidInput)
}
