package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/dwikikusuma/pizza-cart/internal/cart/app"
	pg "github.com/dwikikusuma/pizza-cart/pkg/postgres"
	"github.com/stretchr/testify/require"
)

// Runs only when POSTGRES_TEST_HOST points at a scratch database.
func openTestRepo(t *testing.T) *BlobRepo {
	t.Helper()
	host := os.Getenv("POSTGRES_TEST_HOST")
	if host == "" {
		t.Skip("POSTGRES_TEST_HOST not set")
	}

	db, err := pg.Open(pg.Config{
		Host: host,
		Port: 5432,
		User: os.Getenv("POSTGRES_USER"),
		Pass: os.Getenv("POSTGRES_PASSWORD"),
		DB:   os.Getenv("POSTGRES_DB"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewBlobRepo(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestBlobRepoUpsert(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing-key")
	require.ErrorIs(t, err, app.ErrBlobNotFound)

	require.NoError(t, repo.Put(ctx, "test-cart", []byte(`[1]`)))
	require.NoError(t, repo.Put(ctx, "test-cart", []byte(`[2]`)))

	got, err := repo.Get(ctx, "test-cart")
	require.NoError(t, err)
	require.Equal(t, []byte(`[2]`), got)
}
