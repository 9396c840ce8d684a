package docstore

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	query, args, err := buildListQuery("tournaments", Query{
		Filters: []Filter{
			Where("date", OpGreaterEqual, "2026-01-01"),
			Where("status", OpIn, []string{"confirmed", "tentative"}),
			Where("linkedPlayers", OpArrayContains, "p1"),
		},
		OrderBy: "date",
		Limit:   10,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT id, data FROM documents WHERE collection = $1"))
	assert.Contains(t, query, `(data->>$2::text) COLLATE "C" >= $3`)
	assert.Contains(t, query, "data->$4::text IN (SELECT jsonb_array_elements($5::jsonb))")
	assert.Contains(t, query, "data->$6::text @> $7::jsonb")
	assert.Contains(t, query, "ORDER BY data->($8::text) ASC, id ASC")
	assert.Contains(t, query, "LIMIT $9")

	require.Len(t, args, 9)
	assert.Equal(t, "tournaments", args[0])
	assert.Equal(t, `["confirmed","tentative"]`, args[4])
	assert.Equal(t, `["p1"]`, args[6])
}

func TestBuildListQueryNumericRange(t *testing.T) {
	query, args, err := buildListQuery("signups", Query{Filters: []Filter{Where("driveCapacity", OpGreater, 2)}})
	require.NoError(t, err)
	assert.Contains(t, query, "(data->>$2::text)::numeric > $3")
	assert.Equal(t, float64(2), args[2])
}

func TestBuildListQueryRejectsBoolRange(t *testing.T) {
	_, _, err := buildListQuery("signups", Query{Filters: []Filter{Where("canModerate", OpLess, true)}})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

// TestPostgresStoreRoundTrip needs a migrated database; set TEST_DATABASE_URL to run it.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	store := NewPostgresStore(db)
	coll := "test_people"
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM documents WHERE collection = $1`, coll)
	})

	require.NoError(t, store.Set(ctx, coll, "a", person{Name: "Ada", Age: 12}))
	require.NoError(t, store.Update(ctx, coll, "a", ArrayUnion("tags", "coach", "coach")))

	doc, err := store.Get(ctx, coll, "a")
	require.NoError(t, err)
	assert.Equal(t, []any{"coach"}, doc.Data["tags"])

	docs, err := store.List(ctx, coll, Query{Filters: []Filter{Where("tags", OpArrayContains, "coach")}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	err = store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Set(ctx, coll, "b", person{Name: "Bo"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	_, err = store.Get(ctx, coll, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}
