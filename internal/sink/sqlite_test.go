package sink

import (
	"context"
	"database/sql"
	"listingscraper/internal/catalog"
	"listingscraper/lib/testutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteAppendRow(t *testing.T) {
	ctx := context.Background()
	out, err := NewSQLite(ctx, testutil.OpenDB(t, ""))
	require.NoError(t, err)
	defer out.Close()

	require.NoError(t, out.AppendRow(ctx, sampleRow(`He said "hi"`)))
	require.NoError(t, out.AppendRow(ctx, sampleRow("Apple")))

	n, err := out.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	var name, l2id string
	err = out.db.QueryRowContext(ctx, "select variant_name, l2_category_id from listing_rows order by id limit 1").Scan(&name, &l2id)
	require.NoError(t, err)
	require.Equal(t, `He said "hi"`, name)
	require.Equal(t, "101", l2id)
}

func TestSQLiteSchemaCreatesIndex(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t, "")
	_, err := NewSQLite(ctx, db)
	require.NoError(t, err)

	var name string
	err = db.QueryRowContext(ctx, "select name from sqlite_master where type = 'index' and tbl_name = 'listing_rows'").Scan(&name)
	require.NoError(t, err)
	require.Equal(t, "listing_rows_variant", name)
}

func TestSQLiteSchemaIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t, "")
	_, err := NewSQLite(ctx, db)
	require.NoError(t, err)
	out, err := NewSQLite(ctx, db)
	require.NoError(t, err)
	require.NoError(t, out.Close())
}

type recordingWriter struct {
	rows []catalog.Row
	err  error
}

func (w *recordingWriter) AppendRow(_ context.Context, row catalog.Row) error {
	if w.err != nil {
		return w.err
	}
	w.rows = append(w.rows, row)
	return nil
}

func TestMulti(t *testing.T) {
	first := &recordingWriter{}
	second := &recordingWriter{}
	multi := Multi{first, second}

	require.NoError(t, multi.AppendRow(context.Background(), sampleRow("a")))
	require.Len(t, first.rows, 1)
	require.Len(t, second.rows, 1)

	failing := &recordingWriter{err: sql.ErrConnDone}
	after := &recordingWriter{}
	err := Multi{failing, after}.AppendRow(context.Background(), sampleRow("b"))
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Len(t, after.rows, 0)

	require.NoError(t, multi.Close())
}

func TestMultiPartialWrite(t *testing.T) {
	first := &recordingWriter{}
	failing := &recordingWriter{err: sql.ErrConnDone}
	err := Multi{first, failing}.AppendRow(context.Background(), sampleRow("c"))

	var partial *PartialWriteError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, 1, partial.Written)
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.Len(t, first.rows, 1)
}
