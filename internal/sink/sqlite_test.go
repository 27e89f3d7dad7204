package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/osmprep/internal/shape"
)

func newTestSQLite(t *testing.T, batchSize int) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osm.db")
	s, err := NewSQLite(context.Background(), path, batchSize)
	require.NoError(t, err)
	return s, path
}

func TestSQLite_WriteAndRead(t *testing.T) {
	s, path := newTestSQLite(t, 2)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, shape.Nodes, []shape.Row{nodeRow}))
	require.NoError(t, s.Write(ctx, shape.NodeTags, []shape.Row{{"1", "street", "Main Street", "addr"}}))
	require.NoError(t, s.Write(ctx, shape.Ways, []shape.Row{wayRow}))
	require.NoError(t, s.Write(ctx, shape.WayNodes, []shape.Row{{"9", "1", "0"}, {"9", "2", "1"}, {"9", "3", "2"}}))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Close())

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	var lat float64
	var user string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT lat, "user" FROM nodes WHERE id = 1`).Scan(&lat, &user))
	assert.InDelta(t, 45.5, lat, 1e-9)
	assert.Equal(t, "alice", user)

	var value string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM nodes_tags WHERE id = 1 AND key = 'street'`).Scan(&value))
	assert.Equal(t, "Main Street", value)

	rows, err := db.QueryContext(ctx, `SELECT node_id FROM ways_nodes WHERE id = 9 ORDER BY position`)
	require.NoError(t, err)
	defer rows.Close() //nolint:errcheck
	var refs []int64
	for rows.Next() {
		var ref int64
		require.NoError(t, rows.Scan(&ref))
		refs = append(refs, ref)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int64{1, 2, 3}, refs)

	assert.Equal(t, map[string]int64{"nodes": 1, "nodes_tags": 1, "ways": 1, "ways_nodes": 3}, s.Counts())
}

func TestSQLite_CloseRollsBackUnflushed(t *testing.T) {
	s, path := newTestSQLite(t, 100)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, shape.Ways, []shape.Row{wayRow}))
	require.NoError(t, s.Close())

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ways`).Scan(&n))
	assert.Zero(t, n)
}

func TestSQLite_DuplicatePrimaryKey(t *testing.T) {
	s, _ := newTestSQLite(t, 10)
	defer s.Close() //nolint:errcheck
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, shape.Nodes, []shape.Row{nodeRow}))
	err := s.Write(ctx, shape.Nodes, []shape.Row{nodeRow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert into nodes")
}

func TestSQLite_BadValue(t *testing.T) {
	s, _ := newTestSQLite(t, 10)
	defer s.Close() //nolint:errcheck

	err := s.Write(context.Background(), shape.WayNodes, []shape.Row{{"9", "abc", "0"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ways_nodes.node_id")
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	require.NoError(t, MigrateSQLite(ctx, db))
	require.NoError(t, MigrateSQLite(ctx, db))
}
