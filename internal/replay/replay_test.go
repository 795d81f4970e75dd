/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/objstore"
)

func commitName(v int) string {
	return padVersion(v) + ".json"
}

func padVersion(v int) string {
	s := "00000000000000000000"
	digits := []byte{}
	for v > 0 || len(digits) == 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return s[:20-len(digits)] + string(digits)
}

func seedBasicTable(t *testing.T) *objstore.MemStore {
	t.Helper()
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(
		`{"add":{"path":"dt=2024-01-01/a.parquet","size":100,"partitionValues":{"dt":"2024-01-01"}}}`+"\n",
	))
	store.Put("_delta_log/"+commitName(1), []byte(
		`{"remove":{"path":"dt=2024-01-01/a.parquet"}}`+"\n"+
			`{"add":{"path":"dt=2024-01-02/b.parquet","size":200,"partitionValues":{"dt":"2024-01-02"}}}`+"\n"+
			`{"add":{"path":"dt=2024-01-02/c.parquet","size":50,"partitionValues":{"dt":"2024-01-02"},"stats":"{\"numRecords\":5}"}}`+"\n",
	))
	return store
}

func TestReplayBasicCancel(t *testing.T) {
	store := seedBasicTable(t)
	v1 := int64(1)
	res, err := Replay(context.Background(), store, &v1, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "dt=2024-01-02/b.parquet", res.Files[0].Path)
	assert.Equal(t, "dt=2024-01-02/c.parquet", res.Files[1].Path)
	assert.Equal(t, int64(200), res.Files[0].Size)
	assert.Equal(t, uint64(5), res.RowCounts["dt=2024-01-02/c.parquet"])
	assert.Equal(t, uint64(0), res.RowCounts["dt=2024-01-02/b.parquet"])
}

func TestReplayDeterministic(t *testing.T) {
	store := seedBasicTable(t)
	v1 := int64(1)
	first, err := Replay(context.Background(), store, &v1, DefaultOptions())
	require.NoError(t, err)
	second, err := Replay(context.Background(), store, &v1, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
}

func TestReplayReaddAfterRemove(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(`{"add":{"path":"p.parquet","size":10}}`+"\n"))
	store.Put("_delta_log/"+commitName(1), []byte(`{"remove":{"path":"p.parquet"}}`+"\n"))
	store.Put("_delta_log/"+commitName(2), []byte(`{"add":{"path":"p.parquet","size":20}}`+"\n"))

	v1 := int64(1)
	res, err := Replay(context.Background(), store, &v1, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Files)

	v2 := int64(2)
	res, err = Replay(context.Background(), store, &v2, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, int64(20), res.Files[0].Size)
}

func TestReplayGapDetection(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(`{"add":{"path":"p.parquet","size":10}}`+"\n"))
	store.Put("_delta_log/"+commitName(2), []byte(`{"add":{"path":"q.parquet","size":10}}`+"\n"))

	v2 := int64(2)
	_, err := Replay(context.Background(), store, &v2, DefaultOptions())
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindLogGapError, dkErr.Kind)
}

func TestReplayVersionBeyondMax(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(`{"add":{"path":"p.parquet","size":10}}`+"\n"))

	v5 := int64(5)
	_, err := Replay(context.Background(), store, &v5, DefaultOptions())
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindLogGapError, dkErr.Kind)
}

func TestReplayMissingPathIsMalformed(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(`{"add":{"size":10}}`+"\n"))

	_, err := Replay(context.Background(), store, nil, DefaultOptions())
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindMalformedAction, dkErr.Kind)
}

func TestReplaySizeFallsBackToHead(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(`{"add":{"path":"p.parquet"}}`+"\n"))
	store.Put("p.parquet", make([]byte, 42))

	res, err := Replay(context.Background(), store, nil, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, int64(42), res.Files[0].Size)
}

func TestReplaySizeFallbackHeadErrorAborts(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(`{"add":{"path":"p.parquet"}}`+"\n"))
	// no "p.parquet" object seeded: Head() fails and must abort the replay
	// rather than silently reporting size 0.

	_, err := Replay(context.Background(), store, nil, DefaultOptions())
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindStoreError, dkErr.Kind)
}

func TestCurrentVersion(t *testing.T) {
	store := seedBasicTable(t)
	v, err := CurrentVersion(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
