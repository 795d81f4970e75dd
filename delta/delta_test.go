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

package delta

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/objstore"
)

func padVersion(v int) string {
	s := "00000000000000000000"
	digits := []byte{}
	for v > 0 || len(digits) == 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return s[:20-len(digits)] + string(digits)
}

func commitName(v int) string { return padVersion(v) + ".json" }

// newHandle builds a TableHandle over an in-memory store the way
// LoadTable would over a real one, without going through URI parsing.
func newHandle(store objstore.Store) TableHandle {
	return TableHandle{URI: "mem://test", store: store}
}

func seedScenario1(t *testing.T) *objstore.MemStore {
	t.Helper()
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(
		`{"add":{"path":"dt=2024-01-01/a.parquet","size":100,"partitionValues":{"dt":"2024-01-01"}}}`+"\n",
	))
	store.Put("_delta_log/"+commitName(1), []byte(
		`{"remove":{"path":"dt=2024-01-01/a.parquet"}}`+"\n"+
			`{"add":{"path":"dt=2024-01-02/b.parquet","size":200,"partitionValues":{"dt":"2024-01-02"}}}`+"\n"+
			`{"add":{"path":"dt=2024-01-02/c.parquet","size":50,"partitionValues":{"dt":"2024-01-02"}}}`+"\n",
	))
	return store
}

func TestDiffVersionsScenario1(t *testing.T) {
	store := seedScenario1(t)
	h := newHandle(store)
	report, err := DiffVersions(context.Background(), h, 0, 1)
	require.NoError(t, err)
	assert.Len(t, report.Added, 2)
	assert.Len(t, report.Removed, 1)
	assert.Equal(t, int64(250), report.BytesAdded)
	assert.Equal(t, int64(100), report.BytesRemoved)
}

func TestDiffVersionsSelfIdentity(t *testing.T) {
	store := seedScenario1(t)
	h := newHandle(store)
	report, err := DiffVersions(context.Background(), h, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, report.Added)
	assert.Empty(t, report.Removed)
	assert.Zero(t, report.BytesAdded)
	assert.Zero(t, report.BytesRemoved)
}

func TestDiffVersionsInvalidRange(t *testing.T) {
	store := seedScenario1(t)
	h := newHandle(store)
	_, err := DiffVersions(context.Background(), h, 5, 3)
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindInvalidRange, dkErr.Kind)
}

func TestPartitionHealthScenario1(t *testing.T) {
	store := seedScenario1(t)
	h := newHandle(store)
	v1 := int64(1)
	h.PinnedVersion = &v1
	report, err := PartitionHealth(context.Background(), h, []string{"dt"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalFiles)
	require.Len(t, report.Cardinalities, 1)
	assert.Equal(t, "dt", report.Cardinalities[0].Key)
	assert.Equal(t, 1, report.Cardinalities[0].Cardinality)
}

func TestFastRowcountUsesLogStatsOnly(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(
		`{"add":{"path":"a.parquet","size":10,"partitionValues":{"dt":"x"},"stats":"{\"numRecords\":7}"}}`+"\n"+
			`{"add":{"path":"b.parquet","size":10,"partitionValues":{"dt":"x"}}}`+"\n",
	))
	h := newHandle(store)
	counts, err := FastRowcount(context.Background(), h, []string{"dt"}, nil)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, uint64(7), counts[0].Rows)
}

func TestFastRowcountEmptyGroupByAggregates(t *testing.T) {
	store := objstore.NewMemStore()
	store.Put("_delta_log/"+commitName(0), []byte(
		`{"add":{"path":"a.parquet","size":10,"stats":"{\"numRecords\":3}"}}`+"\n"+
			`{"add":{"path":"b.parquet","size":10,"stats":"{\"numRecords\":4}"}}`+"\n",
	))
	h := newHandle(store)
	counts, err := FastRowcount(context.Background(), h, nil, nil)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, uint64(7), counts[0].Rows)
}

func TestVacuumDryRunOrphan(t *testing.T) {
	store := seedScenario1(t)
	store.Put("dt=2024-01-02/b.parquet", nil)
	store.Put("dt=2024-01-02/c.parquet", nil)
	store.Put("orphan/x.parquet", nil)
	h := newHandle(store)

	report, err := VacuumDryRun(context.Background(), h, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Referenced)
	assert.Equal(t, 3, report.Existing)
	assert.Equal(t, 1, report.Orphans)
	assert.False(t, report.Safe)
}

func TestPlanCompactionPacksAscendingAndDropsSingletons(t *testing.T) {
	store := objstore.NewMemStore()
	sizes := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90}
	var commit string
	for i, sz := range sizes {
		commit += `{"add":{"path":"f` + string(rune('a'+i)) + `.parquet","size":` + itoa(sz*1024*1024) + `}}` + "\n"
	}
	store.Put("_delta_log/"+commitName(0), []byte(commit))
	h := newHandle(store)

	plan, err := PlanCompaction(context.Background(), h, 100, nil)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Groups)
	for _, g := range plan.Groups {
		assert.GreaterOrEqual(t, len(g.InputFiles), 2)
	}
}

func TestComputeIntegrityHashStable(t *testing.T) {
	store := seedScenario1(t)
	h := newHandle(store)
	v1 := int64(1)
	first, err := ComputeIntegrityHash(context.Background(), h, &v1)
	require.NoError(t, err)
	second, err := ComputeIntegrityHash(context.Background(), h, &v1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestComputeIntegrityHashChangesWithContent(t *testing.T) {
	store := seedScenario1(t)
	h := newHandle(store)
	v0 := int64(0)
	v1 := int64(1)
	atV0, err := ComputeIntegrityHash(context.Background(), h, &v0)
	require.NoError(t, err)
	atV1, err := ComputeIntegrityHash(context.Background(), h, &v1)
	require.NoError(t, err)
	assert.NotEqual(t, atV0, atV1)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}
