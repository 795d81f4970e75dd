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

package shardplan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launix-de/deltakit/delta"
)

// seedStoreForShardTest writes a tiny Delta table to a temp directory,
// the same way the teacher's own tests (storage/blob_refcount_test.go)
// exercise real filesystem state rather than mocking it.
func seedStoreForShardTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_delta_log"), 0o755))
	commit := `{"add":{"path":"dt=A/f1.parquet","size":100,"partitionValues":{"dt":"A"}}}` + "\n" +
		`{"add":{"path":"dt=A/f2.parquet","size":200,"partitionValues":{"dt":"A"}}}` + "\n" +
		`{"add":{"path":"dt=B/f3.parquet","size":10,"partitionValues":{"dt":"B"}}}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_delta_log", "00000000000000000000.json"), []byte(commit), 0o644))
	return dir
}

func loadTestHandle(t *testing.T, dir string) delta.TableHandle {
	t.Helper()
	h, err := delta.LoadTable(dir)
	require.NoError(t, err)
	return h
}

func mkFile(path string, size int64, partitions map[string]*string) delta.ActiveFile {
	return delta.ActiveFile{Path: path, Size: size, PartitionValues: partitions}
}

func strp(s string) *string { return &s }

func TestPlanShardsStickyBalance(t *testing.T) {
	files := []delta.ActiveFile{
		mkFile("a1", 100, map[string]*string{"dt": strp("A")}),
		mkFile("a2", 100, map[string]*string{"dt": strp("A")}),
		mkFile("a3", 100, map[string]*string{"dt": strp("A")}),
		mkFile("a4", 100, map[string]*string{"dt": strp("A")}),
		mkFile("b1", 10, map[string]*string{"dt": strp("B")}),
		mkFile("b2", 10, map[string]*string{"dt": strp("B")}),
	}

	groups := groupByColocation(files, []string{"dt"})
	require.Len(t, groups, 2)

	shards := make([]Shard, 2)
	for i := range shards {
		shards[i].ID = uint32(i)
	}
	var dropped []string
	for _, g := range groups {
		base := seedIndex(g.stickyKey([]string{"dt"}), 2)
		placeGroup(shards, g.files, base, Options{Balance: BalanceBytes}, &dropped)
	}

	assert.Empty(t, dropped)
	total := 0
	for _, s := range shards {
		total += len(s.Files)
	}
	assert.Equal(t, len(files), total)
	// the four dt=A files split 200/200 and the two dt=B files 10/10.
	assert.Equal(t, int64(210), shards[0].Bytes)
	assert.Equal(t, int64(210), shards[1].Bytes)
}

func TestPlanShardsCoverageUnderNoCap(t *testing.T) {
	ctx := context.Background()
	store := seedStoreForShardTest(t)
	h := loadTestHandle(t, store)

	report, err := PlanShards(ctx, h, 0, 3, Options{By: []string{"dt"}})
	require.NoError(t, err)
	assert.Empty(t, report.DroppedFiles)

	seen := map[string]bool{}
	for _, s := range report.Shards {
		for _, f := range s.Files {
			seen[f.Path] = true
		}
	}
	assert.Equal(t, 3, len(seen))
}

func TestPlanShardsCapDropsExcess(t *testing.T) {
	ctx := context.Background()
	store := seedStoreForShardTest(t)
	h := loadTestHandle(t, store)

	maxPerShard := 2
	report, err := PlanShards(ctx, h, 0, 1, Options{MaxFilesPerShard: &maxPerShard})
	require.NoError(t, err)
	require.Len(t, report.Shards, 1)
	assert.Len(t, report.Shards[0].Files, 2)
	assert.Len(t, report.DroppedFiles, 1)
}

func TestPlanShardsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := seedStoreForShardTest(t)
	h := loadTestHandle(t, store)

	first, err := PlanShards(ctx, h, 0, 3, Options{By: []string{"dt"}})
	require.NoError(t, err)
	second, err := PlanShards(ctx, h, 0, 3, Options{By: []string{"dt"}})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSeedIndexStableForUnchangedStickyKey(t *testing.T) {
	base1 := seedIndex("dt=A;", 8)
	base2 := seedIndex("dt=A;", 8)
	assert.Equal(t, base1, base2)
}
