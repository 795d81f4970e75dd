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

// Package shardplan groups a table's active file set into K balanced,
// stable shards (spec §4.6), mirroring the separate shard-planner crate
// of the source workspace this toolkit was distilled from.
package shardplan

import (
	"context"
	"encoding/binary"
	"sort"

	"lukechampine.com/blake3"

	"github.com/launix-de/deltakit/delta"
	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/dklog"
)

// BalanceMode selects the metric the greedy placement balances on.
type BalanceMode string

const (
	BalanceBytes BalanceMode = "bytes"
	BalanceRows  BalanceMode = "rows"
)

// ShardFile is an ActiveFile enriched with an approximate row count.
// ApproxRows is always 0 in this implementation: row-group-aware
// enrichment is a forward extension whose field is kept stable now
// (spec §4.6 step 1).
type ShardFile struct {
	delta.ActiveFile
	ApproxRows uint64 `json:"approx_rows"`
}

// Shard is one output bucket of PlanShards (spec §3, §6).
type Shard struct {
	ID    uint32      `json:"id"`
	Bytes int64       `json:"bytes"`
	Rows  uint64      `json:"rows"`
	Files []ShardFile `json:"files"`
}

// Options tunes PlanShards (spec §4.6).
type Options struct {
	By                []string
	StickyBy          []string
	MaxFilesPerShard  *int
	Balance           BalanceMode
	RowGroupAware     bool
}

// Report wraps the shard output with the soft CapacityExceeded signal
// from dropped files (spec §7 — reported via an output field, not an
// exception).
type Report struct {
	Shards       []Shard
	DroppedFiles []string
}

// PlanShards replays version and assigns each active file to one of K
// shards via co-location grouping, a BLAKE3-seeded rotation, and greedy
// LPT placement (spec §4.6).
func PlanShards(ctx context.Context, h delta.TableHandle, version int64, k uint32, opts Options) (Report, error) {
	if k == 0 {
		return Report{}, dkerr.New(dkerr.KindCapacityExceeded, "plan_shards: k must be >= 1")
	}
	log := dklog.WithComponent("shardplan")

	v := version
	files, err := delta.ListActiveFiles(ctx, h, &v)
	if err != nil {
		return Report{}, err
	}

	groups := groupByColocation(files, opts.By)
	sort.Slice(groups, func(i, j int) bool { return groups[i].colocationKey < groups[j].colocationKey })

	shards := make([]Shard, k)
	for i := range shards {
		shards[i].ID = uint32(i)
	}

	var dropped []string
	for _, g := range groups {
		base := seedIndex(g.stickyKey(opts.StickyBy), k)
		placeGroup(shards, g.files, base, opts, &dropped)
	}

	if len(dropped) > 0 {
		log.Warn().Int("dropped", len(dropped)).Msg("plan_shards: files dropped due to max_files_per_shard")
	}

	return Report{Shards: shards, DroppedFiles: dropped}, nil
}

type colocationGroup struct {
	values        []string
	colocationKey string
	files         []ShardFile
}

// stickyKey returns the canonical "k=v;" serialization of the subset of
// this group's co-location key restricted to stickyBy names, or the
// full co-location key when stickyBy is empty (spec §4.6 step 3).
func (g colocationGroup) stickyKey(stickyBy []string) string {
	if len(stickyBy) == 0 {
		return g.colocationKey
	}
	_, key := delta.GroupKey(stickyGroupValues(g), stickyBy)
	return key
}

// stickyGroupValues reconstructs a partition-value map from a group's
// representative values so GroupKey can re-derive the sticky subset
// without re-walking every file.
func stickyGroupValues(g colocationGroup) map[string]*string {
	// colocationGroup does not retain a by-name map (only positional
	// values); reconstruct it from the first file's PartitionValues.
	// Every file in the group shares the values of the By keys by
	// construction; for a StickyBy name outside By, the first file's
	// value is used.
	if len(g.files) == 0 {
		return map[string]*string{}
	}
	return g.files[0].PartitionValues
}

func groupByColocation(files []delta.ActiveFile, by []string) []colocationGroup {
	index := make(map[string]*colocationGroup)
	var order []string
	for _, f := range files {
		values, key := delta.GroupKey(f.PartitionValues, by)
		g, ok := index[key]
		if !ok {
			g = &colocationGroup{values: values, colocationKey: key}
			index[key] = g
			order = append(order, key)
		}
		g.files = append(g.files, ShardFile{ActiveFile: f, ApproxRows: 0})
	}
	out := make([]colocationGroup, len(order))
	for i, key := range order {
		out[i] = *index[key]
	}
	return out
}

// seedIndex computes base = BLAKE3(stickyKey).low_u64() mod k (spec
// §4.6 step 4).
func seedIndex(stickyKey string, k uint32) uint32 {
	sum := blake3.Sum256([]byte(stickyKey))
	low := binary.LittleEndian.Uint64(sum[:8])
	return uint32(low % uint64(k))
}

func metric(balance BalanceMode, f ShardFile) uint64 {
	if balance == BalanceRows {
		return f.ApproxRows
	}
	return uint64(f.Size)
}

func shardLoad(balance BalanceMode, s Shard) uint64 {
	if balance == BalanceRows {
		return s.Rows
	}
	return uint64(s.Bytes)
}

// placeGroup sorts files descending by the active metric (LPT) and
// greedily assigns each to the least-loaded shard among K offsets
// starting at base, skipping shards already at max_files_per_shard
// capacity (spec §4.6 steps 5-8).
func placeGroup(shards []Shard, files []ShardFile, base uint32, opts Options, dropped *[]string) {
	k := uint32(len(shards))
	sort.SliceStable(files, func(i, j int) bool {
		return metric(opts.Balance, files[i]) > metric(opts.Balance, files[j])
	})

	for _, f := range files {
		bestIdx := -1
		var bestLoad uint64
		for off := uint32(0); off < k; off++ {
			idx := (base + off) % k
			if opts.MaxFilesPerShard != nil && len(shards[idx].Files) >= *opts.MaxFilesPerShard {
				continue
			}
			load := shardLoad(opts.Balance, shards[idx])
			if bestIdx == -1 || load < bestLoad {
				bestIdx = int(idx)
				bestLoad = load
			}
		}
		if bestIdx == -1 {
			*dropped = append(*dropped, f.Path)
			continue
		}
		s := &shards[bestIdx]
		s.Files = append(s.Files, f)
		s.Bytes += f.Size
		if s.Bytes < 0 {
			s.Bytes = 0
		}
		s.Rows += f.ApproxRows
	}
}
