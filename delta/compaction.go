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
	"sort"
)

const bytesPerMB = 1048576

// CompactionGroup is one bin-packed bucket of files below the target
// byte size (spec §3, §4.4). Invariant: len(InputFiles) >= 2.
type CompactionGroup struct {
	Partition       map[string]string `json:"partition"`
	InputFiles      []ActiveFile      `json:"input_files"`
	TotalInputBytes uint64            `json:"total_input_bytes"`
}

// CompactionPlan is the output of PlanCompaction (spec §6).
type CompactionPlan struct {
	Groups            []CompactionGroup `json:"groups"`
	EstimatedIOBytes  uint64            `json:"estimated_io_bytes"`
}

// PlanCompaction bin-packs active files at head, grouped by the
// partition-value tuple for by, into buckets below targetMB (spec §4.4).
func PlanCompaction(ctx context.Context, h TableHandle, targetMB uint64, by []string) (CompactionPlan, error) {
	res, err := replayTable(ctx, h, nil)
	if err != nil {
		return CompactionPlan{}, err
	}
	targetBytes := targetMB * bytesPerMB

	type groupedFiles struct {
		values []string
		files  []ActiveFile
	}
	groups := make(map[string]*groupedFiles)
	var order []string

	for _, f := range res.Files {
		values, key := GroupKey(f.PartitionValues, by)
		g, ok := groups[key]
		if !ok {
			g = &groupedFiles{values: values}
			groups[key] = g
			order = append(order, key)
		}
		g.files = append(g.files, f)
	}
	sort.Strings(order)

	var plan CompactionPlan
	for _, key := range order {
		g := groups[key]
		sort.Slice(g.files, func(i, j int) bool { return g.files[i].Size < g.files[j].Size })

		var bucket []ActiveFile
		var bucketBytes uint64
		flush := func() {
			if len(bucket) >= 2 {
				plan.Groups = append(plan.Groups, CompactionGroup{
					Partition:       GroupMap(by, g.values),
					InputFiles:      bucket,
					TotalInputBytes: bucketBytes,
				})
				plan.EstimatedIOBytes += bucketBytes
			}
			bucket = nil
			bucketBytes = 0
		}

		for _, f := range g.files {
			size := uint64(f.Size)
			if bucketBytes+size > targetBytes && len(bucket) > 0 {
				flush()
			}
			bucket = append(bucket, f)
			bucketBytes += size
		}
		flush()
	}

	return plan, nil
}
