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

// PartitionCardinality reports the distinct value count for one
// partition key across the active file set (spec §4.3).
type PartitionCardinality struct {
	Key         string `json:"key"`
	Cardinality int    `json:"cardinality"`
}

// PartitionReport is the output of PartitionHealth (spec §6).
type PartitionReport struct {
	Cardinalities   []PartitionCardinality `json:"cardinalities"`
	TotalFiles      int                    `json:"total_files"`
	EmptyPartitions int                    `json:"empty_partitions"`
}

// PartitionHealth computes, for each key in by, the distinct set of its
// values across the current active file set, plus the count of files
// with size <= 0 (spec §4.3).
func PartitionHealth(ctx context.Context, h TableHandle, by []string) (PartitionReport, error) {
	res, err := replayTable(ctx, h, nil)
	if err != nil {
		return PartitionReport{}, err
	}

	distinct := make(map[string]map[string]struct{}, len(by))
	for _, k := range by {
		distinct[k] = make(map[string]struct{})
	}

	empty := 0
	for _, f := range res.Files {
		for _, k := range by {
			values, _ := GroupKey(f.PartitionValues, []string{k})
			distinct[k][values[0]] = struct{}{}
		}
		if f.Size <= 0 {
			empty++
		}
	}

	cards := make([]PartitionCardinality, 0, len(by))
	for _, k := range by {
		cards = append(cards, PartitionCardinality{Key: k, Cardinality: len(distinct[k])})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Key < cards[j].Key })

	return PartitionReport{
		Cardinalities:   cards,
		TotalFiles:      len(res.Files),
		EmptyPartitions: empty,
	}, nil
}
