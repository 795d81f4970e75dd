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
	"strings"

	"github.com/launix-de/deltakit/internal/dkerr"
)

// VacuumReport is the output of VacuumDryRun (spec §4.5, §6).
type VacuumReport struct {
	Referenced int      `json:"referenced"`
	Existing   int       `json:"existing"`
	Orphans    int       `json:"orphans"`
	OrphanPaths []string `json:"orphan_paths"`
	Safe       bool      `json:"safe"`
}

// VacuumDryRun replays at head to get the referenced set, lists the
// table root recursively, and reports existing \ referenced as orphans
// (spec §4.5). retentionDays is advisory only; this dry run never masks
// recently-modified files.
func VacuumDryRun(ctx context.Context, h TableHandle, retentionDays int64) (VacuumReport, error) {
	if err := h.ensureOpened(); err != nil {
		return VacuumReport{}, err
	}

	res, err := replayTable(ctx, h, nil)
	if err != nil {
		return VacuumReport{}, err
	}
	referenced := make(map[string]struct{}, len(res.Files))
	for _, f := range res.Files {
		referenced[f.Path] = struct{}{}
	}

	var existing []string
	for item := range h.store.ListRecursive(ctx, "") {
		if item.Err != nil {
			return VacuumReport{}, dkerr.Wrap(dkerr.KindStoreError, "vacuum_dry_run: list table root", item.Err)
		}
		rel := item.Meta.Location
		if rel == "" || strings.HasPrefix(rel, "_delta_log/") {
			continue
		}
		existing = append(existing, rel)
	}

	var orphans []string
	for _, p := range existing {
		if _, ok := referenced[p]; !ok {
			orphans = append(orphans, p)
		}
	}
	sort.Strings(orphans)

	return VacuumReport{
		Referenced:  len(referenced),
		Existing:    len(existing),
		Orphans:     len(orphans),
		OrphanPaths: orphans,
		Safe:        len(orphans) == 0,
	}, nil
}
