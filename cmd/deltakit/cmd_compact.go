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

package main

import (
	"github.com/spf13/cobra"

	"github.com/launix-de/deltakit/delta"
)

func init() {
	cmd := &cobra.Command{
		Use:   "compact-plan <table-uri>",
		Short: "Bin-pack active files per partition into compaction groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetMB, _ := cmd.Flags().GetUint64("target-mb")
			by, _ := cmd.Flags().GetStringSlice("by")
			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			plan, err := delta.PlanCompaction(cmd.Context(), h, targetMB, by)
			if err != nil {
				return err
			}
			return emit(plan, func() {
				printf("%d groups, %s estimated io\n", len(plan.Groups), humanBytes(int64(plan.EstimatedIOBytes)))
				for _, g := range plan.Groups {
					printf("  %v: %d files, %s\n", g.Partition, len(g.InputFiles), humanBytes(int64(g.TotalInputBytes)))
				}
			})
		},
	}
	cmd.Flags().Uint64("target-mb", 128, "target compacted file size in megabytes")
	cmd.Flags().StringSlice("by", nil, "partition keys to group by")
	rootCmd.AddCommand(cmd)
}
