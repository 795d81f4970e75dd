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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launix-de/deltakit/delta"
	"github.com/launix-de/deltakit/shardplan"
)

func init() {
	cmd := &cobra.Command{
		Use:   "shard-manifest <table-uri> <version> <k>",
		Short: "Assign active files to K balanced, stable shards",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var version int64
			if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
				return err
			}
			var k uint32
			if _, err := fmt.Sscanf(args[2], "%d", &k); err != nil {
				return err
			}

			by, _ := cmd.Flags().GetStringSlice("by")
			stickyBy, _ := cmd.Flags().GetStringSlice("sticky-by")
			balance, _ := cmd.Flags().GetString("balance")
			var maxPerShard *int
			if cmd.Flags().Changed("max-files-per-shard") {
				v, _ := cmd.Flags().GetInt("max-files-per-shard")
				maxPerShard = &v
			}

			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			report, err := shardplan.PlanShards(cmd.Context(), h, version, k, shardplan.Options{
				By:               by,
				StickyBy:         stickyBy,
				MaxFilesPerShard: maxPerShard,
				Balance:          shardplan.BalanceMode(balance),
			})
			if err != nil {
				return err
			}

			return emit(report, func() {
				for _, s := range report.Shards {
					printf("shard %d: %d files, %s, %d rows\n", s.ID, len(s.Files), humanBytes(s.Bytes), s.Rows)
				}
				if len(report.DroppedFiles) > 0 {
					printf("dropped (max-files-per-shard): %d files\n", len(report.DroppedFiles))
				}
			})
		},
	}
	cmd.Flags().StringSlice("by", nil, "co-location partition keys")
	cmd.Flags().StringSlice("sticky-by", nil, "subset of --by used as the stable assignment seed")
	cmd.Flags().String("balance", string(shardplan.BalanceBytes), "balance metric: bytes|rows")
	cmd.Flags().Int("max-files-per-shard", 0, "drop files once a shard reaches this many (unset: no cap)")
	rootCmd.AddCommand(cmd)
}
