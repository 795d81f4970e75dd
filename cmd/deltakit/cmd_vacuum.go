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
		Use:   "vacuum-dry-run <table-uri>",
		Short: "Report orphaned objects without deleting anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			retentionDays, _ := cmd.Flags().GetInt64("retention-days")
			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			report, err := delta.VacuumDryRun(cmd.Context(), h, retentionDays)
			if err != nil {
				return err
			}
			return emit(report, func() {
				printf("referenced=%d existing=%d orphans=%d safe=%v\n",
					report.Referenced, report.Existing, report.Orphans, report.Safe)
				for _, p := range report.OrphanPaths {
					printf("  orphan: %s\n", p)
				}
			})
		},
	}
	cmd.Flags().Int64("retention-days", 7, "advisory retention window; not enforced by the dry run")
	rootCmd.AddCommand(cmd)
}
