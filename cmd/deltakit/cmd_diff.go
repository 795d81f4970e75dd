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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/launix-de/deltakit/delta"
)

func init() {
	cmd := &cobra.Command{
		Use:   "diff <table-uri> <from> <to>",
		Short: "Diff two committed versions",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			to, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return err
			}
			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			report, err := delta.DiffVersions(cmd.Context(), h, from, to)
			if err != nil {
				return err
			}
			return emit(report, func() {
				printf("added:   %d files (%s)\n", len(report.Added), humanBytes(report.BytesAdded))
				printf("removed: %d files (%s)\n", len(report.Removed), humanBytes(report.BytesRemoved))
			})
		},
	}
	rootCmd.AddCommand(cmd)
}
