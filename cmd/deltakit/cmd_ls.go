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
		Use:   "ls <table-uri>",
		Short: "List active files at a version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			files, err := delta.ListActiveFiles(cmd.Context(), h, optionalVersion(cmd))
			if err != nil {
				return err
			}
			return emit(files, func() {
				for _, f := range files {
					printf("%s\t%s\n", f.Path, humanBytes(f.Size))
				}
			})
		},
	}
	cmd.Flags().Int64("version", 0, "version to list (default: latest)")
	rootCmd.AddCommand(cmd)
}
