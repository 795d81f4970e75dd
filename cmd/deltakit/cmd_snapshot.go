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
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launix-de/deltakit/delta"
)

// snapshot writes the active file list of a pinned version to a local
// newline-delimited file, grounded on deltakit-cli::cmd_snapshot. It is
// a CLI-only convenience, not a core operation.
func init() {
	cmd := &cobra.Command{
		Use:   "snapshot <table-uri> <version> <output-file>",
		Short: "Write the active file list of a version to a local file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var version int64
			if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
				return err
			}
			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			files, err := delta.ListActiveFiles(cmd.Context(), h, &version)
			if err != nil {
				return err
			}

			out, err := os.Create(args[2])
			if err != nil {
				return err
			}
			defer out.Close()

			w := bufio.NewWriter(out)
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%d\n", f.Path, f.Size)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printf("wrote %d entries to %s\n", len(files), args[2])
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
