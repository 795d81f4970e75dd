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
)

func init() {
	cmd := &cobra.Command{
		Use:   "manifest <table-uri> <version>",
		Short: "Generate a {path,size} manifest for a version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var version int64
			if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			manifest, err := delta.GenerateManifest(cmd.Context(), h, version, delta.ManifestFormat(format))
			if err != nil {
				return err
			}
			return emit(manifest, func() {
				for _, e := range manifest.Entries {
					printf("%s\t%s\n", e.Path, humanBytes(e.Size))
				}
			})
		},
	}
	cmd.Flags().String("format", string(delta.ManifestFileList), "manifest format: trino|hive|presto|file_list")
	rootCmd.AddCommand(cmd)
}
