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
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/launix-de/deltakit/delta"
	"github.com/launix-de/deltakit/internal/dklog"
)

// watch tails a local table's _delta_log directory and prints the
// current version on every new commit file. It only supports file://
// and bare-path tables; fsnotify has no concept of a remote object
// store to watch.
func init() {
	cmd := &cobra.Command{
		Use:   "watch <table-path>",
		Short: "Print current_version each time a new commit appears (local tables only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := dklog.WithComponent("watch")
			logDir := filepath.Join(strings.TrimPrefix(args[0], "file://"), "_delta_log")

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := watcher.Add(logDir); err != nil {
				return err
			}

			h, err := delta.LoadTableWithOptions(args[0], storeOptions())
			if err != nil {
				return err
			}
			printCurrent := func() {
				v, err := delta.CurrentVersion(cmd.Context(), h)
				if err != nil {
					log.Warn().Err(err).Msg("watch: failed to resolve current_version")
					return
				}
				printf("current_version=%d\n", v)
			}
			printCurrent()

			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
						continue
					}
					if !strings.HasSuffix(event.Name, ".json") {
						continue
					}
					printCurrent()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Warn().Err(err).Msg("watch: fsnotify error")
				case <-cmd.Context().Done():
					return cmd.Context().Err()
				}
			}
		},
	}
	rootCmd.AddCommand(cmd)
}
