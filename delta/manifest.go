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

import "context"

// ManifestFormat tags which downstream reader a manifest targets. It
// does not change the {path,size} record shape in the core — formatters
// live outside (spec §6).
type ManifestFormat string

const (
	ManifestTrino    ManifestFormat = "trino"
	ManifestHive     ManifestFormat = "hive"
	ManifestPresto   ManifestFormat = "presto"
	ManifestFileList ManifestFormat = "file_list"
)

// ManifestEntry is one row of a Manifest.
type ManifestEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Manifest is the output of GenerateManifest (spec §6).
type Manifest struct {
	Format  ManifestFormat  `json:"format"`
	Version int64           `json:"version"`
	Entries []ManifestEntry `json:"entries"`
}

// GenerateManifest replays at version and emits one entry per active
// file, tagged with format for the caller's downstream formatter.
func GenerateManifest(ctx context.Context, h TableHandle, version int64, format ManifestFormat) (Manifest, error) {
	v := version
	res, err := replayTable(ctx, h, &v)
	if err != nil {
		return Manifest{}, err
	}
	entries := make([]ManifestEntry, len(res.Files))
	for i, f := range res.Files {
		entries[i] = ManifestEntry{Path: f.Path, Size: f.Size}
	}
	return Manifest{Format: format, Version: version, Entries: entries}, nil
}
