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

package objstore

import (
	"strings"

	"github.com/launix-de/deltakit/internal/dkerr"
)

// ParsedUri is the pure output of ParseUri: a scheme and a root path with
// leading slashes stripped, per spec §4.1. Absolute tracks whether the
// original URI anchored Root at the filesystem/bucket root (a leading "/"
// or an explicit scheme), so the file backend can reconstruct an OS path.
type ParsedUri struct {
	Scheme   string
	Root     string
	Absolute bool
}

var knownSchemes = map[string]bool{
	"s3":   true,
	"gs":   true,
	"az":   true,
	"abfs": true,
	"file": true,
}

// ParseUri resolves any of s3://, gs://, az://, abfs://, file://, or a bare
// absolute path (treated as local). Unknown schemes degrade to local-file
// behavior with a warning logged by the caller, per spec §4.1.
func ParseUri(uri string) (ParsedUri, error) {
	if uri == "" {
		return ParsedUri{}, dkerr.New(dkerr.KindInvalidUri, "empty uri")
	}
	if idx := strings.Index(uri, "://"); idx >= 0 {
		scheme := uri[:idx]
		rest := uri[idx+3:]
		root := strings.TrimLeft(rest, "/")
		if !knownSchemes[scheme] {
			// deliberate dev-ergonomics choice: unknown schemes degrade to
			// local-file behavior rather than failing outright.
			return ParsedUri{Scheme: "file", Root: root, Absolute: true}, nil
		}
		return ParsedUri{Scheme: scheme, Root: root, Absolute: true}, nil
	}
	// bare path: treated as local
	if strings.HasPrefix(uri, "/") {
		return ParsedUri{Scheme: "file", Root: strings.TrimLeft(uri, "/"), Absolute: true}, nil
	}
	return ParsedUri{Scheme: "file", Root: uri, Absolute: false}, nil
}
