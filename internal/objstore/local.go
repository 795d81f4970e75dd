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
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/dklog"
)

// localStore reads a directory tree as a flat keyed blob store, the same
// way storage/persistence-files.go's FileStorage treats "data/[dbname]"
// as its database root.
type localStore struct {
	base string // absolute or cwd-relative OS directory for the table root
}

func newLocalStore(p ParsedUri) *localStore {
	base := p.Root
	if p.Absolute {
		base = string(filepath.Separator) + p.Root
	}
	return &localStore{base: filepath.FromSlash(base)}
}

func (s *localStore) abs(location string) string {
	return filepath.Join(s.base, filepath.FromSlash(location))
}

func (s *localStore) ListRecursive(ctx context.Context, prefix string) <-chan ListItem {
	out := make(chan ListItem)
	root := s.abs(prefix)
	log := dklog.WithComponent("objstore.local")
	go func() {
		defer close(out)
		var entries []ListItem
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(s.base, path)
			if relErr != nil {
				return relErr
			}
			entries = append(entries, ListItem{Meta: ObjectMeta{
				Location: filepath.ToSlash(rel),
				Size:     info.Size(),
				ModTime:  info.ModTime(),
			}})
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("root", root).Msg("list_recursive failed")
			select {
			case out <- ListItem{Err: dkerr.Wrap(dkerr.KindStoreError, "list "+root, err)}:
			case <-ctx.Done():
			}
			return
		}
		// filepath.Walk already yields lexical order, but be explicit
		// since downstream replay logic depends on deterministic order.
		sort.Slice(entries, func(i, j int) bool { return entries[i].Meta.Location < entries[j].Meta.Location })
		for _, e := range entries {
			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *localStore) Get(ctx context.Context, location string) ([]byte, error) {
	data, err := os.ReadFile(s.abs(location))
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get "+location, err)
	}
	return data, nil
}

func (s *localStore) Head(ctx context.Context, location string) (ObjectMeta, error) {
	info, err := os.Stat(s.abs(location))
	if err != nil {
		return ObjectMeta{}, dkerr.Wrap(dkerr.KindStoreError, "head "+location, err)
	}
	return ObjectMeta{Location: strings.TrimPrefix(filepath.ToSlash(location), "/"), Size: info.Size(), ModTime: info.ModTime()}, nil
}

func (s *localStore) GetRange(ctx context.Context, location string, start, end int64) ([]byte, error) {
	f, err := os.Open(s.abs(location))
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get_range "+location, err)
	}
	defer f.Close()
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "seek "+location, err)
	}
	buf := make([]byte, end-start)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "get_range "+location, err)
	}
	return buf[:n], nil
}
