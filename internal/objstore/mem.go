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
	"sort"
	"time"

	"github.com/launix-de/deltakit/internal/dkerr"
)

// MemStore is an in-memory Store implementation for replayer/planner
// tests, the same interface as local.go's FileStorage-backed localStore
// but with no filesystem dependency (spec §9's ambient test tooling).
type MemStore struct {
	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Put seeds one object. Tests call this directly; there is no public
// write path once a MemStore is handed to a replay or planner call.
func (m *MemStore) Put(location string, data []byte) {
	m.objects[location] = data
}

func (m *MemStore) ListRecursive(ctx context.Context, prefix string) <-chan ListItem {
	out := make(chan ListItem)
	go func() {
		defer close(out)
		var locations []string
		for loc := range m.objects {
			if hasPrefix(loc, prefix) {
				locations = append(locations, loc)
			}
		}
		sort.Strings(locations)
		for _, loc := range locations {
			select {
			case out <- ListItem{Meta: ObjectMeta{Location: loc, Size: int64(len(m.objects[loc])), ModTime: time.Time{}}}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (m *MemStore) Get(ctx context.Context, location string) ([]byte, error) {
	data, ok := m.objects[location]
	if !ok {
		return nil, dkerr.New(dkerr.KindStoreError, "mem store: no such object "+location)
	}
	return data, nil
}

func (m *MemStore) Head(ctx context.Context, location string) (ObjectMeta, error) {
	data, ok := m.objects[location]
	if !ok {
		return ObjectMeta{}, dkerr.New(dkerr.KindStoreError, "mem store: no such object "+location)
	}
	return ObjectMeta{Location: location, Size: int64(len(data))}, nil
}

func (m *MemStore) GetRange(ctx context.Context, location string, start, end int64) ([]byte, error) {
	data, err := m.Get(ctx, location)
	if err != nil {
		return nil, err
	}
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[start:end], nil
}

func hasPrefix(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
