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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launix-de/deltakit/internal/dkerr"
)

func seedLocalDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_delta_log"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_delta_log", "00000000000000000000.json"), []byte(`{"add":{"path":"a.parquet","size":4}}`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.parquet"), []byte("data"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dt=2024-01-01"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dt=2024-01-01", "b.parquet"), []byte("more-data"), 0o644))
	return dir
}

func TestLocalStoreListRecursive(t *testing.T) {
	dir := seedLocalDir(t)
	store := newLocalStore(ParsedUri{Root: dir[1:], Absolute: true})

	var locations []string
	for item := range store.ListRecursive(context.Background(), "") {
		require.NoError(t, item.Err)
		locations = append(locations, item.Meta.Location)
	}
	assert.ElementsMatch(t, []string{
		"_delta_log/00000000000000000000.json",
		"a.parquet",
		"dt=2024-01-01/b.parquet",
	}, locations)
}

func TestLocalStoreListRecursivePrefix(t *testing.T) {
	dir := seedLocalDir(t)
	store := newLocalStore(ParsedUri{Root: dir[1:], Absolute: true})

	var locations []string
	for item := range store.ListRecursive(context.Background(), "_delta_log") {
		require.NoError(t, item.Err)
		locations = append(locations, item.Meta.Location)
	}
	assert.Equal(t, []string{"_delta_log/00000000000000000000.json"}, locations)
}

func TestLocalStoreGetAndHead(t *testing.T) {
	dir := seedLocalDir(t)
	store := newLocalStore(ParsedUri{Root: dir[1:], Absolute: true})

	data, err := store.Get(context.Background(), "a.parquet")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	meta, err := store.Head(context.Background(), "a.parquet")
	require.NoError(t, err)
	assert.Equal(t, int64(4), meta.Size)
}

func TestLocalStoreHeadMissingIsStoreError(t *testing.T) {
	dir := seedLocalDir(t)
	store := newLocalStore(ParsedUri{Root: dir[1:], Absolute: true})

	_, err := store.Head(context.Background(), "missing.parquet")
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindStoreError, dkErr.Kind)
}

func TestLocalStoreGetRange(t *testing.T) {
	dir := seedLocalDir(t)
	store := newLocalStore(ParsedUri{Root: dir[1:], Absolute: true})

	chunk, err := store.GetRange(context.Background(), "dt=2024-01-01/b.parquet", 0, 4)
	require.NoError(t, err)
	assert.Equal(t, "more", string(chunk))
}
