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

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"lukechampine.com/blake3"
)

// ComputeIntegrityHash returns the lowercase hex BLAKE3 digest of the
// canonical serialization of the active file set at version: for each
// file in sorted order, path, 8-byte little-endian size, then each
// partition (key, value?) pair in map-key order (spec §4.7).
func ComputeIntegrityHash(ctx context.Context, h TableHandle, version *int64) (string, error) {
	res, err := replayTable(ctx, h, version)
	if err != nil {
		return "", err
	}
	return hashActiveFiles(res.Files), nil
}

func hashActiveFiles(files []ActiveFile) string {
	hasher := blake3.New(32, nil)

	var sizeBuf [8]byte
	for _, f := range files {
		hasher.Write([]byte(f.Path))
		binary.LittleEndian.PutUint64(sizeBuf[:], uint64(f.Size))
		hasher.Write(sizeBuf[:])

		keys := make([]string, 0, len(f.PartitionValues))
		for k := range f.PartitionValues {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			hasher.Write([]byte(k))
			if v := f.PartitionValues[k]; v != nil {
				hasher.Write([]byte(*v))
			}
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))
}
