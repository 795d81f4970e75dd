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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launix-de/deltakit/internal/dkerr"
)

func TestParseUri(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantScheme string
		wantRoot   string
		wantAbs    bool
	}{
		{"s3", "s3://my-bucket/tables/orders", "s3", "my-bucket/tables/orders", true},
		{"file scheme", "file:///data/orders", "file", "data/orders", true},
		{"bare absolute", "/data/orders", "file", "data/orders", true},
		{"bare relative", "data/orders", "file", "data/orders", false},
		{"unknown scheme degrades to file", "gcs-beta://bucket/key", "file", "bucket/key", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseUri(tc.uri)
			require.NoError(t, err)
			assert.Equal(t, tc.wantScheme, parsed.Scheme)
			assert.Equal(t, tc.wantRoot, parsed.Root)
			assert.Equal(t, tc.wantAbs, parsed.Absolute)
		})
	}
}

func TestParseUriEmptyIsInvalid(t *testing.T) {
	_, err := ParseUri("")
	require.Error(t, err)
	var dkErr *dkerr.Error
	require.ErrorAs(t, err, &dkErr)
	assert.Equal(t, dkerr.KindInvalidUri, dkErr.Kind)
}
