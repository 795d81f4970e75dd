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

import "strings"

// UnknownSentinel substitutes for a missing partition value when
// grouping by a key an active file does not carry (spec §4.3/§4.4/§4.6).
const UnknownSentinel = "__UNKNOWN__"

// GroupKey returns the tuple of values for keys, in order, substituting
// UnknownSentinel for a key absent from partitionValues or holding an
// explicit null. It also returns a canonical "k=v;" serialization usable
// as a map key or hash-seed input.
func GroupKey(partitionValues map[string]*string, keys []string) ([]string, string) {
	values := make([]string, len(keys))
	var b strings.Builder
	for i, k := range keys {
		v := UnknownSentinel
		if pv, ok := partitionValues[k]; ok && pv != nil {
			v = *pv
		}
		values[i] = v
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte(';')
	}
	return values, b.String()
}

// GroupMap returns the group label -> values as a plain map<string,string>,
// used by output records that serialize the group as a map rather than a
// tuple (CompactionGroup.partition, RowCount.group).
func GroupMap(keys, values []string) map[string]string {
	m := make(map[string]string, len(keys))
	for i, k := range keys {
		m[k] = values[i]
	}
	return m
}
