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

package replay

import "encoding/json"

// actionLine is one line of a commit file. Exactly one of these fields is
// populated per spec §3; the rest are nil. metaData/protocol/commitInfo/
// txn/cdc are recognized (so no line is misclassified) but otherwise
// ignored for the active-file set.
type actionLine struct {
	Add        *addAction      `json:"add"`
	Remove     *removeAction   `json:"remove"`
	MetaData   json.RawMessage `json:"metaData"`
	Protocol   json.RawMessage `json:"protocol"`
	CommitInfo json.RawMessage `json:"commitInfo"`
	Txn        json.RawMessage `json:"txn"`
	Cdc        json.RawMessage `json:"cdc"`
}

type addAction struct {
	Path            string             `json:"path"`
	Size            *int64             `json:"size"`
	PartitionValues map[string]*string `json:"partitionValues"`
	Stats           *string            `json:"stats"`
	HasPath         bool               `json:"-"`
}

type removeAction struct {
	Path    string `json:"path"`
	HasPath bool   `json:"-"`
}

type addStats struct {
	NumRecords uint64 `json:"numRecords"`
}

// UnmarshalJSON tracks whether "path" was actually present, since Delta
// distinguishes an absent field from an empty string and spec §4.2 treats
// absence as MalformedAction.
func (a *addAction) UnmarshalJSON(b []byte) error {
	type alias addAction
	var raw struct {
		alias
		Path *string `json:"path"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*a = addAction(raw.alias)
	if raw.Path != nil {
		a.Path = *raw.Path
		a.HasPath = true
	}
	return nil
}

func (r *removeAction) UnmarshalJSON(b []byte) error {
	type alias removeAction
	var raw struct {
		alias
		Path *string `json:"path"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = removeAction(raw.alias)
	if raw.Path != nil {
		r.Path = *raw.Path
		r.HasPath = true
	}
	return nil
}

// numRecords parses the add action's stats blob (itself a JSON-encoded
// string per the Delta log format) and returns its numRecords field, or 0
// when stats is absent or doesn't carry one (spec §4.3).
func (a *addAction) numRecords() uint64 {
	if a.Stats == nil {
		return 0
	}
	var s addStats
	if err := json.Unmarshal([]byte(*a.Stats), &s); err != nil {
		return 0
	}
	return s.NumRecords
}
