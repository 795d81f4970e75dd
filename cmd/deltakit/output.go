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
	"encoding/json"
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/viper"
)

// emit writes v as pretty JSON when --json is set, otherwise defers to
// human, the command's plain-text renderer.
func emit(v any, human func()) error {
	if viper.GetBool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

// humanBytes formats a byte count the way the CLI's non-JSON output
// path does (SPEC_FULL.md DOMAIN STACK, docker/go-units).
func humanBytes(n int64) string {
	return units.HumanSize(float64(n))
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}
