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

// Package delta is the public surface of the toolkit: a TableHandle
// identifies a table by URI and carries the store opened by LoadTable,
// and every operation lists and replays the log fresh through that
// store (spec §3 — no caching of replay results is part of this
// contract). The store itself is not re-opened per operation.
package delta

import (
	"context"

	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/objstore"
	"github.com/launix-de/deltakit/internal/replay"
)

// ActiveFile is a data file live at some version (spec §3). It is an
// alias of replay.ActiveFile so the replayer stays the single place that
// constructs one; delta only ever consumes them.
type ActiveFile = replay.ActiveFile

// TableHandle identifies a table. It is immutable and holds the store
// opened by LoadTable but no table state — every operation below lists
// and replays the log again through that same store.
type TableHandle struct {
	URI           string
	PinnedVersion *int64

	store           objstore.Store
	headConcurrency int
}

// LoadTable resolves uri into a TableHandle. It picks the backend
// eagerly (so an empty URI or a scheme with no backend fails at load
// time) but performs no listing or replay yet; the s3 backend loads its
// configuration and credentials only on the first operation, so
// credential problems surface there. The returned store is already
// scoped to the table root (spec §4.1), so every operation below
// addresses paths relative to it.
func LoadTable(uri string) (TableHandle, error) {
	return LoadTableWithOptions(uri, objstore.Options{})
}

func LoadTableWithOptions(uri string, opts objstore.Options) (TableHandle, error) {
	store, _, err := objstore.Open(uri, opts)
	if err != nil {
		return TableHandle{}, err
	}
	return TableHandle{URI: uri, store: store, headConcurrency: opts.Concurrency}, nil
}

// Pin returns a copy of h with a fixed version, so every subsequent
// operation on the copy replays through exactly that commit.
func (h TableHandle) Pin(version int64) TableHandle {
	v := version
	h.PinnedVersion = &v
	return h
}

func (h TableHandle) resolveVersion(ctx context.Context, requested *int64) (*int64, error) {
	if requested != nil {
		return requested, nil
	}
	if h.PinnedVersion != nil {
		return h.PinnedVersion, nil
	}
	return nil, nil
}

func (h TableHandle) ensureOpened() error {
	if h.store == nil {
		return dkerr.New(dkerr.KindStoreError, "table handle not loaded via LoadTable")
	}
	return nil
}

// CurrentVersion returns the maximum commit version found in the log
// (spec §6).
func CurrentVersion(ctx context.Context, h TableHandle) (int64, error) {
	if err := h.ensureOpened(); err != nil {
		return 0, err
	}
	return replay.CurrentVersion(ctx, h.store)
}

// ListActiveFiles replays the log through version (or through the
// handle's pinned version, or through the latest commit when neither is
// set) and returns the active file set sorted by path.
func ListActiveFiles(ctx context.Context, h TableHandle, version *int64) ([]ActiveFile, error) {
	res, err := replayTable(ctx, h, version)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

func replayTable(ctx context.Context, h TableHandle, version *int64) (replay.Result, error) {
	if err := h.ensureOpened(); err != nil {
		return replay.Result{}, err
	}
	target, err := h.resolveVersion(ctx, version)
	if err != nil {
		return replay.Result{}, err
	}
	opts := replay.DefaultOptions()
	if h.headConcurrency > 0 {
		opts.HeadConcurrency = h.headConcurrency
	}
	return replay.Replay(ctx, h.store, target, opts)
}
