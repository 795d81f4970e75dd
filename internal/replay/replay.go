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

// Package replay implements the transaction-log replay of spec §4.2: fold
// add/remove actions across ordered commits into the active file set at a
// target version.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"strconv"

	"github.com/google/btree"
	"github.com/jtolds/gls"
	nonlockingreadmap "github.com/launix-de/NonLockingReadMap"

	"github.com/launix-de/deltakit/internal/dkerr"
	"github.com/launix-de/deltakit/internal/dklog"
	"github.com/launix-de/deltakit/internal/objstore"
)

var commitNamePattern = regexp.MustCompile(`^(\d{20})\.json$`)

// ActiveFile is a data file live at some version (spec §3). It is the
// type surfaced through delta.ActiveFile (a type alias) so replay stays
// the single place that knows how to build one.
type ActiveFile struct {
	Path            string
	Size            int64
	PartitionValues map[string]*string
}

// Result is everything one replay run produces. RowCounts is an internal
// extra (path -> the introducing add's stats.numRecords) consumed only by
// fast_rowcount (spec §4.3); it is not part of the public ActiveFile
// contract in spec §3.
type Result struct {
	Files     []ActiveFile
	RowCounts map[string]uint64
}

// Options tunes the replay; Strict upgrades malformed-JSON lines from a
// silent skip to a MalformedAction error, per spec §7's documented
// strict-mode variant.
type Options struct {
	Strict          bool
	HeadConcurrency int
}

func DefaultOptions() Options {
	return Options{Strict: false, HeadConcurrency: runtime.NumCPU()}
}

type sizeEntry struct {
	path string
	size int64
}

func (e *sizeEntry) GetKey() string    { return e.path }
func (e *sizeEntry) ComputeSize() uint { return uint(len(e.path)) + 16 }

const deltaLogDir = "_delta_log"

// Replay lists {root}/_delta_log/, orders commits, and folds add/remove
// actions up to the target version (nil meaning "through the latest
// commit found"). store is already scoped to the table root (spec
// §4.1), so every path here is root-relative. See spec §4.2 for the
// algorithm this implements step for step.
func Replay(ctx context.Context, store objstore.Store, target *int64, opts Options) (Result, error) {
	log := dklog.WithComponent("replay")

	logPrefix := deltaLogDir
	var metas []objstore.ObjectMeta
	for item := range store.ListRecursive(ctx, logPrefix) {
		if item.Err != nil {
			return Result{}, dkerr.Wrap(dkerr.KindStoreError, "list "+logPrefix, item.Err)
		}
		name := baseName(item.Meta.Location)
		if commitNamePattern.MatchString(name) {
			metas = append(metas, item.Meta)
		}
	}
	sort.Slice(metas, func(i, j int) bool { return baseName(metas[i].Location) < baseName(metas[j].Location) })

	commits, _, err := resolveCommits(metas, target)
	if err != nil {
		return Result{}, err
	}

	active := btree.NewG(32, func(a, b string) bool { return a < b })
	parts := make(map[string]map[string]*string)
	sizes := make(map[string]*int64)
	rowCounts := make(map[string]uint64)

	for _, commit := range commits {
		data, err := store.Get(ctx, commit.Location)
		if err != nil {
			return Result{}, dkerr.Wrap(dkerr.KindStoreError, "get "+commit.Location, err)
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			var act actionLine
			if err := json.Unmarshal(line, &act); err != nil {
				if opts.Strict {
					return Result{}, dkerr.Wrap(dkerr.KindMalformedAction, "malformed commit line in "+commit.Location, err)
				}
				log.Debug().Str("commit", commit.Location).Msg("skipping non-JSON commit line")
				continue
			}
			switch {
			case act.Add != nil:
				if !act.Add.HasPath {
					return Result{}, dkerr.New(dkerr.KindMalformedAction, "add action missing path in "+commit.Location)
				}
				p := act.Add.Path
				active.ReplaceOrInsert(p)
				pv := act.Add.PartitionValues
				if pv == nil {
					pv = map[string]*string{}
				}
				parts[p] = pv
				if act.Add.Size != nil {
					size := *act.Add.Size
					sizes[p] = &size
				} else {
					delete(sizes, p)
				}
				rowCounts[p] = act.Add.numRecords()
			case act.Remove != nil:
				if !act.Remove.HasPath {
					return Result{}, dkerr.New(dkerr.KindMalformedAction, "remove action missing path in "+commit.Location)
				}
				p := act.Remove.Path
				active.Delete(p)
				delete(parts, p)
				delete(sizes, p)
				delete(rowCounts, p)
			default:
				// metaData / protocol / commitInfo / txn / cdc: recognized, ignored.
			}
		}
	}

	var paths []string
	active.Ascend(func(p string) bool {
		paths = append(paths, p)
		return true
	})

	files, err := fillSizes(ctx, store, paths, sizes, parts, opts)
	if err != nil {
		return Result{}, err
	}

	keptRows := make(map[string]uint64, len(files))
	for _, f := range files {
		keptRows[f.Path] = rowCounts[f.Path]
	}

	return Result{Files: files, RowCounts: keptRows}, nil
}

// CurrentVersion returns the maximum commit version found under
// {root}/_delta_log/, per spec §6.
func CurrentVersion(ctx context.Context, store objstore.Store) (int64, error) {
	logPrefix := deltaLogDir
	var versions []int64
	for item := range store.ListRecursive(ctx, logPrefix) {
		if item.Err != nil {
			return 0, dkerr.Wrap(dkerr.KindStoreError, "list "+logPrefix, item.Err)
		}
		name := baseName(item.Meta.Location)
		m := commitNamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return 0, dkerr.New(dkerr.KindLogGapError, "no commits found under "+logPrefix)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions[len(versions)-1], nil
}

// resolveCommits filters and orders the commit metas for replay up to
// target (or through the latest commit when target is nil), detecting
// gaps in the commit sequence per spec §4.2 step 3 / §7 LogGapError.
func resolveCommits(metas []objstore.ObjectMeta, target *int64) ([]objstore.ObjectMeta, int64, error) {
	if len(metas) == 0 {
		if target != nil {
			return nil, 0, dkerr.New(dkerr.KindLogGapError, "no commits found in table")
		}
		return nil, -1, nil
	}

	type numbered struct {
		meta objstore.ObjectMeta
		v    int64
	}
	all := make([]numbered, 0, len(metas))
	for _, m := range metas {
		name := baseName(m.Location)
		sub := commitNamePattern.FindStringSubmatch(name)
		v, err := strconv.ParseInt(sub[1], 10, 64)
		if err != nil {
			continue
		}
		all = append(all, numbered{meta: m, v: v})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	maxV := all[len(all)-1].v
	if target != nil && *target > maxV {
		return nil, 0, dkerr.New(dkerr.KindLogGapError, fmt.Sprintf("requested version %d exceeds max commit %d", *target, maxV))
	}

	limit := maxV
	if target != nil {
		limit = *target
	}

	var kept []numbered
	for i, n := range all {
		if n.v > limit {
			break
		}
		if i > 0 && n.v != all[i-1].v+1 {
			return nil, 0, dkerr.New(dkerr.KindLogGapError, fmt.Sprintf("gap in commit sequence: missing version between %d and %d", all[i-1].v, n.v))
		}
		kept = append(kept, n)
	}

	out := make([]objstore.ObjectMeta, len(kept))
	for i, n := range kept {
		out[i] = n.meta
	}
	return out, limit, nil
}

// fillSizes emits ActiveFile records sorted by path, substituting
// sizes[path] when present or falling back to a bounded-concurrency
// head() call otherwise (spec §4.2 step 6, §9 "size from head as
// fallback"). A NonLockingReadMap caches head() results for the lifetime
// of a single replay, so a path looked up twice within one call never
// issues two head requests.
func fillSizes(ctx context.Context, store objstore.Store, paths []string, sizes map[string]*int64, parts map[string]map[string]*string, opts Options) ([]ActiveFile, error) {
	files := make([]ActiveFile, len(paths))
	cache := nonlockingreadmap.New[sizeEntry, string]()

	concurrency := opts.HeadConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	errs := make(chan error, len(paths))
	done := make(chan struct{}, len(paths))

	log := dklog.WithComponent("replay.head-fallback")

	for i, p := range paths {
		files[i] = ActiveFile{Path: p, PartitionValues: parts[p]}
		if sz := sizes[p]; sz != nil {
			files[i].Size = *sz
			continue
		}
		i, p := i, p
		sem <- struct{}{}
		gls.Go(func() {
			defer func() { <-sem; done <- struct{}{} }()
			if cached := cache.Get(p); cached != nil {
				files[i].Size = cached.size
				return
			}
			meta, err := store.Head(ctx, p)
			if err != nil {
				log.Warn().Err(err).Str("path", p).Msg("head fallback failed")
				errs <- dkerr.Wrap(dkerr.KindStoreError, "head fallback failed for "+p, err)
				return
			}
			cache.Set(&sizeEntry{path: p, size: meta.Size})
			files[i].Size = meta.Size
		})
	}

	pending := 0
	for _, p := range paths {
		if sz := sizes[p]; sz == nil {
			pending++
			_ = p
		}
	}
	for j := 0; j < pending; j++ {
		<-done
	}
	close(errs)
	for e := range errs {
		if e != nil {
			return nil, e
		}
	}

	return files, nil
}

func baseName(location string) string {
	for i := len(location) - 1; i >= 0; i-- {
		if location[i] == '/' {
			return location[i+1:]
		}
	}
	return location
}
