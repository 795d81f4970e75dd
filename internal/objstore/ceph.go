//go:build ceph

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
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"

	"github.com/launix-de/deltakit/internal/dkerr"
)

// cephStore treats a RADOS pool as a flat keyed blob store for on-prem
// Delta tables, grounded on storage/persistence-ceph.go's RADOS client
// lifecycle. RADOS has no hierarchical listing, so ListRecursive iterates
// every object in the pool and filters by prefix client-side.
type cephStore struct {
	userName    string
	clusterName string
	confFile    string
	pool        string
	prefix      string

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

// CephOptions configures the ceph backend; unlike s3/file this backend
// is selected explicitly by the caller (RADOS has no URI scheme of its
// own), mirroring how storage/persistence-ceph.go's CephFactory is wired
// in by config rather than by URI.
type CephOptions struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

func NewCephStore(o CephOptions) Store {
	return &cephStore{
		userName:    o.UserName,
		clusterName: o.ClusterName,
		confFile:    o.ConfFile,
		pool:        o.Pool,
		prefix:      strings.TrimSuffix(o.Prefix, "/"),
	}
}

func (s *cephStore) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	conn, err := rados.NewConnWithClusterAndUser(s.clusterName, s.userName)
	if err != nil {
		return dkerr.Wrap(dkerr.KindStoreError, "ceph connect", err)
	}
	if s.confFile != "" {
		if err := conn.ReadConfigFile(s.confFile); err != nil {
			return dkerr.Wrap(dkerr.KindStoreError, "ceph read config", err)
		}
	} else if err := conn.ReadDefaultConfigFile(); err != nil {
		return dkerr.Wrap(dkerr.KindStoreError, "ceph read default config", err)
	}
	if err := conn.Connect(); err != nil {
		return dkerr.Wrap(dkerr.KindStoreError, "ceph connect", err)
	}
	ioctx, err := conn.OpenIOContext(s.pool)
	if err != nil {
		return dkerr.Wrap(dkerr.KindStoreError, "ceph open pool "+s.pool, err)
	}
	s.conn = conn
	s.ioctx = ioctx
	s.opened = true
	return nil
}

func (s *cephStore) key(location string) string {
	if s.prefix == "" {
		return location
	}
	return s.prefix + "/" + strings.TrimPrefix(location, "/")
}

func (s *cephStore) ListRecursive(ctx context.Context, prefix string) <-chan ListItem {
	out := make(chan ListItem)
	go func() {
		defer close(out)
		if err := s.ensureOpen(); err != nil {
			out <- ListItem{Err: err}
			return
		}
		listPrefix := s.key(prefix)
		iter, err := s.ioctx.Iter()
		if err != nil {
			out <- ListItem{Err: dkerr.Wrap(dkerr.KindStoreError, "ceph iter", err)}
			return
		}
		defer iter.Close()
		for iter.Next() {
			name := iter.Value()
			if !strings.HasPrefix(name, listPrefix) {
				continue
			}
			stat, err := s.ioctx.Stat(name)
			if err != nil {
				continue
			}
			rel := name
			if s.prefix != "" {
				rel = strings.TrimPrefix(strings.TrimPrefix(name, s.prefix), "/")
			}
			select {
			case out <- ListItem{Meta: ObjectMeta{Location: rel, Size: int64(stat.Size), ModTime: stat.ModTime}}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (s *cephStore) Get(ctx context.Context, location string) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	key := s.key(location)
	stat, err := s.ioctx.Stat(key)
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "ceph stat "+location, err)
	}
	buf := make([]byte, stat.Size)
	n, err := s.ioctx.Read(key, buf, 0)
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "ceph read "+location, err)
	}
	return buf[:n], nil
}

func (s *cephStore) Head(ctx context.Context, location string) (ObjectMeta, error) {
	if err := s.ensureOpen(); err != nil {
		return ObjectMeta{}, err
	}
	key := s.key(location)
	stat, err := s.ioctx.Stat(key)
	if err != nil {
		return ObjectMeta{}, dkerr.Wrap(dkerr.KindStoreError, "ceph stat "+location, err)
	}
	return ObjectMeta{Location: location, Size: int64(stat.Size), ModTime: stat.ModTime}, nil
}

func (s *cephStore) GetRange(ctx context.Context, location string, start, end int64) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	key := s.key(location)
	buf := make([]byte, end-start)
	n, err := s.ioctx.Read(key, buf, uint64(start))
	if err != nil {
		return nil, dkerr.Wrap(dkerr.KindStoreError, "ceph read_range "+location, err)
	}
	return buf[:n], nil
}
