//go:build ceph

/*
Copyright (C) 2026  The RefPerSys-Go Authors

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
package heap

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephConfig names a RADOS pool a heap directory can live in (build with
// -tags=ceph; see store_ceph_stub.go for the default build).
type CephConfig struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephStore implements Store over a RADOS pool, one object per heap
// file, matching storage/persistence-ceph.go's atomic WriteFull overwrite
// strategy instead of append-segment logs (a heap directory never
// appends, it always rewrites whole files).
type CephStore struct {
	cfg CephConfig

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

func NewCephStore(cfg CephConfig) *CephStore { return &CephStore{cfg: cfg} }

func (s *CephStore) ensureOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	conn, err := rados.NewConnWithClusterAndUser(s.cfg.ClusterName, s.cfg.UserName)
	if err != nil {
		return err
	}
	if s.cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(s.cfg.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(s.cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}
	s.conn, s.ioctx, s.opened = conn, ioctx, true
	return nil
}

func (s *CephStore) obj(p string) string { return path.Join(s.cfg.Prefix, p) }

func (s *CephStore) ReadFile(ctx context.Context, fpath string) ([]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	obj := s.obj(fpath)
	stat, err := s.ioctx.Stat(obj)
	if err != nil {
		return nil, err
	}
	data := make([]byte, stat.Size)
	n, err := s.ioctx.Read(obj, data, 0)
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}

func (s *CephStore) WriteFile(ctx context.Context, fpath string, data []byte) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.ioctx.WriteFull(s.obj(fpath), data)
}

func (s *CephStore) Rename(ctx context.Context, oldPath, newPath string) error {
	data, err := s.ReadFile(ctx, oldPath)
	if err != nil {
		return err
	}
	if err := s.WriteFile(ctx, newPath, data); err != nil {
		return err
	}
	return s.Remove(ctx, oldPath)
}

func (s *CephStore) List(ctx context.Context, dir string) ([]string, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	prefix := s.obj(dir)
	iter, err := s.ioctx.Iter()
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var names []string
	for iter.Next() {
		name := iter.Value()
		if strings.HasPrefix(name, prefix+"/") {
			names = append(names, strings.TrimPrefix(name, prefix+"/"))
		}
	}
	return names, iter.Err()
}

// MkdirAll is a no-op: RADOS objects have no directory hierarchy.
func (s *CephStore) MkdirAll(ctx context.Context, dir string) error { return nil }

func (s *CephStore) Exists(ctx context.Context, fpath string) (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	_, err := s.ioctx.Stat(s.obj(fpath))
	if err == nil {
		return true, nil
	}
	if err == rados.ErrNotFound {
		return false, nil
	}
	return false, err
}

func (s *CephStore) Remove(ctx context.Context, fpath string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	err := s.ioctx.Delete(s.obj(fpath))
	if err == rados.ErrNotFound {
		return nil
	}
	return err
}
