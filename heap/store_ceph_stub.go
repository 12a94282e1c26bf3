//go:build !ceph

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
	"errors"
	"fmt"
)

// CephConfig is the stub shape when Ceph support is not compiled in.
// Build with -tags=ceph to enable it (see store_ceph.go).
type CephConfig struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephStore is the stub Store when Ceph support is not compiled in:
// NewCephStore panics, and the methods only return errCephNotCompiled.
type CephStore struct{}

var errCephNotCompiled = errors.New("heap: ceph support not compiled in; build with -tags=ceph")

func NewCephStore(cfg CephConfig) *CephStore {
	panic(fmt.Sprintf("heap: ceph support not compiled in (pool %q); build with -tags=ceph", cfg.Pool))
}

func (*CephStore) ReadFile(context.Context, string) ([]byte, error) { return nil, errCephNotCompiled }
func (*CephStore) WriteFile(context.Context, string, []byte) error  { return errCephNotCompiled }
func (*CephStore) Rename(context.Context, string, string) error     { return errCephNotCompiled }
func (*CephStore) List(context.Context, string) ([]string, error)   { return nil, errCephNotCompiled }
func (*CephStore) MkdirAll(context.Context, string) error           { return errCephNotCompiled }
func (*CephStore) Exists(context.Context, string) (bool, error)     { return false, errCephNotCompiled }
func (*CephStore) Remove(context.Context, string) error             { return errCephNotCompiled }
