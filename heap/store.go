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

import "context"

// Store is the pluggable persistence backend the loader reads from and
// the dumper writes to, narrowed to the whole-file operations the
// atomic-rename dance actually needs: a heap directory is a tree of
// whole JSON and header files, never appended to in place.
type Store interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	Rename(ctx context.Context, oldPath, newPath string) error
	List(ctx context.Context, dir string) ([]string, error)
	MkdirAll(ctx context.Context, dir string) error
	// Exists reports whether path exists, distinguishing a missing file
	// (ok=false, err=nil) from a genuine I/O error.
	Exists(ctx context.Context, path string) (ok bool, err error)
	Remove(ctx context.Context, path string) error
}

// StoreFactory hands back a Store scoped to one heap directory.
type StoreFactory interface {
	OpenStore(root string) (Store, error)
}
