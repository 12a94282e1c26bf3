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

import "sync"

// SymbolTable is the abstraction asks for in place of dlsym: "resolve
// (name) -> Option<FunctionPointer>". The core never assumes a concrete
// mechanism; a host program plugs one in at startup via
// StaticSymbolTable.Register or a custom SymbolTable implementation.
type SymbolTable interface {
	Resolve(name string) (any, bool)
}

// StaticSymbolTable is the trivial, in-process SymbolTable: a map
// populated by Register calls made by generated or
// hand-written glue code before a load runs.
type StaticSymbolTable struct {
	mu      sync.RWMutex
	symbols map[string]any
}

// NewStaticSymbolTable returns an empty table.
func NewStaticSymbolTable() *StaticSymbolTable {
	return &StaticSymbolTable{symbols: make(map[string]any)}
}

func (t *StaticSymbolTable) Register(name string, fn any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols[name] = fn
}

func (t *StaticSymbolTable) Resolve(name string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.symbols[name]
	return fn, ok
}

// Prefixes used when deriving a dynamic symbol name from an object id,
// matching the three dynamic hooks names.
const (
	GetterPrefix = "rps_getter_"
	ApplyPrefix  = "rps_applying_"
	PayloadPrefix = "rps_payload_"
)
