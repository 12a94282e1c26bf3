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
package rpsval

// AttrMap is a small ObjectRef->Value map used for an object's attribute
// map and an Instance's fixed-width attribute set. It keeps a flat
// pairs slice plus a hash index to stay fast without the allocation
// churn of map[ObjectRef]Value for this shape of small, frequently
// iterated key/value list.
type AttrMap struct {
	keys   []ObjectRef
	values []Value
	index  map[ObjectId][]int
}

// NewAttrMap returns an empty map with room for capacity pairs.
func NewAttrMap(capacity int) *AttrMap {
	if capacity < 0 {
		capacity = 0
	}
	return &AttrMap{
		keys:   make([]ObjectRef, 0, capacity),
		values: make([]Value, 0, capacity),
		index:  make(map[ObjectId][]int, capacity),
	}
}

// Len returns the number of pairs.
func (m *AttrMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value bound to key and whether it was present.
func (m *AttrMap) Get(key ObjectRef) (Value, bool) {
	if m == nil || key == nil {
		return Empty, false
	}
	id := key.RefId()
	for _, idx := range m.index[id] {
		if sameRef(m.keys[idx], key) {
			return m.values[idx], true
		}
	}
	return Empty, false
}

// Put inserts or overwrites the binding for key.
func (m *AttrMap) Put(key ObjectRef, val Value) {
	if key == nil {
		return
	}
	id := key.RefId()
	for _, idx := range m.index[id] {
		if sameRef(m.keys[idx], key) {
			m.values[idx] = val
			return
		}
	}
	idx := len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, val)
	m.index[id] = append(m.index[id], idx)
}

// Delete removes the binding for key, if any.
func (m *AttrMap) Delete(key ObjectRef) {
	if m == nil || key == nil {
		return
	}
	id := key.RefId()
	positions := m.index[id]
	for n, idx := range positions {
		if sameRef(m.keys[idx], key) {
			last := len(m.keys) - 1
			movedKey := m.keys[last]
			m.keys[idx] = movedKey
			m.values[idx] = m.values[last]
			m.keys = m.keys[:last]
			m.values = m.values[:last]
			if idx != last {
				// fix up the index entry of whatever pair we moved into idx
				movedID := movedKey.RefId()
				for mi, mv := range m.index[movedID] {
					if mv == last {
						m.index[movedID][mi] = idx
					}
				}
			}
			m.index[id] = append(positions[:n], positions[n+1:]...)
			if len(m.index[id]) == 0 {
				delete(m.index, id)
			}
			return
		}
	}
}

// Iterate calls visit for every pair in insertion order, stopping early if
// visit returns false.
func (m *AttrMap) Iterate(visit func(key ObjectRef, val Value) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !visit(k, m.values[i]) {
			return
		}
	}
}

// Keys returns a defensive copy of all keys.
func (m *AttrMap) Keys() []ObjectRef {
	if m == nil {
		return nil
	}
	out := make([]ObjectRef, len(m.keys))
	copy(out, m.keys)
	return out
}
