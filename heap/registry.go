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
	"sync"

	"github.com/google/btree"
	"github.com/refpersys/rpsheap/rpsval"
)

// spaceEntry is the btree element for a per-space ordered object index:
// google/btree's generic BTreeG keeps each space's members in ascending
// id order, which SpaceMembersSorted reads back without a sort pass.
type spaceEntry struct {
	id  rpsval.ObjectId
	obj *Object
}

func spaceEntryLess(a, b spaceEntry) bool { return a.id.Less(b.id) }

// Registry is the process-wide set of tables: id->object, the root
// set, the name->symbol table, and the constant-slot bindings used by
// hand-written/generated code. A single mutex guards all of it.
type Registry struct {
	mu sync.Mutex

	idToObject    map[rpsval.ObjectId]*Object
	roots         map[rpsval.ObjectId]*Object
	nameToSymbol  map[string]*Object
	constantSlots map[rpsval.ObjectId]*ConstantSlot
	rootClass     *Object

	spaceIndex map[rpsval.ObjectId]*btree.BTreeG[spaceEntry]
}

// ConstantSlot is a compile-time-stable binding a host program declares
// ahead of a load; BindHardcodedConstantSlot fills *Ref in once the id is
// found.
type ConstantSlot struct {
	ID  rpsval.ObjectId
	Ref *rpsval.ObjectRef
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		idToObject:    make(map[rpsval.ObjectId]*Object),
		roots:         make(map[rpsval.ObjectId]*Object),
		nameToSymbol:  make(map[string]*Object),
		constantSlots: make(map[rpsval.ObjectId]*ConstantSlot),
		spaceIndex:    make(map[rpsval.ObjectId]*btree.BTreeG[spaceEntry]),
	}
}

// InternByID returns the object for id, allocating an empty, transient
// placeholder if this is the first time id is seen. The loader's
// forward-reference and deferred-fill machinery relies on this: any id
// mentioned before its own object-begin line still resolves; ids that are never filled by end-of-load are
// reported as UnresolvedId.
func (r *Registry) InternByID(id rpsval.ObjectId) *Object {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.idToObject[id]; ok {
		return o
	}
	o := NewObject(id)
	r.idToObject[id] = o
	return o
}

// FindByID looks up id without creating a placeholder.
func (r *Registry) FindByID(id rpsval.ObjectId) (*Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.idToObject[id]
	return o, ok
}

// Filled reports whether o has been given a class, i.e. is no longer an
// auto-vivified placeholder.
func (o *Object) Filled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.class != nil
}

// UnresolvedIDs returns every interned id whose object was never filled,
// for the loader's end-of-load check.
func (r *Registry) UnresolvedIDs() []rpsval.ObjectId {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []rpsval.ObjectId
	for id, o := range r.idToObject {
		if !o.Filled() {
			out = append(out, id)
		}
	}
	return out
}

// AddRoot adds o to the root set, returning true iff it was not already
// a root. Calling it again on the same object is a no-op.
func (r *Registry) AddRoot(o *Object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := o.Id()
	if _, ok := r.roots[id]; ok {
		return false
	}
	r.roots[id] = o
	return true
}

// RemoveRoot removes o from the root set, returning false (no-op) if it
// was not a root.
func (r *Registry) RemoveRoot(o *Object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := o.Id()
	if _, ok := r.roots[id]; !ok {
		return false
	}
	delete(r.roots, id)
	return true
}

func (r *Registry) IsRoot(o *Object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.roots[o.Id()]
	return ok
}

// EachRoot calls visit for every root, in no particular order.
func (r *Registry) EachRoot(visit func(*Object)) {
	r.mu.Lock()
	roots := make([]*Object, 0, len(r.roots))
	for _, o := range r.roots {
		roots = append(roots, o)
	}
	r.mu.Unlock()
	for _, o := range roots {
		visit(o)
	}
}

func (r *Registry) RootCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.roots)
}

// RegisterSymbol binds name to o in the process-wide name table. Re-registering the same name rebinds it; the loader never calls
// this twice for the same name in a well-formed heap.
func (r *Registry) RegisterSymbol(name string, o *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nameToSymbol[name] = o
}

func (r *Registry) FindSymbol(name string) (*Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.nameToSymbol[name]
	return o, ok
}

func (r *Registry) SymbolCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nameToSymbol)
}

// BindHardcodedRootSlot looks id up and, if found, adds it as a root,
// the step that binds hard-coded root slots between the loader's two
// passes.
func (r *Registry) BindHardcodedRootSlot(id rpsval.ObjectId) (*Object, bool) {
	o, ok := r.FindByID(id)
	if !ok {
		return nil, false
	}
	r.AddRoot(o)
	return o, true
}

// BindHardcodedConstantSlot registers slot to be filled in once id is
// resolved; call ResolveConstantSlots after the id is expected to exist.
// Missing constants are warnings, not fatal.
func (r *Registry) BindHardcodedConstantSlot(id rpsval.ObjectId, slot *rpsval.ObjectRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constantSlots[id] = &ConstantSlot{ID: id, Ref: slot}
}

// ResolveConstantSlots fills every bound constant slot whose id is now
// known, best-effort; it returns the ids that remain unresolved so the
// caller can log a per-slot warning.
func (r *Registry) ResolveConstantSlots() []rpsval.ObjectId {
	r.mu.Lock()
	slots := make([]*ConstantSlot, 0, len(r.constantSlots))
	for _, s := range r.constantSlots {
		slots = append(slots, s)
	}
	r.mu.Unlock()

	var missing []rpsval.ObjectId
	for _, s := range slots {
		if o, ok := r.FindByID(s.ID); ok {
			*s.Ref = o
		} else {
			missing = append(missing, s.ID)
		}
	}
	return missing
}

// SetRootClass installs the metacircular fixpoint anchor that
// GetOrComputeClass falls back to when an object was never given an
// explicit class of its own.
func (r *Registry) SetRootClass(o *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rootClass = o
}

func (r *Registry) RootClass() rpsval.ObjectRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rootClass == nil {
		return nil
	}
	return r.rootClass
}

// IndexInSpace records that o belongs to spaceID's ascending-id index,
// which SpaceMembersSorted returns in order.
func (r *Registry) IndexInSpace(spaceID rpsval.ObjectId, o *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bt, ok := r.spaceIndex[spaceID]
	if !ok {
		bt = btree.NewG[spaceEntry](32, spaceEntryLess)
		r.spaceIndex[spaceID] = bt
	}
	bt.ReplaceOrInsert(spaceEntry{id: o.Id(), obj: o})
}

// SpaceMembersSorted returns every indexed object of spaceID in ascending
// id order.
func (r *Registry) SpaceMembersSorted(spaceID rpsval.ObjectId) []*Object {
	r.mu.Lock()
	bt, ok := r.spaceIndex[spaceID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	out := make([]*Object, 0, bt.Len())
	bt.Ascend(func(e spaceEntry) bool {
		out = append(out, e.obj)
		return true
	})
	return out
}

// KnownSpaces returns every space id that currently has at least one
// indexed member.
func (r *Registry) KnownSpaces() []rpsval.ObjectId {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rpsval.ObjectId, 0, len(r.spaceIndex))
	for id := range r.spaceIndex {
		out = append(out, id)
	}
	return out
}

// Size reports the total number of interned objects, used by the CLI's
// stats subcommand.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.idToObject)
}
