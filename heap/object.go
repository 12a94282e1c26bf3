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
	"time"

	"github.com/refpersys/rpsheap/rpsval"
)

// Object is a node of the persistent heap graph: an id, a class, an
// optional space (nil means transient), a monotonic mtime, an
// attribute map, a component sequence, optional dynamically-resolved
// getter/apply functions, and at most one payload. Every mutation path
// acquires mu, its own recursive-in-spirit lock (Go mutexes aren't
// reentrant, so internal helpers never call back into the public,
// locking API).
type Object struct {
	mu sync.Mutex

	id    rpsval.ObjectId
	class rpsval.ObjectRef
	space rpsval.ObjectRef
	mtime float64

	attrs *rpsval.AttrMap
	comps []rpsval.Value

	magicGetter GetterFunc
	applying    ApplyFunc
	payload     Payload

	// restricted objects are excluded from dump-time constant-scan
	// discovery even if their id literally appears in source (a
	// supplement pulled from the original C++ loader's handling of
	// objects marked internal-only).
	restricted bool
}

// GetterFunc supplies a magic attribute's value on demand; ApplyFunc is
// invoked when the object is used as a callable.
type GetterFunc func(o *Object, attr rpsval.ObjectRef) (rpsval.Value, bool)
type ApplyFunc func(o *Object, args []rpsval.Value) (rpsval.Value, error)

// NewObject allocates an empty, transient object with the given id. The
// loader's first pass uses this for every object-begin line; the
// runtime uses it for fresh allocations.
func NewObject(id rpsval.ObjectId) *Object {
	return &Object{id: id, attrs: rpsval.NewAttrMap(0)}
}

func (o *Object) RefId() rpsval.ObjectId { return o.id }

// RefTransient reports space(o) == null.
func (o *Object) RefTransient() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.space == nil
}

func (o *Object) Id() rpsval.ObjectId { return o.id }

func (o *Object) Class() rpsval.ObjectRef {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.class
}

func (o *Object) Space() rpsval.ObjectRef {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.space
}

func (o *Object) Mtime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mtime
}

func (o *Object) Restricted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.restricted
}

func (o *Object) SetRestricted(v bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.restricted = v
}

// --- loader contract -------------------------------------------------

func (o *Object) LoaderSetClass(c rpsval.ObjectRef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.class = c
}

func (o *Object) LoaderSetSpace(s rpsval.ObjectRef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.space = s
}

// MaxMtimeGraceSeconds is the clamp window of: "clamp any value more
// than 300 s in the future".
const MaxMtimeGraceSeconds = 300.0

// LoaderSetMtime sets mtime, clamping to loadStart+grace with a reported
// warning when over budget.
func (o *Object) LoaderSetMtime(t float64, loadStart time.Time, log Logger) {
	limit := float64(loadStart.Unix()) + MaxMtimeGraceSeconds
	o.mu.Lock()
	clamped := t > limit
	if clamped {
		o.mtime = limit
	} else {
		o.mtime = t
	}
	id := o.id
	o.mu.Unlock()
	if clamped {
		warnPosition(log, "", "", 0, id, "mtime clamped: value was more than 300s in the future")
	}
}

func (o *Object) LoaderReserveComps(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cap(o.comps) < n {
		grown := make([]rpsval.Value, len(o.comps), n)
		copy(grown, o.comps)
		o.comps = grown
	}
}

func (o *Object) LoaderAddComp(v rpsval.Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.comps = append(o.comps, v)
}

func (o *Object) LoaderPutAttr(attr rpsval.ObjectRef, val rpsval.Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attrs.Put(attr, val)
}

func (o *Object) LoaderPutMagicGetter(fn GetterFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.magicGetter = fn
}

func (o *Object) LoaderPutApplyingFn(fn ApplyFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applying = fn
}

// InstallPayload attaches a payload, failing with PayloadAlreadyPresent if
// one is already installed.
func (o *Object) InstallPayload(p Payload) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.payload != nil {
		return newErr(KindPayloadAlreadyPresent, "", 0, o.id, "", nil)
	}
	o.payload = p
	return nil
}

// ResetPayload forcibly replaces the payload; only runtime code that
// understands the consequences should call this.
func (o *Object) ResetPayload(p Payload) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.payload = p
}

func (o *Object) Payload() Payload {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.payload
}

// --- runtime contract -------------------------------------------------

// GetAttr looks the attribute up in the map, falling back to the magic
// getter when absent.
func (o *Object) GetAttr(attr rpsval.ObjectRef) (rpsval.Value, bool) {
	o.mu.Lock()
	v, ok := o.attrs.Get(attr)
	getter := o.magicGetter
	o.mu.Unlock()
	if ok {
		return v, true
	}
	if getter != nil {
		return getter(o, attr)
	}
	return rpsval.Empty, false
}

func (o *Object) PutAttr(attr rpsval.ObjectRef, val rpsval.Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attrs.Put(attr, val)
}

func (o *Object) AttrMap() *rpsval.AttrMap {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attrs
}

func (o *Object) AppendComp(v rpsval.Value) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.comps = append(o.comps, v)
}

func (o *Object) Comp(i int) rpsval.Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.comps[i]
}

func (o *Object) NumComps() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.comps)
}

func (o *Object) Comps() []rpsval.Value {
	o.mu.Lock()
	defer o.mu.Unlock()
	cp := make([]rpsval.Value, len(o.comps))
	copy(cp, o.comps)
	return cp
}

// hasMagicGetter and hasApplyingFn report whether a dynamic hook was
// bound, for the dumper's "magicattr"/"applying" body flags.
func (o *Object) hasMagicGetter() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.magicGetter != nil
}

func (o *Object) hasApplyingFn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.applying != nil
}

func (o *Object) Apply(args []rpsval.Value) (rpsval.Value, error) {
	o.mu.Lock()
	fn := o.applying
	o.mu.Unlock()
	if fn == nil {
		return rpsval.Empty, newErr(KindMissingDynamicSymbol, "", 0, o.id, "", nil)
	}
	return fn(o, args)
}

// GetOrComputeClass returns the class, computing it via reg's metaclass
// fixpoint lookup if one was never bound: class(o).class = class holds
// at the class-of-classes.
func (o *Object) GetOrComputeClass(reg *Registry) rpsval.ObjectRef {
	o.mu.Lock()
	c := o.class
	o.mu.Unlock()
	if c != nil {
		return c
	}
	return reg.RootClass()
}

// DumpScan enumerates every reference o holds — class, space, attrs,
// components, payload contents — forwarding each to visit.
func (o *Object) DumpScan(visit func(rpsval.ObjectRef)) {
	o.mu.Lock()
	class, space, attrs, comps, payload := o.class, o.space, o.attrs, o.comps, o.payload
	o.mu.Unlock()

	if class != nil {
		visit(class)
	}
	if space != nil {
		visit(space)
	}
	attrs.Iterate(func(k rpsval.ObjectRef, v rpsval.Value) bool {
		visit(k)
		v.WalkRefs(visit)
		return true
	})
	for _, c := range comps {
		c.WalkRefs(visit)
	}
	if payload != nil {
		payload.DumpScan(visit)
	}
}
