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

// Package rpsval implements the object-id and value algebra (C1, C2) shared
// by the registry, loader and dumper: a 96-bit object id and a tagged sum of
// immutable values (empty, int, double, string, object-ref, set, tuple,
// closure, instance, embedded json).
package rpsval

import (
	"encoding/json"
	"fmt"
	"math"
)

// ObjectRef is an opaque, comparable handle to an object. The core value
// algebra never dereferences it directly; this interface is the one hook
// it needs (id + transience), so the heap package's *Object can satisfy
// it without rpsval importing heap (which would be a cycle).
type ObjectRef interface {
	RefId() ObjectId
	RefTransient() bool
}

// Tag discriminates the variants of Value.
type Tag uint8

const (
	TagEmpty Tag = iota
	TagInt
	TagDouble
	TagString
	TagObjectRef
	TagSet
	TagTuple
	TagClosure
	TagInstance
	TagJSON
)

func (t Tag) String() string {
	switch t {
	case TagEmpty:
		return "empty"
	case TagInt:
		return "int"
	case TagDouble:
		return "double"
	case TagString:
		return "string"
	case TagObjectRef:
		return "objectref"
	case TagSet:
		return "set"
	case TagTuple:
		return "tuple"
	case TagClosure:
		return "closure"
	case TagInstance:
		return "instance"
	case TagJSON:
		return "json"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// MetaInfo is the optional (metaobject, metarank) pair a Closure or Instance
// may carry, stored apart from its contents.
type MetaInfo struct {
	Metaobject ObjectRef
	Metarank   int32
}

// IsMetaTransient is true when there is no metaobject attached.
func (m *MetaInfo) IsMetaTransient() bool { return m == nil || m.Metaobject == nil }

// Instance is the payload of a TagInstance value: a fixed-width attribute
// map (keyed by the class's declared attribute set) plus trailing
// components.
type Instance struct {
	Class      ObjectRef
	Meta       *MetaInfo
	Attrs      *AttrMap
	Components []Value
}

// Closure is the payload of a TagClosure value.
type Closure struct {
	Connective  ObjectRef
	Environment []Value
	Meta        *MetaInfo
}

// Value is an immutable member of the value algebra. The zero
// Value is TagEmpty.
type Value struct {
	tag  Tag
	i    int64
	f    float64
	s    string
	ref  ObjectRef   // TagObjectRef
	objs []ObjectRef // TagSet (sorted, deduped), TagTuple (as-given)
	clos *Closure    // TagClosure
	inst *Instance   // TagInstance
	raw  json.RawMessage
}

// Empty is the sentinel "no value", distinct from a null ObjectRef.
var Empty = Value{tag: TagEmpty}

func NewInt(v int64) Value    { return Value{tag: TagInt, i: v} }
func NewDouble(v float64) Value {
	if math.IsNaN(v) {
		panic("rpsval: NaN double is forbidden")
	}
	return Value{tag: TagDouble, f: v}
}
func NewString(v string) Value { return Value{tag: TagString, s: v} }

// NewObjectRef wraps an object reference; ref may be nil (the null ref).
func NewObjectRef(ref ObjectRef) Value { return Value{tag: TagObjectRef, ref: ref} }

// NewSet builds a Set value: it deduplicates and sorts by id order.
func NewSet(elems []ObjectRef) Value {
	sorted := dedupeSortRefs(elems)
	return Value{tag: TagSet, objs: sorted}
}

// NewTuple builds a Tuple value; order is preserved, duplicates allowed.
func NewTuple(elems []ObjectRef) Value {
	cp := make([]ObjectRef, len(elems))
	copy(cp, elems)
	return Value{tag: TagTuple, objs: cp}
}

// NewClosure builds a Closure value.
func NewClosure(connective ObjectRef, env []Value, meta *MetaInfo) Value {
	envCp := make([]Value, len(env))
	copy(envCp, env)
	return Value{tag: TagClosure, clos: &Closure{Connective: connective, Environment: envCp, Meta: meta}}
}

// NewInstance builds an Instance value. It does not itself check attrs
// against class's declared attribute set; callers that can only learn
// the class's attribute set asynchronously (the loader, on a forward
// reference) construct the value eagerly and validate it later.
func NewInstance(class ObjectRef, attrs *AttrMap, comps []Value, meta *MetaInfo) Value {
	compCp := make([]Value, len(comps))
	copy(compCp, comps)
	return Value{tag: TagInstance, inst: &Instance{Class: class, Meta: meta, Attrs: attrs, Components: compCp}}
}

// NewJSON wraps an already-validated embedded JSON document.
func NewJSON(raw json.RawMessage) Value {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{tag: TagJSON, raw: cp}
}

func (v Value) Tag() Tag { return v.tag }
func (v Value) IsEmpty() bool { return v.tag == TagEmpty }

// ErrTypeMismatch is returned by the As* extractors when the tag doesn't match.
type ErrTypeMismatch struct {
	Want Tag
	Got  Tag
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("rpsval: type mismatch: want %s, got %s", e.Want, e.Got)
}

func (v Value) AsInt() (int64, error) {
	if v.tag != TagInt {
		return 0, &ErrTypeMismatch{TagInt, v.tag}
	}
	return v.i, nil
}

func (v Value) AsDouble() (float64, error) {
	if v.tag != TagDouble {
		return 0, &ErrTypeMismatch{TagDouble, v.tag}
	}
	return v.f, nil
}

func (v Value) AsString() (string, error) {
	if v.tag != TagString {
		return "", &ErrTypeMismatch{TagString, v.tag}
	}
	return v.s, nil
}

func (v Value) AsObjectRef() (ObjectRef, error) {
	if v.tag != TagObjectRef {
		return nil, &ErrTypeMismatch{TagObjectRef, v.tag}
	}
	return v.ref, nil
}

func (v Value) AsSet() ([]ObjectRef, error) {
	if v.tag != TagSet {
		return nil, &ErrTypeMismatch{TagSet, v.tag}
	}
	return v.objs, nil
}

func (v Value) AsTuple() ([]ObjectRef, error) {
	if v.tag != TagTuple {
		return nil, &ErrTypeMismatch{TagTuple, v.tag}
	}
	return v.objs, nil
}

func (v Value) AsClosure() (*Closure, error) {
	if v.tag != TagClosure {
		return nil, &ErrTypeMismatch{TagClosure, v.tag}
	}
	return v.clos, nil
}

func (v Value) AsInstance() (*Instance, error) {
	if v.tag != TagInstance {
		return nil, &ErrTypeMismatch{TagInstance, v.tag}
	}
	return v.inst, nil
}

func (v Value) AsJSON() (json.RawMessage, error) {
	if v.tag != TagJSON {
		return nil, &ErrTypeMismatch{TagJSON, v.tag}
	}
	return v.raw, nil
}

func dedupeSortRefs(elems []ObjectRef) []ObjectRef {
	cp := make([]ObjectRef, len(elems))
	copy(cp, elems)
	sortRefs(cp)
	out := cp[:0]
	var prev ObjectRef
	havePrev := false
	for _, r := range cp {
		if havePrev && sameRef(prev, r) {
			continue
		}
		out = append(out, r)
		prev = r
		havePrev = true
	}
	return out
}

func sameRef(a, b ObjectRef) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.RefId() == b.RefId()
}

func sortRefs(refs []ObjectRef) {
	// insertion sort is fine: sets are small and id order is the only
	// order, so a direct comparison sort is all we need.
	for i := 1; i < len(refs); i++ {
		for j := i; j > 0 && refLess(refs[j], refs[j-1]); j-- {
			refs[j], refs[j-1] = refs[j-1], refs[j]
		}
	}
}

func refLess(a, b ObjectRef) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	return a.RefId().Less(b.RefId())
}

// WalkRefs invokes visit for every ObjectRef held inside v: the value's
// own ref(s), its set/tuple elements, a closure's connective and
// metaobject, an instance's class, metaobject and attribute keys, and,
// recursively, the refs inside closure environment entries, attribute
// values and instance components. It does not follow refs into the
// objects they name; callers that walk the object graph track their own
// visited state.
func (v Value) WalkRefs(visit func(ObjectRef)) {
	switch v.tag {
	case TagObjectRef:
		if v.ref != nil {
			visit(v.ref)
		}
	case TagSet, TagTuple:
		for _, r := range v.objs {
			if r != nil {
				visit(r)
			}
		}
	case TagClosure:
		if v.clos.Connective != nil {
			visit(v.clos.Connective)
		}
		if v.clos.Meta != nil && v.clos.Meta.Metaobject != nil {
			visit(v.clos.Meta.Metaobject)
		}
		for _, e := range v.clos.Environment {
			e.WalkRefs(visit)
		}
	case TagInstance:
		if v.inst.Class != nil {
			visit(v.inst.Class)
		}
		if v.inst.Meta != nil && v.inst.Meta.Metaobject != nil {
			visit(v.inst.Meta.Metaobject)
		}
		if v.inst.Attrs != nil {
			v.inst.Attrs.Iterate(func(k ObjectRef, val Value) bool {
				if k != nil {
					visit(k)
				}
				val.WalkRefs(visit)
				return true
			})
		}
		for _, c := range v.inst.Components {
			c.WalkRefs(visit)
		}
	}
}
