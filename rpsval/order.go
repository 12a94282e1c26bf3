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

import "bytes"

// Equal is structural equality: variant-then-contents. There is no
// cross-tag coercion (int==string etc.) — the value algebra is a closed
// typed sum, not a dynamically-coerced scripting value.
func Equal(a, b Value) bool {
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TagEmpty:
		return true
	case TagInt:
		return a.i == b.i
	case TagDouble:
		return a.f == b.f
	case TagString:
		return a.s == b.s
	case TagObjectRef:
		return sameRef(a.ref, b.ref)
	case TagSet, TagTuple:
		if len(a.objs) != len(b.objs) {
			return false
		}
		for i := range a.objs {
			if !sameRef(a.objs[i], b.objs[i]) {
				return false
			}
		}
		return true
	case TagClosure:
		if !sameRef(a.clos.Connective, b.clos.Connective) {
			return false
		}
		if len(a.clos.Environment) != len(b.clos.Environment) {
			return false
		}
		for i := range a.clos.Environment {
			if !Equal(a.clos.Environment[i], b.clos.Environment[i]) {
				return false
			}
		}
		return equalMeta(a.clos.Meta, b.clos.Meta)
	case TagInstance:
		if !sameRef(a.inst.Class, b.inst.Class) {
			return false
		}
		if !equalMeta(a.inst.Meta, b.inst.Meta) {
			return false
		}
		if a.inst.Attrs.Len() != b.inst.Attrs.Len() {
			return false
		}
		eq := true
		a.inst.Attrs.Iterate(func(k ObjectRef, v Value) bool {
			bv, ok := b.inst.Attrs.Get(k)
			if !ok || !Equal(v, bv) {
				eq = false
				return false
			}
			return true
		})
		if !eq {
			return false
		}
		if len(a.inst.Components) != len(b.inst.Components) {
			return false
		}
		for i := range a.inst.Components {
			if !Equal(a.inst.Components[i], b.inst.Components[i]) {
				return false
			}
		}
		return true
	case TagJSON:
		return jsonStructurallyEqual(a.raw, b.raw)
	default:
		return false
	}
}

func equalMeta(a, b *MetaInfo) bool {
	aNil, bNil := a.IsMetaTransient(), b.IsMetaTransient()
	if aNil != bNil {
		return false
	}
	if aNil {
		return true
	}
	return sameRef(a.Metaobject, b.Metaobject) && a.Metarank == b.Metarank
}

// Less orders values first by variant tag, then by contents: scalars by
// value, refs by id, sets and tuples element by element and then by
// length. Closures compare only their connective and then environment
// length, and instances only their class and then attribute count;
// environment entries, attribute values and components are not compared.
// JSON values compare by raw bytes, not structurally, so two JSON values
// that Equal accepts as equal can still be ordered apart.
func Less(a, b Value) bool {
	if a.tag != b.tag {
		return a.tag < b.tag
	}
	switch a.tag {
	case TagEmpty:
		return false
	case TagInt:
		return a.i < b.i
	case TagDouble:
		return a.f < b.f
	case TagString:
		return a.s < b.s
	case TagObjectRef:
		return refLess(a.ref, b.ref)
	case TagSet, TagTuple:
		n := len(a.objs)
		if len(b.objs) < n {
			n = len(b.objs)
		}
		for i := 0; i < n; i++ {
			if !sameRef(a.objs[i], b.objs[i]) {
				return refLess(a.objs[i], b.objs[i])
			}
		}
		return len(a.objs) < len(b.objs)
	case TagClosure:
		if !sameRef(a.clos.Connective, b.clos.Connective) {
			return refLess(a.clos.Connective, b.clos.Connective)
		}
		return len(a.clos.Environment) < len(b.clos.Environment)
	case TagInstance:
		if !sameRef(a.inst.Class, b.inst.Class) {
			return refLess(a.inst.Class, b.inst.Class)
		}
		return a.inst.Attrs.Len() < b.inst.Attrs.Len()
	case TagJSON:
		return bytes.Compare(a.raw, b.raw) < 0
	default:
		return false
	}
}
