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

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrUnknownValueShape is the recoverable error for a JSON shape that
// ValueFromJSON cannot interpret.
var ErrUnknownValueShape = errors.New("rpsval: unknown value JSON shape")

// ErrTransientValue is returned by ValueToJSON when a value reaches an
// object whose RefTransient() is true; the dumper is the one entitled to
// decide whether that means "skip this sub-value with a warning".
var ErrTransientValue = errors.New("rpsval: value is not dumpable: transient object reached")

// Resolver looks an id up in the registry. The loader's resolver
// auto-vivifies a placeholder object for unknown ids and leaves final
// "did everything resolve" validation to end-of-load.
type Resolver func(ObjectId) (ObjectRef, error)

// ValueFromJSON decodes a value already unmarshalled into interface{} (by
// an encoding/json.Decoder using UseNumber) into the rpsval value algebra.
func ValueFromJSON(raw any, resolve Resolver) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Empty, nil
	case bool:
		// not a native shape in, but accepted defensively as int 0/1
		if t {
			return NewInt(1), nil
		}
		return NewInt(0), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Empty, ErrUnknownValueShape
		}
		if math.IsNaN(f) {
			return Empty, ErrUnknownValueShape
		}
		return NewDouble(f), nil
	case float64:
		if math.IsNaN(t) {
			return Empty, ErrUnknownValueShape
		}
		return NewDouble(t), nil
	case string:
		if LooksLikeObjectId(t) {
			id, err := ParseObjectId(t)
			if err == nil {
				ref, rerr := resolve(id)
				if rerr != nil {
					return Empty, rerr
				}
				return NewObjectRef(ref), nil
			}
		}
		return NewString(t), nil
	case map[string]any:
		return valueFromObject(t, resolve)
	default:
		return Empty, ErrUnknownValueShape
	}
}

func valueFromObject(t map[string]any, resolve Resolver) (Value, error) {
	if s, ok := t["string"]; ok && len(t) == 1 {
		if str, ok2 := s.(string); ok2 {
			return NewString(str), nil
		}
		return Empty, ErrUnknownValueShape
	}
	vtype, _ := t["vtype"].(string)
	switch vtype {
	case "set":
		elems, ok := t["elem"].([]any)
		if !ok {
			return Empty, ErrUnknownValueShape
		}
		refs, err := resolveRefList(elems, resolve)
		if err != nil {
			return Empty, err
		}
		return NewSet(refs), nil
	case "tuple":
		comp, ok := t["comp"].([]any)
		if !ok {
			return Empty, ErrUnknownValueShape
		}
		refs, err := resolveRefList(comp, resolve)
		if err != nil {
			return Empty, err
		}
		return NewTuple(refs), nil
	case "closure":
		fnID, _ := t["fn"].(string)
		fnRef, err := resolveIdString(fnID, resolve)
		if err != nil {
			return Empty, err
		}
		envRaw, _ := t["env"].([]any)
		env := make([]Value, len(envRaw))
		for i, e := range envRaw {
			v, err := ValueFromJSON(e, resolve)
			if err != nil {
				return Empty, err
			}
			env[i] = v
		}
		meta, err := metaFromJSON(t, resolve)
		if err != nil {
			return Empty, err
		}
		return NewClosure(fnRef, env, meta), nil
	case "json":
		inner, ok := t["json"]
		if !ok {
			return Empty, ErrUnknownValueShape
		}
		raw, err := json.Marshal(inner)
		if err != nil {
			return Empty, ErrUnknownValueShape
		}
		return NewJSON(raw), nil
	case "instance":
		return Empty, errInstanceNeedsLoader
	default:
		return Empty, ErrUnknownValueShape
	}
}

// errInstanceNeedsLoader signals the heap package to handle "instance"
// decoding itself: it alone knows whether the class's classinfo payload is
// materialized yet and must enqueue a deferred fill otherwise. This
// package only decodes the shapes that never need deferral.
var errInstanceNeedsLoader = errors.New("rpsval: instance decoding requires loader context")

// IsInstanceShape reports whether raw is the `{"vtype":"instance",...}`
// shape, letting the loader special-case it before calling ValueFromJSON.
func IsInstanceShape(raw any) (map[string]any, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	if vt, _ := m["vtype"].(string); vt == "instance" {
		return m, true
	}
	return nil, false
}

func metaFromJSON(t map[string]any, resolve Resolver) (*MetaInfo, error) {
	metaObjRaw, hasMeta := t["metaobj"]
	if !hasMeta {
		return nil, nil
	}
	metaIDStr, ok := metaObjRaw.(string)
	if !ok {
		return nil, ErrUnknownValueShape
	}
	ref, err := resolveIdString(metaIDStr, resolve)
	if err != nil {
		return nil, err
	}
	var rank int32
	if r, ok := t["metarank"]; ok {
		switch rv := r.(type) {
		case json.Number:
			n, _ := rv.Int64()
			rank = int32(n)
		case float64:
			rank = int32(rv)
		}
	}
	return &MetaInfo{Metaobject: ref, Metarank: rank}, nil
}

func resolveIdString(s string, resolve Resolver) (ObjectRef, error) {
	id, err := ParseObjectId(s)
	if err != nil {
		return nil, ErrUnknownValueShape
	}
	return resolve(id)
}

func resolveRefList(elems []any, resolve Resolver) ([]ObjectRef, error) {
	out := make([]ObjectRef, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			return nil, ErrUnknownValueShape
		}
		ref, err := resolveIdString(s, resolve)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

// ValueToJSON is the inverse of ValueFromJSON, producing a JSON-able
// structure per the same shapes. It returns ErrTransientValue if
// any reachable ObjectRef refers to a transient object.
func ValueToJSON(v Value) (any, error) {
	switch v.tag {
	case TagEmpty:
		return nil, nil
	case TagInt:
		return v.i, nil
	case TagDouble:
		return v.f, nil
	case TagString:
		return v.s, nil
	case TagObjectRef:
		return refToJSON(v.ref)
	case TagSet:
		elems, err := refsToJSON(v.objs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"vtype": "set", "elem": elems}, nil
	case TagTuple:
		comp, err := refsToJSON(v.objs)
		if err != nil {
			return nil, err
		}
		return map[string]any{"vtype": "tuple", "comp": comp}, nil
	case TagClosure:
		fn, err := refToJSON(v.clos.Connective)
		if err != nil {
			return nil, err
		}
		env := make([]any, len(v.clos.Environment))
		for i, e := range v.clos.Environment {
			ev, err := ValueToJSON(e)
			if err != nil {
				return nil, err
			}
			env[i] = ev
		}
		out := map[string]any{"vtype": "closure", "fn": fn, "env": env}
		if err := metaToJSON(out, v.clos.Meta); err != nil {
			return nil, err
		}
		return out, nil
	case TagInstance:
		class, err := refToJSON(v.inst.Class)
		if err != nil {
			return nil, err
		}
		keys := v.inst.Attrs.Keys()
		iattrs := make([]any, 0, len(keys))
		v.inst.Attrs.Iterate(func(k ObjectRef, val Value) bool {
			at, aerr := refToJSON(k)
			if aerr != nil {
				err = aerr
				return false
			}
			va, verr := ValueToJSON(val)
			if verr != nil {
				err = verr
				return false
			}
			iattrs = append(iattrs, map[string]any{"at": at, "va": va})
			return true
		})
		if err != nil {
			return nil, err
		}
		icomps := make([]any, len(v.inst.Components))
		for i, c := range v.inst.Components {
			cv, cerr := ValueToJSON(c)
			if cerr != nil {
				return nil, cerr
			}
			icomps[i] = cv
		}
		out := map[string]any{
			"vtype": "instance", "class": class, "isize": len(keys),
			"iattrs": iattrs, "icomps": icomps,
		}
		if err := metaToJSON(out, v.inst.Meta); err != nil {
			return nil, err
		}
		return out, nil
	case TagJSON:
		var inner any
		if err := json.Unmarshal(v.raw, &inner); err != nil {
			return nil, fmt.Errorf("rpsval: embedded json unmarshal: %w", err)
		}
		return map[string]any{"vtype": "json", "json": inner}, nil
	default:
		return nil, ErrUnknownValueShape
	}
}

func metaToJSON(out map[string]any, m *MetaInfo) error {
	if m.IsMetaTransient() {
		return nil
	}
	mo, err := refToJSON(m.Metaobject)
	if err != nil {
		return err
	}
	out["metaobj"] = mo
	out["metarank"] = m.Metarank
	return nil
}

func refToJSON(r ObjectRef) (any, error) {
	if r == nil {
		return nil, nil
	}
	if r.RefTransient() {
		return nil, ErrTransientValue
	}
	return r.RefId().String(), nil
}

func refsToJSON(refs []ObjectRef) ([]any, error) {
	out := make([]any, len(refs))
	for i, r := range refs {
		v, err := refToJSON(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// jsonStructurallyEqual compares two raw JSON documents independent of
// object-key order.
func jsonStructurallyEqual(a, b []byte) bool {
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false
	}
	return deepJSONEqual(va, vb)
}

func deepJSONEqual(a, b any) bool {
	switch at := a.(type) {
	case map[string]any:
		bt, ok := b.(map[string]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for k, v := range at {
			bv, ok := bt[k]
			if !ok || !deepJSONEqual(v, bv) {
				return false
			}
		}
		return true
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !deepJSONEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
