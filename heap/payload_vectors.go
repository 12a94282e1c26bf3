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

	"github.com/refpersys/rpsheap/rpsval"
)

// SetObPayload is a mutable set of objects, serialized as
// {"setob":[ids...]}.
type SetObPayload struct {
	mu      sync.Mutex
	members []rpsval.ObjectRef
}

func (s *SetObPayload) Kind() string { return "setob" }

func (s *SetObPayload) DumpScan(visit func(rpsval.ObjectRef)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		visit(m)
	}
}

func (s *SetObPayload) DumpJSON() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := rpsval.ValueToJSON(rpsval.NewSet(s.members))
	if err != nil {
		return nil, err
	}
	set, _ := v.(map[string]any)
	return map[string]any{"setob": set["elem"]}, nil
}

func (s *SetObPayload) Add(ref rpsval.ObjectRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	setVal := rpsval.NewSet(append(s.members, ref))
	s.members, _ = setVal.AsSet()
}

func deserializeSetObPayload(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error) {
	refs, err := resolveIDArray(body["setob"], ld.resolver(spaceID, line, o.Id()))
	if err != nil {
		return nil, err
	}
	setVal := rpsval.NewSet(refs)
	members, _ := setVal.AsSet()
	return &SetObPayload{members: members}, nil
}

// VectObPayload is a mutable vector of objects, serialized as
// {"vectob":[ids...]}.
type VectObPayload struct {
	mu      sync.Mutex
	members []rpsval.ObjectRef
}

func (v *VectObPayload) Kind() string { return "vectob" }

func (v *VectObPayload) DumpScan(visit func(rpsval.ObjectRef)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, m := range v.members {
		visit(m)
	}
}

func (v *VectObPayload) DumpJSON() (map[string]any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	tup, err := rpsval.ValueToJSON(rpsval.NewTuple(v.members))
	if err != nil {
		return nil, err
	}
	asMap, _ := tup.(map[string]any)
	return map[string]any{"vectob": asMap["comp"]}, nil
}

func (v *VectObPayload) Append(ref rpsval.ObjectRef) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.members = append(v.members, ref)
}

func deserializeVectObPayload(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error) {
	refs, err := resolveIDArray(body["vectob"], ld.resolver(spaceID, line, o.Id()))
	if err != nil {
		return nil, err
	}
	return &VectObPayload{members: refs}, nil
}

// VectValPayload is a mutable vector of values, serialized as
// {"vectval":[values...]}.
type VectValPayload struct {
	mu     sync.Mutex
	values []rpsval.Value
}

func (v *VectValPayload) Kind() string { return "vectval" }

func (v *VectValPayload) DumpScan(visit func(rpsval.ObjectRef)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, val := range v.values {
		val.WalkRefs(visit)
	}
}

func (v *VectValPayload) DumpJSON() (map[string]any, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]any, len(v.values))
	for i, val := range v.values {
		jv, err := rpsval.ValueToJSON(val)
		if err != nil {
			return nil, err
		}
		out[i] = jv
	}
	return map[string]any{"vectval": out}, nil
}

func (v *VectValPayload) Append(val rpsval.Value) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values = append(v.values, val)
}

func deserializeVectValPayload(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error) {
	arr, _ := body["vectval"].([]any)
	resolve := ld.resolver(spaceID, line, o.Id())
	values := make([]rpsval.Value, 0, len(arr))
	for _, raw := range arr {
		v, err := rpsval.ValueFromJSON(raw, resolve)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return &VectValPayload{values: values}, nil
}

func resolveIDArray(raw any, resolve rpsval.Resolver) ([]rpsval.ObjectRef, error) {
	arr, _ := raw.([]any)
	out := make([]rpsval.ObjectRef, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			continue
		}
		id, err := rpsval.ParseObjectId(s)
		if err != nil {
			return nil, err
		}
		ref, err := resolve(id)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}
