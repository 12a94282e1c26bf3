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

import "github.com/refpersys/rpsheap/rpsval"

// classMethod is one selector->closure binding of a classinfo's method
// dictionary.
type classMethod struct {
	Selector rpsval.ObjectRef
	Fn       rpsval.Value
}

// ClassInfoPayload is the behavior-carrying payload of a class object:
// a superclass, an optional symbolic name (a symbol object), a
// selector->closure method dictionary, and an optional declared
// attribute set that every instance's attribute keys are checked
// against.
//
// Comment is an inert, human-readable note on the method dictionary
// that the core never interprets, only round-trips.
type ClassInfoPayload struct {
	Superclass   rpsval.ObjectRef
	SymbolicName rpsval.ObjectRef
	Methods      []classMethod
	AttributeSet []rpsval.ObjectRef // nil means "no declared attribute set"
	Comment      string
}

func (c *ClassInfoPayload) Kind() string { return "classinfo" }

func (c *ClassInfoPayload) DumpScan(visit func(rpsval.ObjectRef)) {
	if c.Superclass != nil {
		visit(c.Superclass)
	}
	if c.SymbolicName != nil {
		visit(c.SymbolicName)
	}
	for _, m := range c.Methods {
		if m.Selector != nil {
			visit(m.Selector)
		}
		m.Fn.WalkRefs(visit)
	}
	for _, a := range c.AttributeSet {
		if a != nil {
			visit(a)
		}
	}
}

func (c *ClassInfoPayload) DumpJSON() (map[string]any, error) {
	out := map[string]any{}
	if c.Superclass != nil {
		sup, err := rpsval.ValueToJSON(rpsval.NewObjectRef(c.Superclass))
		if err != nil {
			return nil, err
		}
		out["class_super"] = sup
	}
	if c.SymbolicName != nil {
		sym, err := rpsval.ValueToJSON(rpsval.NewObjectRef(c.SymbolicName))
		if err != nil {
			return nil, err
		}
		out["class_symb"] = sym
	}
	methods := make([]any, 0, len(c.Methods))
	for _, m := range c.Methods {
		sel, err := rpsval.ValueToJSON(rpsval.NewObjectRef(m.Selector))
		if err != nil {
			return nil, err
		}
		fn, err := rpsval.ValueToJSON(m.Fn)
		if err != nil {
			return nil, err
		}
		methods = append(methods, map[string]any{"sel": sel, "fn": fn})
	}
	out["class_methodict"] = methods
	if c.AttributeSet != nil {
		attrset, err := rpsval.ValueToJSON(rpsval.NewSet(c.AttributeSet))
		if err != nil {
			return nil, err
		}
		out["class_attrset"] = attrset
	}
	if c.Comment != "" {
		out["class_comment"] = c.Comment
	}
	return out, nil
}

// HasAttribute reports whether attr belongs to the class's declared
// attribute set. A nil AttributeSet means "unrestricted" (no declared
// set was ever serialized).
func (c *ClassInfoPayload) HasAttribute(attr rpsval.ObjectRef) bool {
	if c.AttributeSet == nil {
		return true
	}
	for _, a := range c.AttributeSet {
		if a.RefId() == attr.RefId() {
			return true
		}
	}
	return false
}

func deserializeClassInfoPayload(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error) {
	resolve := ld.resolver(spaceID, line, o.Id())
	payload := &ClassInfoPayload{}

	if raw, ok := body["class_super"]; ok {
		v, err := rpsval.ValueFromJSON(raw, resolve)
		if err != nil {
			return nil, err
		}
		ref, err := v.AsObjectRef()
		if err != nil {
			return nil, err
		}
		payload.Superclass = ref
	}
	if raw, ok := body["class_symb"]; ok {
		v, err := rpsval.ValueFromJSON(raw, resolve)
		if err != nil {
			return nil, err
		}
		ref, err := v.AsObjectRef()
		if err != nil {
			return nil, err
		}
		payload.SymbolicName = ref
	}
	if raw, ok := body["class_methodict"].([]any); ok {
		for _, entryRaw := range raw {
			entry, ok := entryRaw.(map[string]any)
			if !ok {
				continue
			}
			selV, err := rpsval.ValueFromJSON(entry["sel"], resolve)
			if err != nil {
				return nil, err
			}
			sel, err := selV.AsObjectRef()
			if err != nil {
				return nil, err
			}
			fnV, err := rpsval.ValueFromJSON(entry["fn"], resolve)
			if err != nil {
				return nil, err
			}
			payload.Methods = append(payload.Methods, classMethod{Selector: sel, Fn: fnV})
		}
	}
	if raw, ok := body["class_attrset"]; ok {
		v, err := rpsval.ValueFromJSON(raw, resolve)
		if err != nil {
			return nil, err
		}
		set, err := v.AsSet()
		if err != nil {
			return nil, err
		}
		payload.AttributeSet = set
	}
	if comment, ok := body["class_comment"].(string); ok {
		payload.Comment = comment
	}
	return payload, nil
}
