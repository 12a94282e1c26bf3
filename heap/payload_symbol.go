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
	"fmt"
	"regexp"

	"github.com/refpersys/rpsheap/rpsval"
)

var symbolNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SymbolPayload is a global name binding: a name matching
// [A-Za-z_][A-Za-z0-9_]*, an optional carried Value, and a weak flag.
// Weak symbols are excluded from generated-names emission but
// remain present in runtime lookup.
type SymbolPayload struct {
	Name  string
	Weak  bool
	Value *rpsval.Value
}

func (s *SymbolPayload) Kind() string { return "symbol" }

func (s *SymbolPayload) DumpScan(visit func(rpsval.ObjectRef)) {
	if s.Value != nil {
		s.Value.WalkRefs(visit)
	}
}

func (s *SymbolPayload) DumpJSON() (map[string]any, error) {
	out := map[string]any{"symb_name": s.Name, "symb_weak": s.Weak}
	if s.Value != nil {
		v, err := rpsval.ValueToJSON(*s.Value)
		if err != nil {
			return nil, err
		}
		out["symb_val"] = v
	}
	return out, nil
}

func deserializeSymbolPayload(o *Object, ld *Loader, body map[string]any, spaceID string, line int) (Payload, error) {
	name, _ := body["symb_name"].(string)
	if !symbolNamePattern.MatchString(name) {
		return nil, newErr(KindBadPrologue, spaceID, line, o.Id(), "", fmt.Errorf("invalid symbol name %q", name))
	}
	weak, _ := body["symb_weak"].(bool)
	payload := &SymbolPayload{Name: name, Weak: weak}
	if raw, ok := body["symb_val"]; ok {
		v, err := rpsval.ValueFromJSON(raw, ld.resolver(spaceID, line, o.Id()))
		if err != nil {
			return nil, err
		}
		payload.Value = &v
	}
	ld.Registry.RegisterSymbol(name, o)
	return payload, nil
}
