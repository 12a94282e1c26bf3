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
	"context"
	"testing"

	"github.com/refpersys/rpsheap/rpsval"
)

// TestDumpThenLoadRoundTrips builds a heap by hand, loads it, dumps it
// right back out and reloads the result, checking that the reachable
// object count and root/id relationships survive the round trip.
func TestDumpThenLoadRoundTrips(t *testing.T) {
	dir, _, rootID, childID := buildMinimalHeap(t)
	ctx := context.Background()

	reg, err := Load(ctx, testConfig(dir))
	if err != nil {
		t.Fatalf("initial Load: %v", err)
	}

	if err := Dump(ctx, testConfig(dir), reg, nil); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	reg2, err := Load(ctx, testConfig(dir))
	if err != nil {
		t.Fatalf("reload after Dump: %v", err)
	}
	if reg2.Size() != reg.Size() {
		t.Errorf("reloaded Size() = %d, want %d", reg2.Size(), reg.Size())
	}
	if reg2.RootCount() != 1 {
		t.Errorf("reloaded RootCount() = %d, want 1", reg2.RootCount())
	}
	root2, ok := reg2.FindByID(rootID)
	if !ok {
		t.Fatalf("reloaded registry missing root %v", rootID)
	}
	if !reg2.IsRoot(root2) {
		t.Error("reloaded root object not registered as root")
	}
	if root2.NumComps() != 1 {
		t.Fatalf("reloaded root NumComps() = %d, want 1", root2.NumComps())
	}
	ref, err := root2.Comp(0).AsObjectRef()
	if err != nil {
		t.Fatalf("reloaded root comp 0 AsObjectRef: %v", err)
	}
	if ref.RefId() != childID {
		t.Errorf("reloaded root's component id = %v, want %v", ref.RefId(), childID)
	}
}

// TestDumpRequiresStore checks the guard clause rather than letting a nil
// Store panic deep inside Store.MkdirAll.
func TestDumpRequiresStore(t *testing.T) {
	reg := NewRegistry()
	cfg := &Config{AcceptedFormats: DefaultAcceptedFormats}
	if err := Dump(context.Background(), cfg, reg, nil); err == nil {
		t.Fatal("expected an error when Config.Store is nil")
	}
}

func TestScanLineForConstantsFindsIdLiteral(t *testing.T) {
	reg := NewRegistry()
	id := rpsval.NewRandomObjectId()
	o := reg.InternByID(id)
	o.LoaderSetClass(o) // self-classed so it isn't reported unresolved

	d := &Dumper{Registry: reg, constantsSet: make(map[rpsval.ObjectId]bool)}
	d.scanLineForConstants("const auto FOO = " + id.String() + ";")
	if len(d.constants) != 1 || d.constants[0] != id {
		t.Errorf("constants = %v, want [%v]", d.constants, id)
	}
}

func TestScanLineForConstantsSkipsRestricted(t *testing.T) {
	reg := NewRegistry()
	id := rpsval.NewRandomObjectId()
	o := reg.InternByID(id)
	o.LoaderSetClass(o)
	o.SetRestricted(true)

	d := &Dumper{Registry: reg, constantsSet: make(map[rpsval.ObjectId]bool)}
	d.scanLineForConstants(id.String())
	if len(d.constants) != 0 {
		t.Errorf("constants = %v, want none (restricted object)", d.constants)
	}
}
