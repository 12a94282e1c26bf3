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
	"testing"

	"github.com/refpersys/rpsheap/rpsval"
)

func TestAddRootIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	o := reg.InternByID(rpsval.NewRandomObjectId())
	if !reg.AddRoot(o) {
		t.Fatal("first AddRoot should return true")
	}
	if reg.AddRoot(o) {
		t.Error("second AddRoot on the same object should return false")
	}
	if reg.RootCount() != 1 {
		t.Errorf("RootCount() = %d, want 1", reg.RootCount())
	}
	if !reg.RemoveRoot(o) {
		t.Error("RemoveRoot on a present root should return true")
	}
	if reg.RemoveRoot(o) {
		t.Error("RemoveRoot on an absent root should return false")
	}
}

func TestInternByIDReturnsSameObject(t *testing.T) {
	reg := NewRegistry()
	id := rpsval.NewRandomObjectId()
	a := reg.InternByID(id)
	b := reg.InternByID(id)
	if a != b {
		t.Error("InternByID should return the same *Object for the same id")
	}
}

func TestUnresolvedIDsReportsUnfilled(t *testing.T) {
	reg := NewRegistry()
	id := rpsval.NewRandomObjectId()
	reg.InternByID(id) // never filled with a class
	unresolved := reg.UnresolvedIDs()
	if len(unresolved) != 1 || unresolved[0] != id {
		t.Errorf("UnresolvedIDs() = %v, want [%v]", unresolved, id)
	}
}

func TestResolveConstantSlotsBestEffort(t *testing.T) {
	reg := NewRegistry()
	known := reg.InternByID(rpsval.NewRandomObjectId())
	unknownID := rpsval.NewRandomObjectId()

	var knownSlot, unknownSlot rpsval.ObjectRef
	reg.BindHardcodedConstantSlot(known.Id(), &knownSlot)
	reg.BindHardcodedConstantSlot(unknownID, &unknownSlot)

	missing := reg.ResolveConstantSlots()
	if len(missing) != 1 || missing[0] != unknownID {
		t.Errorf("missing = %v, want [%v]", missing, unknownID)
	}
	if knownSlot == nil || knownSlot.RefId() != known.Id() {
		t.Errorf("knownSlot not bound to %v", known.Id())
	}
	if unknownSlot != nil {
		t.Errorf("unknownSlot should remain nil, got %v", unknownSlot)
	}
}

func TestSpaceMembersSortedAscending(t *testing.T) {
	reg := NewRegistry()
	spaceID := rpsval.NewRandomObjectId()
	var ids []rpsval.ObjectId
	for i := 0; i < 20; i++ {
		o := reg.InternByID(rpsval.NewRandomObjectId())
		reg.IndexInSpace(spaceID, o)
		ids = append(ids, o.Id())
	}
	members := reg.SpaceMembersSorted(spaceID)
	if len(members) != len(ids) {
		t.Fatalf("SpaceMembersSorted returned %d members, want %d", len(members), len(ids))
	}
	for i := 1; i < len(members); i++ {
		if !members[i-1].Id().Less(members[i].Id()) {
			t.Fatalf("members not strictly ascending at index %d", i)
		}
	}
}

func TestKnownSpacesOnlyListsIndexed(t *testing.T) {
	reg := NewRegistry()
	if spaces := reg.KnownSpaces(); len(spaces) != 0 {
		t.Fatalf("fresh registry has known spaces %v, want none", spaces)
	}
	spaceID := rpsval.NewRandomObjectId()
	reg.IndexInSpace(spaceID, reg.InternByID(rpsval.NewRandomObjectId()))
	spaces := reg.KnownSpaces()
	if len(spaces) != 1 || spaces[0] != spaceID {
		t.Errorf("KnownSpaces() = %v, want [%v]", spaces, spaceID)
	}
}
