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

func TestObjectRefTransientUntilSpaced(t *testing.T) {
	o := NewObject(rpsval.NewRandomObjectId())
	if !o.RefTransient() {
		t.Error("a freshly allocated object should be transient")
	}
	space := NewObject(rpsval.NewRandomObjectId())
	o.LoaderSetSpace(space)
	if o.RefTransient() {
		t.Error("an object with a non-nil space should not be transient")
	}
}

func TestObjectInstallPayloadOnce(t *testing.T) {
	o := NewObject(rpsval.NewRandomObjectId())
	if err := o.InstallPayload(&SpacePayload{}); err != nil {
		t.Fatalf("first InstallPayload: %v", err)
	}
	if err := o.InstallPayload(&SpacePayload{}); err == nil {
		t.Fatal("second InstallPayload should fail with PayloadAlreadyPresent")
	}
	o.ResetPayload(&SpacePayload{})
	if o.Payload() == nil {
		t.Error("ResetPayload should leave a payload installed")
	}
}

func TestObjectGetAttrFallsBackToMagicGetter(t *testing.T) {
	o := NewObject(rpsval.NewRandomObjectId())
	attr := NewObject(rpsval.NewRandomObjectId())
	called := false
	o.LoaderPutMagicGetter(func(self *Object, a rpsval.ObjectRef) (rpsval.Value, bool) {
		called = true
		return rpsval.NewInt(7), true
	})
	v, ok := o.GetAttr(attr)
	if !ok || !called {
		t.Fatal("GetAttr should have fallen back to the magic getter")
	}
	n, err := v.AsInt()
	if err != nil || n != 7 {
		t.Errorf("GetAttr via magic getter = %v, %v, want 7", n, err)
	}

	o.PutAttr(attr, rpsval.NewInt(99))
	v2, ok2 := o.GetAttr(attr)
	if !ok2 {
		t.Fatal("GetAttr should find the explicitly put attribute")
	}
	n2, _ := v2.AsInt()
	if n2 != 99 {
		t.Errorf("explicit attribute shadowed by magic getter: got %d, want 99", n2)
	}
}

func TestObjectApplyWithoutApplyingFn(t *testing.T) {
	o := NewObject(rpsval.NewRandomObjectId())
	if _, err := o.Apply(nil); err == nil {
		t.Error("Apply on an object with no applying function should error")
	}
}

func TestObjectDumpScanVisitsClassSpaceAttrsComps(t *testing.T) {
	class := NewObject(rpsval.NewRandomObjectId())
	space := NewObject(rpsval.NewRandomObjectId())
	attrKey := NewObject(rpsval.NewRandomObjectId())
	compRef := NewObject(rpsval.NewRandomObjectId())

	o := NewObject(rpsval.NewRandomObjectId())
	o.LoaderSetClass(class)
	o.LoaderSetSpace(space)
	o.LoaderPutAttr(attrKey, rpsval.NewObjectRef(compRef))
	o.AppendComp(rpsval.NewObjectRef(compRef))

	seen := make(map[rpsval.ObjectId]bool)
	o.DumpScan(func(r rpsval.ObjectRef) { seen[r.RefId()] = true })

	for _, want := range []rpsval.ObjectId{class.Id(), space.Id(), attrKey.Id(), compRef.Id()} {
		if !seen[want] {
			t.Errorf("DumpScan did not visit %v", want)
		}
	}
}
