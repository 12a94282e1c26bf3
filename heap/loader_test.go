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
	"encoding/json"
	"testing"
	"time"

	"github.com/refpersys/rpsheap/rpsval"
)

// writeObjectLines appends one object's //+ob/-ob block to b.
func writeObjectLines(t *testing.T, b *[]byte, id rpsval.ObjectId, body map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	*b = append(*b, []byte(objectBeginMarker+id.String()+"\n")...)
	*b = append(*b, data...)
	*b = append(*b, '\n')
	*b = append(*b, []byte(objectEndMarker+id.String()+"\n")...)
}

// buildMinimalHeap writes a one-space heap directory under t.TempDir():
// a space object X, a root object R (self-classed, its own class), and
// a child C reachable from R through a component and an attribute, all
// three living in space X.
func buildMinimalHeap(t *testing.T) (dir string, spaceID, rootID, childID rpsval.ObjectId) {
	t.Helper()
	dir = t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	spaceID = rpsval.NewRandomObjectId()
	rootID = rpsval.NewRandomObjectId()
	childID = rpsval.NewRandomObjectId()

	var body []byte
	writeObjectLines(t, &body, spaceID, map[string]any{
		"oid": spaceID.String(), "mtime": 0, "class": rootID.String(),
	})
	writeObjectLines(t, &body, rootID, map[string]any{
		"oid": rootID.String(), "mtime": 0, "class": rootID.String(),
		"comps": []any{childID.String()},
	})
	writeObjectLines(t, &body, childID, map[string]any{
		"oid": childID.String(), "mtime": 0, "class": rootID.String(),
		"attrs": []any{map[string]any{"at": rootID.String(), "va": "hello"}},
	})

	prologue, err := json.Marshal(spacePrologue{
		Format: "rpsheap-1", SpaceID: spaceID.String(), NbObjects: 3,
	})
	if err != nil {
		t.Fatalf("marshal prologue: %v", err)
	}
	content := append(append([]byte{}, prologue...), '\n')
	content = append(content, body...)

	if err := store.MkdirAll(ctx, "persistore"); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := store.WriteFile(ctx, spacePath(spaceID.String()), content); err != nil {
		t.Fatalf("write space file: %v", err)
	}

	manifest, err := json.Marshal(Manifest{
		Format:      "rpsheap-1",
		SpaceSet:    []string{spaceID.String()},
		GlobalRoots: []string{rootID.String()},
		Plugins:     []string{},
		ConstSet:    []string{},
		GlobalNames: []NamedEntry{},
	})
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := store.WriteFile(ctx, manifestPath, manifest); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir, spaceID, rootID, childID
}

func testConfig(dir string) *Config {
	return &Config{
		AcceptedFormats:    DefaultAcceptedFormats,
		HardcodedRootCount: 1,
		Store:              NewFileStore(dir),
	}
}

func TestLoadMinimalHeap(t *testing.T) {
	dir, _, rootID, childID := buildMinimalHeap(t)
	reg, err := Load(context.Background(), testConfig(dir))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Size() != 3 {
		t.Errorf("Size() = %d, want 3", reg.Size())
	}
	if reg.RootCount() != 1 {
		t.Errorf("RootCount() = %d, want 1", reg.RootCount())
	}
	root, ok := reg.FindByID(rootID)
	if !ok {
		t.Fatalf("root object not found")
	}
	if !reg.IsRoot(root) {
		t.Errorf("root object not registered as root")
	}
	if root.NumComps() != 1 {
		t.Fatalf("root NumComps() = %d, want 1", root.NumComps())
	}
	childRef, err := root.Comp(0).AsObjectRef()
	if err != nil {
		t.Fatalf("root comp 0 AsObjectRef: %v", err)
	}
	if childRef.RefId() != childID {
		t.Errorf("root's component ref id = %v, want %v", childRef.RefId(), childID)
	}
	child, ok := reg.FindByID(childID)
	if !ok {
		t.Fatalf("child object not found")
	}
	if child.RefTransient() {
		t.Errorf("child object unexpectedly transient")
	}
}

func TestLoadRejectsDuplicateObjectId(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()
	spaceID := rpsval.NewRandomObjectId()
	id := rpsval.NewRandomObjectId()

	var body []byte
	writeObjectLines(t, &body, id, map[string]any{"oid": id.String(), "mtime": 0, "class": id.String()})
	writeObjectLines(t, &body, id, map[string]any{"oid": id.String(), "mtime": 0, "class": id.String()})

	prologue, _ := json.Marshal(spacePrologue{Format: "rpsheap-1", SpaceID: spaceID.String(), NbObjects: 2})
	content := append(append([]byte{}, prologue...), '\n')
	content = append(content, body...)

	store.MkdirAll(ctx, "persistore")
	store.WriteFile(ctx, spacePath(spaceID.String()), content)
	manifest, _ := json.Marshal(Manifest{
		Format: "rpsheap-1", SpaceSet: []string{spaceID.String()},
		GlobalRoots: []string{}, Plugins: []string{}, ConstSet: []string{}, GlobalNames: []NamedEntry{},
	})
	store.WriteFile(ctx, manifestPath, manifest)

	cfg := testConfig(dir)
	cfg.HardcodedRootCount = 0
	if _, err := Load(ctx, cfg); err == nil {
		t.Fatal("expected an error for a duplicate object-begin id, got nil")
	}
}

func TestLoaderSetMtimeClampsFuture(t *testing.T) {
	o := NewObject(rpsval.NewRandomObjectId())
	loadStart := time.Unix(1_000_000, 0)
	future := float64(loadStart.Unix()) + MaxMtimeGraceSeconds + 3600
	o.LoaderSetMtime(future, loadStart, nil)
	want := float64(loadStart.Unix()) + MaxMtimeGraceSeconds
	if got := o.Mtime(); got != want {
		t.Errorf("Mtime() = %v, want clamped %v", got, want)
	}
}

func TestLoaderSetMtimeWithinGraceIsUnchanged(t *testing.T) {
	o := NewObject(rpsval.NewRandomObjectId())
	loadStart := time.Unix(1_000_000, 0)
	ok := float64(loadStart.Unix()) + 10
	o.LoaderSetMtime(ok, loadStart, nil)
	if got := o.Mtime(); got != ok {
		t.Errorf("Mtime() = %v, want unchanged %v", got, ok)
	}
}
