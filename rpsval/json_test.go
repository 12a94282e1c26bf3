package rpsval

import (
	"bytes"
	"encoding/json"
	"testing"
)

func identityResolver(id ObjectId) (ObjectRef, error) {
	return testRef{id: id}, nil
}

// reencode marshals v to JSON text and decodes it back with UseNumber, the
// same path the loader takes when reading an object body, so
// ValueFromJSON sees json.Number rather than a raw Go int64/float64.
func reencode(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json.Marshal(%v): %v", v, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return out
}

func TestValueToFromJSONScalars(t *testing.T) {
	cases := []Value{NewInt(42), NewDouble(3.5), NewString("hi"), Empty}
	for _, v := range cases {
		jv, err := ValueToJSON(v)
		if err != nil {
			t.Fatalf("ValueToJSON(%v): %v", v, err)
		}
		back, err := ValueFromJSON(reencode(t, jv), identityResolver)
		if err != nil {
			t.Fatalf("ValueFromJSON: %v", err)
		}
		if !Equal(v, back) {
			t.Errorf("round trip mismatch: %v -> %v -> %v", v, jv, back)
		}
	}
}

func TestValueToJSONTransientRejected(t *testing.T) {
	ref := testRef{id: ObjectId{Hi: 1, Lo: 2}, transient: true}
	v := NewObjectRef(ref)
	_, err := ValueToJSON(v)
	if err != ErrTransientValue {
		t.Fatalf("ValueToJSON(transient ref) error = %v, want ErrTransientValue", err)
	}
}

func TestValueFromJSONObjectRefString(t *testing.T) {
	id := NewRandomObjectId()
	v, err := ValueFromJSON(id.String(), identityResolver)
	if err != nil {
		t.Fatalf("ValueFromJSON: %v", err)
	}
	ref, err := v.AsObjectRef()
	if err != nil {
		t.Fatalf("AsObjectRef: %v", err)
	}
	if ref.RefId() != id {
		t.Errorf("resolved ref id = %v, want %v", ref.RefId(), id)
	}
}

func TestValueFromJSONSetShape(t *testing.T) {
	a, b := NewRandomObjectId(), NewRandomObjectId()
	raw := map[string]any{"vtype": "set", "elem": []any{a.String(), b.String()}}
	v, err := ValueFromJSON(raw, identityResolver)
	if err != nil {
		t.Fatalf("ValueFromJSON: %v", err)
	}
	elems, err := v.AsSet()
	if err != nil {
		t.Fatalf("AsSet: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("len(elems) = %d, want 2", len(elems))
	}
}

func TestValueFromJSONUnknownShape(t *testing.T) {
	_, err := ValueFromJSON(map[string]any{"vtype": "nonsense"}, identityResolver)
	if err != ErrUnknownValueShape {
		t.Fatalf("error = %v, want ErrUnknownValueShape", err)
	}
}
