package rpsval

import "testing"

// testRef is the smallest possible ObjectRef, used throughout rpsval's own
// tests so they don't need the heap package's *Object.
type testRef struct {
	id        ObjectId
	transient bool
}

func (r testRef) RefId() ObjectId    { return r.id }
func (r testRef) RefTransient() bool { return r.transient }

func refN(n uint64) testRef { return testRef{id: ObjectId{Hi: 1, Lo: uint32(n)}} }

func TestNewSetDedupesAndSorts(t *testing.T) {
	s := NewSet([]ObjectRef{refN(3), refN(1), refN(2), refN(1)})
	elems, err := s.AsSet()
	if err != nil {
		t.Fatalf("AsSet: %v", err)
	}
	if len(elems) != 3 {
		t.Fatalf("len(elems) = %d, want 3", len(elems))
	}
	for i := 1; i < len(elems); i++ {
		if !elems[i-1].RefId().Less(elems[i].RefId()) {
			t.Fatalf("elements not strictly ascending at %d: %v", i, elems)
		}
	}
}

func TestNewTuplePreservesOrderAndDuplicates(t *testing.T) {
	tup := NewTuple([]ObjectRef{refN(2), refN(1), refN(2)})
	elems, err := tup.AsTuple()
	if err != nil {
		t.Fatalf("AsTuple: %v", err)
	}
	want := []uint64{2, 1, 2}
	if len(elems) != len(want) {
		t.Fatalf("len(elems) = %d, want %d", len(elems), len(want))
	}
	for i, w := range want {
		if elems[i].RefId().Lo != uint32(w) {
			t.Errorf("elems[%d] = %v, want Lo=%d", i, elems[i], w)
		}
	}
}

func TestAsIntTypeMismatch(t *testing.T) {
	v := NewString("hello")
	if _, err := v.AsInt(); err == nil {
		t.Fatal("expected type mismatch error, got nil")
	}
}

func TestNewDoublePanicsOnNaN(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected NewDouble(NaN) to panic")
		}
	}()
	NewDouble(nan())
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestEqualStructural(t *testing.T) {
	a := NewInt(42)
	b := NewInt(42)
	c := NewInt(7)
	if !Equal(a, b) {
		t.Error("Equal(42, 42) = false, want true")
	}
	if Equal(a, c) {
		t.Error("Equal(42, 7) = true, want false")
	}
	if Equal(a, NewString("42")) {
		t.Error("Equal(int 42, string \"42\") = true, want false (no cross-tag coercion)")
	}
}

func TestLessTotalOrder(t *testing.T) {
	vals := []Value{NewInt(5), NewDouble(1.5), NewString("z"), Empty}
	// check Less is asymmetric on every pair of distinct values
	for i := range vals {
		for j := range vals {
			if i == j {
				continue
			}
			li, lj := Less(vals[i], vals[j]), Less(vals[j], vals[i])
			if li && lj {
				t.Fatalf("Less is not asymmetric for %v and %v", vals[i], vals[j])
			}
		}
	}
}

func TestWalkRefsSet(t *testing.T) {
	s := NewSet([]ObjectRef{refN(1), refN(2)})
	var seen []ObjectId
	s.WalkRefs(func(r ObjectRef) { seen = append(seen, r.RefId()) })
	if len(seen) != 2 {
		t.Fatalf("WalkRefs visited %d refs, want 2", len(seen))
	}
}

func TestWalkRefsInstance(t *testing.T) {
	attrs := NewAttrMap(0)
	attrs.Put(refN(9), NewInt(1))
	inst := NewInstance(refN(1), attrs, []Value{NewObjectRef(refN(2))}, nil)
	var seen []ObjectId
	inst.WalkRefs(func(r ObjectRef) { seen = append(seen, r.RefId()) })
	if len(seen) != 3 { // class, attr key, component ref
		t.Fatalf("WalkRefs visited %d refs, want 3: %v", len(seen), seen)
	}
}
