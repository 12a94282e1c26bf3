package rpsval

import "testing"

func TestParseObjectIdRoundTrip(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := NewRandomObjectId()
		s := id.String()
		if len(s) != idTextLen {
			t.Fatalf("String() length = %d, want %d", len(s), idTextLen)
		}
		got, err := ParseObjectId(s)
		if err != nil {
			t.Fatalf("ParseObjectId(%q) error: %v", s, err)
		}
		if got != id {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, id)
		}
	}
}

func TestParseObjectIdRejectsMalformed(t *testing.T) {
	valid := NewRandomObjectId().String()
	cases := []string{
		"",
		"not_an_id",
		"0" + valid[1:],    // missing leading underscore, right length
		valid[:len(valid)-1], // too short
		valid + "0",        // too long
		"_" + valid[2:] + "!", // illegal character in place of a digit
	}
	for _, c := range cases {
		if _, err := ParseObjectId(c); err == nil {
			t.Errorf("ParseObjectId(%q) expected error, got nil", c)
		}
	}
}

func TestParseObjectIdRejectsZeroHalves(t *testing.T) {
	// An all-zero-digit id has Hi == 0 and Lo == 0, which Valid() rejects;
	// construct its textual form directly since NewRandomObjectId never
	// produces it.
	zeros := "_0000000000000000000000"
	if len(zeros) != idTextLen {
		t.Fatalf("test string length = %d, want %d", len(zeros), idTextLen)
	}
	if _, err := ParseObjectId(zeros); err == nil {
		t.Errorf("expected rejection of the all-zero id")
	}
}

func TestLooksLikeObjectId(t *testing.T) {
	id := NewRandomObjectId()
	if !LooksLikeObjectId(id.String()) {
		t.Errorf("LooksLikeObjectId(%q) = false, want true", id.String())
	}
	if LooksLikeObjectId("hello") {
		t.Errorf("LooksLikeObjectId(\"hello\") = true, want false")
	}
	if LooksLikeObjectId("_shorter") {
		t.Errorf("LooksLikeObjectId on short string = true, want false")
	}
}

func TestObjectIdOrdering(t *testing.T) {
	a := ObjectId{Hi: 1, Lo: 5}
	b := ObjectId{Hi: 1, Lo: 10}
	c := ObjectId{Hi: 2, Lo: 1}
	if !a.Less(b) {
		t.Errorf("expected %+v < %+v", a, b)
	}
	if !b.Less(c) {
		t.Errorf("expected %+v < %+v", b, c)
	}
	if c.Less(a) {
		t.Errorf("expected %+v to not be < %+v", c, a)
	}
	if a.Compare(a) != 0 {
		t.Errorf("Compare(self) = %d, want 0", a.Compare(a))
	}
}

func TestNewRandomObjectIdIsValid(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := NewRandomObjectId()
		if !id.Valid() {
			t.Fatalf("NewRandomObjectId produced invalid id %+v", id)
		}
	}
}
