package rpsval

import "testing"

func TestJSONValuesEqualIgnoresKeyOrder(t *testing.T) {
	a := NewJSON([]byte(`{"a":1,"b":2}`))
	b := NewJSON([]byte(`{"b":2,"a":1}`))
	if !Equal(a, b) {
		t.Error("Equal should ignore JSON object key order")
	}
	c := NewJSON([]byte(`{"a":1,"b":3}`))
	if Equal(a, c) {
		t.Error("Equal should detect a differing value")
	}
}

func TestEqualMetaInfo(t *testing.T) {
	r := refN(1)
	m1 := &MetaInfo{Metaobject: r, Metarank: 2}
	m2 := &MetaInfo{Metaobject: r, Metarank: 2}
	if !equalMeta(m1, m2) {
		t.Error("equalMeta should match identical metaobject/metarank pairs")
	}
	if !equalMeta(nil, nil) {
		t.Error("equalMeta(nil, nil) should be true")
	}
	if equalMeta(m1, nil) {
		t.Error("equalMeta(set, nil) should be false")
	}
}

func TestLessVariantOrderBeforeContents(t *testing.T) {
	if !Less(NewInt(1000), NewDouble(0)) {
		t.Error("Less should order by tag first: TagInt < TagDouble regardless of magnitude")
	}
}
