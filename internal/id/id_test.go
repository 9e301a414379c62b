package id

import "testing"

func TestUUIDGeneratesDistinctValidIDs(t *testing.T) {
	gen := UUID{}
	a, b := gen.NewID(), gen.NewID()
	if a == b {
		t.Fatalf("expected distinct ids, got %s twice", a)
	}
	if !Valid(a) || !Valid(b) {
		t.Fatalf("expected valid uuids, got %s and %s", a, b)
	}
	if Valid("not-an-id") {
		t.Fatalf("expected invalid id to be rejected")
	}
}
