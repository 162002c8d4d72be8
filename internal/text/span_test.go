package text

import "testing"

func TestSpanValidate(t *testing.T) {
	cases := []struct {
		name   string
		span   Span
		docLen int
		ok     bool
	}{
		{"inside", Span{2, 5}, 10, true},
		{"whole document", Span{0, 10}, 10, true},
		{"empty at end", Span{10, 10}, 10, true},
		{"negative start", Span{-1, 3}, 10, false},
		{"inverted", Span{5, 2}, 10, false},
		{"past end", Span{4, 11}, 10, false},
	}
	for _, tc := range cases {
		err := tc.span.Validate(tc.docLen)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSpanOverlaps(t *testing.T) {
	base := Span{5, 10}
	if !base.Overlaps(Span{9, 12}) {
		t.Fatal("expected [5,10) to overlap [9,12)")
	}
	if !base.Overlaps(Span{0, 6}) {
		t.Fatal("expected [5,10) to overlap [0,6)")
	}
	if base.Overlaps(Span{10, 14}) {
		t.Fatal("adjacent spans must not overlap")
	}
	if base.Overlaps(Span{0, 5}) {
		t.Fatal("adjacent spans must not overlap")
	}
	if base.Overlaps(Span{7, 7}) {
		t.Fatal("empty spans overlap nothing")
	}
}

func TestSpanShift(t *testing.T) {
	shifted := Span{6, 11}.Shift(-3)
	if shifted.Start != 3 || shifted.End != 8 {
		t.Fatalf("expected [3,8), got %s", shifted)
	}
	if shifted.Len() != 5 {
		t.Fatalf("shift must preserve length, got %d", shifted.Len())
	}
}
