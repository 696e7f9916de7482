package ustring

import (
	"slices"
	"strings"
	"testing"
)

func expectPanicMessage(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("recovered %v (%T), want string panic", r, r)
		}
		if msg != want {
			t.Errorf("panic message = %q, want %q", msg, want)
		}
	}()
	fn()
}

func TestViewBasics(t *testing.T) {
	s := FromString("héllo wörld", nil)
	v := s.View()

	if v.Len() != s.Len() {
		t.Errorf("Len() = %d, want %d", v.Len(), s.Len())
	}
	if v.CharCount() != 11 {
		t.Errorf("CharCount() = %d, want 11", v.CharCount())
	}
	if v.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
	if !v.Equal("héllo wörld") {
		t.Errorf("Equal failed for %q", v.Borrow())
	}
	if !v.Contains("wö") || v.Contains("xyz") {
		t.Error("Contains mismatch")
	}
	if !v.ContainsRune('ö') {
		t.Error("ContainsRune('ö') = false")
	}
	if !v.HasPrefix("hé") || !v.HasSuffix("rld") {
		t.Error("HasPrefix/HasSuffix mismatch")
	}
	if i := v.Index("wö"); i != 7 {
		t.Errorf("Index(wö) = %d, want 7", i)
	}
	if i := v.IndexRune('l'); i != 3 {
		t.Errorf("IndexRune('l') = %d, want 3", i)
	}
}

func TestZeroView(t *testing.T) {
	var v View
	if !v.IsEmpty() || v.Len() != 0 || v.String() != "" {
		t.Error("zero View should be empty")
	}
	if New(nil).View() != v {
		t.Error("view of an empty String should equal the zero View")
	}
}

func TestViewIterators(t *testing.T) {
	v := FromString("aé中🦀", nil).View()

	chars := slices.Collect(v.Chars())
	if want := []rune{'a', 'é', '中', '🦀'}; !slices.Equal(chars, want) {
		t.Errorf("Chars() = %q, want %q", chars, want)
	}

	var offsets []int
	for i, r := range v.CharIndices() {
		offsets = append(offsets, i)
		if r == '中' {
			break
		}
	}
	if want := []int{0, 1, 3}; !slices.Equal(offsets, want) {
		t.Errorf("CharIndices offsets = %v, want %v", offsets, want)
	}

	raw := slices.Collect(v.Bytes())
	if string(raw) != "aé中🦀" {
		t.Errorf("Bytes() = %q", raw)
	}
}

func TestViewStringIsIndependent(t *testing.T) {
	s := FromString("hello", nil)
	copied := s.View().String()
	s.Clear()
	s.PushStr("zzzzz")
	if copied != "hello" {
		t.Errorf("copy changed to %q", copied)
	}
}

func TestViewSlicing(t *testing.T) {
	v := FromString("héllo", nil).View()

	tests := []struct {
		start, end int
		want       string
	}{
		{0, 1, "h"},
		{1, 3, "é"},
		{3, 6, "llo"},
		{0, 6, "héllo"},
		{6, 6, ""},
	}
	for _, tt := range tests {
		if got := v.Slice(tt.start, tt.end).Borrow(); got != tt.want {
			t.Errorf("Slice(%d, %d) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}

	left, right := v.SplitAt(3)
	if left.Borrow() != "hé" || right.Borrow() != "llo" {
		t.Errorf("SplitAt(3) = %q, %q", left.Borrow(), right.Borrow())
	}

	expectPanicMessage(t, "ustring: byte index 2 is not a char boundary", func() {
		v.Slice(0, 2)
	})
	expectPanicMessage(t, "ustring: byte index 2 is not a char boundary", func() {
		v.SplitAt(2)
	})
	expectPanicMessage(t, "ustring: byte range [0, 7) out of range [0, 6]", func() {
		v.Slice(0, 7)
	})
	expectPanicMessage(t, "ustring: byte index 9 out of range [0, 6]", func() {
		v.SplitAt(9)
	})
}

func TestIsCharBoundary(t *testing.T) {
	v := FromString("a中", nil).View()
	want := map[int]bool{-1: false, 0: true, 1: true, 2: false, 3: false, 4: true, 5: false}
	for i, w := range want {
		if got := v.IsCharBoundary(i); got != w {
			t.Errorf("IsCharBoundary(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestViewAfterGrowth(t *testing.T) {
	s := WithCapacity(4, nil)
	s.PushStr("abcd")
	before := s.View().String()
	s.PushStr(strings.Repeat("e", 100))
	if after := s.View(); !after.HasPrefix(before) || after.Len() != 104 {
		t.Errorf("fresh view after growth = %q", after.Borrow())
	}
}
