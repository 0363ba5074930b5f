package coregex

import "testing"

// TestLineAnchors exercises ^ and $ against the byte-context rules
// spec.md §4.D describes: ^ requires the preceding byte to be a
// newline (or buffer start), $ requires the following byte to be a
// newline (or buffer end).
func TestLineAnchors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		buf     string
		offset  int
		size    int
	}{
		{"caret-at-start", `^abc`, "abc\n", 0, 3},
		{"caret-after-newline", `^abc`, "xyz\nabc\n", 4, 3},
		{"caret-mid-line-no-match", `^abc`, "xabc\n", -1, -1},
		{"dollar-at-end", `abc$`, "xx abc\n", 3, 3},
		{"dollar-before-newline", `abc$`, "abc\ndef\n", 0, 3},
		{"empty-line", `^$`, "a\n\nb\n", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			m, ok := re.SearchLine([]byte(tt.buf), 0)
			if tt.offset < 0 {
				if ok {
					t.Fatalf("SearchLine(%q, %q) = %+v, want no match", tt.pattern, tt.buf, m)
				}
				return
			}
			if !ok {
				t.Fatalf("SearchLine(%q, %q): no match, want (%d,%d)", tt.pattern, tt.buf, tt.offset, tt.size)
			}
			if m.Offset != tt.offset || m.Size != tt.size {
				t.Errorf("SearchLine(%q, %q) = (%d,%d), want (%d,%d)", tt.pattern, tt.buf, m.Offset, m.Size, tt.offset, tt.size)
			}
		})
	}
}

// TestBufferBoundaryBehaviors covers spec.md §8's boundary cases.
func TestBufferBoundaryBehaviors(t *testing.T) {
	t.Run("empty buffer no match", func(t *testing.T) {
		re := MustCompile(`a`)
		if _, ok := re.SearchLine([]byte{}, 0); ok {
			t.Error("unexpected match against an empty buffer")
		}
	})

	t.Run("empty pattern matches empty string at 0", func(t *testing.T) {
		re := MustCompile(``)
		m, ok := re.SearchLine([]byte("abc"), 0)
		if !ok || m.Offset != 0 || m.Size != 0 {
			t.Errorf("got (%v,%v), want (0,0,true)", m, ok)
		}
	})

	t.Run("dollar at exact buffer end", func(t *testing.T) {
		re := MustCompile(`c$`)
		m, ok := re.SearchLine([]byte("abc"), 0)
		if !ok || m.Offset != 2 || m.Size != 1 {
			t.Errorf("got (%v,%v), want (2,1,true)", m, ok)
		}
	})
}
