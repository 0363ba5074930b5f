package kwset

import "testing"

func TestSingleKeywordBoyerMoore(t *testing.T) {
	set, err := NewBuilder().Add([]byte("needle")).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m, ok := set.Search([]byte("a haystack with a needle in it"), 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Offset != 18 || m.Size != 6 {
		t.Errorf("Search() = %+v, want Offset=18 Size=6", m)
	}
}

func TestMultiKeywordAhoCorasick(t *testing.T) {
	set, err := NewBuilder().Add([]byte("foo")).Add([]byte("bar")).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m, ok := set.Search([]byte("xx bar yy foo"), 0)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Offset != 3 || m.Size != 3 {
		t.Errorf("Search() = %+v, want the first hit 'bar' at offset 3", m)
	}
}

func TestSearchFromOffset(t *testing.T) {
	set, err := NewBuilder().Add([]byte("foo")).Add([]byte("bar")).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m, ok := set.Search([]byte("foo bar foo"), 4)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Offset != 4 {
		t.Errorf("Search(from=4) = %+v, want Offset=4 ('bar')", m)
	}
}

func TestSearchNoMatch(t *testing.T) {
	set, err := NewBuilder().Add([]byte("zzz")).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := set.Search([]byte("no match here"), 0); ok {
		t.Error("expected no match")
	}
}

func TestCaseFold(t *testing.T) {
	set, err := NewBuilder().CaseFold(true).Add([]byte("Hello")).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m, ok := set.Search([]byte("say HELLO there"), 0)
	if !ok {
		t.Fatal("expected a case-folded match")
	}
	if m.Offset != 4 || m.Size != 5 {
		t.Errorf("Search() = %+v, want Offset=4 Size=5", m)
	}
}
