package namematch

import "testing"

func TestIndex_Lookup_IsCaseAndSpaceInsensitive(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	ix.Add("p1", "Virat Kohli")
	ix.Add("p2", "Rohit Sharma")

	for _, name := range []string{"virat kohli", "VIRAT KOHLI", "  Virat   Kohli "} {
		id, ok := ix.Lookup(name)
		if !ok {
			t.Fatalf("lookup %q: expected match", name)
		}
		if id != "p1" {
			t.Fatalf("lookup %q: got %s, want p1", name, id)
		}
	}

	if _, ok := ix.Lookup("MS Dhoni"); ok {
		t.Fatalf("expected no match for unregistered name")
	}
}

func TestIndex_Add_AlternateNameResolvesToSamePlayer(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	ix.Add("p1", "Virat Kohli")
	ix.Add("p1", "V Kohli")

	id, ok := ix.Lookup("V Kohli")
	if !ok || id != "p1" {
		t.Fatalf("alternate name lookup: got %s ok=%v, want p1", id, ok)
	}
	if ix.Len() != 2 {
		t.Fatalf("index size: got %d, want 2", ix.Len())
	}
}

func TestIndex_Suggest_RanksClosestFirst(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	ix.Add("p1", "Virat Kohli")
	ix.Add("p2", "Rohit Sharma")
	ix.Add("p3", "Mohammed Shami")

	suggestions := ix.Suggest("virat kohl", 2)
	if len(suggestions) == 0 {
		t.Fatalf("expected suggestions for near-miss name")
	}
	if suggestions[0].PlayerID != "p1" {
		t.Fatalf("top suggestion: got %s, want p1", suggestions[0].PlayerID)
	}
	if len(suggestions) > 2 {
		t.Fatalf("suggestion limit not honored: got %d", len(suggestions))
	}
}

func TestIndex_Suggest_ExactMatchShortCircuits(t *testing.T) {
	t.Parallel()

	ix := NewIndex()
	ix.Add("p1", "Virat Kohli")
	ix.Add("p2", "Rohit Sharma")

	suggestions := ix.Suggest("Virat Kohli", 5)
	if len(suggestions) != 1 {
		t.Fatalf("expected single exact suggestion, got %d", len(suggestions))
	}
	if suggestions[0].PlayerID != "p1" || suggestions[0].Distance != 0 {
		t.Fatalf("unexpected exact suggestion: %+v", suggestions[0])
	}
}
