package graphengine

import "testing"

func TestParseTriplesPlainArray(t *testing.T) {
	raw := `[
		{"source": "Alice", "relation": "MET", "target": "Bob", "fact": "Alice met Bob in Paris."}
	]`
	triples, err := parseTriples(raw)
	if err != nil {
		t.Fatalf("parseTriples: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("triples=%d, want 1", len(triples))
	}
	if triples[0].Source != "Alice" || triples[0].Relation != "MET" || triples[0].Target != "Bob" {
		t.Fatalf("unexpected triple: %+v", triples[0])
	}
}

func TestParseTriplesFencedOutput(t *testing.T) {
	raw := "Here are the triples:\n```json\n[{\"source\": \"Bob\", \"relation\": \"WORKS_AT\", \"target\": \"Acme\", \"fact\": \"Bob works at Acme.\"}]\n```"
	triples, err := parseTriples(raw)
	if err != nil {
		t.Fatalf("parseTriples: %v", err)
	}
	if len(triples) != 1 || triples[0].Target != "Acme" {
		t.Fatalf("unexpected triples: %+v", triples)
	}
}

func TestParseTriplesDropsIncompleteAndFillsFact(t *testing.T) {
	raw := `[
		{"source": "", "relation": "MET", "target": "Bob", "fact": "x"},
		{"source": "Alice", "relation": "LIVES_IN", "target": "Paris", "fact": ""}
	]`
	triples, err := parseTriples(raw)
	if err != nil {
		t.Fatalf("parseTriples: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("triples=%d, want 1", len(triples))
	}
	if triples[0].Fact != "Alice lives in Paris" {
		t.Fatalf("fact=%q", triples[0].Fact)
	}
}

func TestParseTriplesNoArray(t *testing.T) {
	if _, err := parseTriples("I could not find any triples."); err == nil {
		t.Fatal("expected error for output without a JSON array")
	}
}
