package ferret

import "testing"

func TestParseQuery_SimpleTerm(t *testing.T) {
	node, err := ParseQuery("fox")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodeTerm || node.Token != "fox" {
		t.Errorf("ParseQuery(fox) = %+v, want TERM(fox)", node)
	}
}

func TestParseQuery_ImplicitAnd(t *testing.T) {
	node, err := ParseQuery("fox dog")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodeAnd || len(node.Children) != 2 {
		t.Fatalf("ParseQuery(fox dog) = %+v, want AND of 2 children", node)
	}
}

func TestParseQuery_ExplicitOr(t *testing.T) {
	node, err := ParseQuery("fox | dog")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodeOr || len(node.Children) != 2 {
		t.Fatalf("ParseQuery(fox | dog) = %+v, want OR of 2 children", node)
	}
}

func TestParseQuery_NotBindsTighterThanAnd(t *testing.T) {
	node, err := ParseQuery("fox !dog")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodeAnd || len(node.Children) != 2 {
		t.Fatalf("ParseQuery(fox !dog) = %+v, want AND", node)
	}
	if node.Children[1].Kind != NodeNot {
		t.Errorf("second child = %+v, want NOT", node.Children[1])
	}
}

func TestParseQuery_Parens(t *testing.T) {
	node, err := ParseQuery("(fox | cat) dog")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodeAnd || len(node.Children) != 2 {
		t.Fatalf("ParseQuery() = %+v, want AND of 2 children", node)
	}
	if node.Children[0].Kind != NodeOr {
		t.Errorf("first child = %+v, want OR", node.Children[0])
	}
}

func TestParseQuery_Phrase(t *testing.T) {
	node, err := ParseQuery(`"quick brown fox"`)
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodePhrase {
		t.Fatalf("ParseQuery() = %+v, want PHRASE", node)
	}
	want := []string{"quick", "brown", "fox"}
	if len(node.Phrase) != len(want) {
		t.Fatalf("Phrase = %v, want %v", node.Phrase, want)
	}
	for i, w := range want {
		if node.Phrase[i] != w {
			t.Errorf("Phrase[%d] = %q, want %q", i, node.Phrase[i], w)
		}
	}
}

func TestParseQuery_Wildcard(t *testing.T) {
	node, err := ParseQuery("sp*ce")
	if err != nil {
		t.Fatalf("ParseQuery() error = %v", err)
	}
	if node.Kind != NodeWildcard || node.Token != "sp*ce" {
		t.Errorf("ParseQuery(sp*ce) = %+v, want WILDCARD(sp*ce)", node)
	}
}

func TestParseQuery_UnterminatedPhrase(t *testing.T) {
	if _, err := ParseQuery(`"unterminated`); err == nil {
		t.Error("ParseQuery with unterminated quote: error = nil, want ErrMalformedQuery")
	}
}

func TestParseQuery_UnbalancedParens(t *testing.T) {
	if _, err := ParseQuery("(fox"); err == nil {
		t.Error("ParseQuery with unbalanced parens: error = nil, want ErrMalformedQuery")
	}
}

func TestParseQuery_EmptyPhrase(t *testing.T) {
	if _, err := ParseQuery(`""`); err == nil {
		t.Error("ParseQuery with empty phrase: error = nil, want ErrMalformedQuery")
	}
}
