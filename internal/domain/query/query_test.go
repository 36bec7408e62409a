package query

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_NoQuotes(t *testing.T) {
	inputs := []string{
		"",
		"plain text query",
		"for loops in python",
		"unicode: čitanje podataka",
	}
	for _, in := range inputs {
		p := Parse(in)
		if p.Processed != in {
			t.Errorf("Parse(%q).Processed = %q, want input unchanged", in, p.Processed)
		}
		if len(p.Phrases) != 0 {
			t.Errorf("Parse(%q).Phrases = %v, want empty", in, p.Phrases)
		}
	}
}

func TestParse_SinglePhrase(t *testing.T) {
	p := Parse(`learning "for loops" in Python`)
	if p.Processed != "learning for_loops in Python" {
		t.Errorf("Processed = %q", p.Processed)
	}
	if !reflect.DeepEqual(p.Phrases, []string{"for loops"}) {
		t.Errorf("Phrases = %v", p.Phrases)
	}
}

func TestParse_OrderPreserved(t *testing.T) {
	p := Parse(`learning "for loops" in "Python" class`)
	want := []string{"for loops", "Python"}
	if !reflect.DeepEqual(p.Phrases, want) {
		t.Errorf("Phrases = %v, want %v", p.Phrases, want)
	}
	if p.Processed != "learning for_loops in Python class" {
		t.Errorf("Processed = %q", p.Processed)
	}
}

func TestParse_EscapedQuoteInsidePhrase(t *testing.T) {
	p := Parse(`for "a \"b\" c" testing`)
	want := []string{`a "b" c`}
	if !reflect.DeepEqual(p.Phrases, want) {
		t.Errorf("Phrases = %v, want %v", p.Phrases, want)
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	in := `a "dangling phrase`
	p := Parse(in)
	if p.Processed != in {
		t.Errorf("Processed = %q, want input unchanged", p.Processed)
	}
	if len(p.Phrases) != 0 {
		t.Errorf("Phrases = %v, want empty", p.Phrases)
	}
}

func TestParse_EmptyPhraseRecorded(t *testing.T) {
	p := Parse(`before "" after`)
	if !reflect.DeepEqual(p.Phrases, []string{""}) {
		t.Errorf("Phrases = %v, want one empty phrase", p.Phrases)
	}
	if p.Processed != "before  after" {
		t.Errorf("Processed = %q", p.Processed)
	}
}

func TestParse_WhitespaceRunsCollapse(t *testing.T) {
	p := Parse(`find "for   loops" here`)
	if p.Processed != "find for_loops here" {
		t.Errorf("Processed = %q", p.Processed)
	}
}

func TestParse_Idempotent(t *testing.T) {
	first := Parse(`learning "for loops" in "Python" class`)
	second := Parse(first.Processed)
	if len(second.Phrases) != 0 {
		t.Errorf("reparsing processed text extracted %v, want nothing", second.Phrases)
	}
	if second.Processed != first.Processed {
		t.Errorf("reparse changed text: %q -> %q", first.Processed, second.Processed)
	}
}

func TestParse_EscapedQuotesSurviveInProcessed(t *testing.T) {
	// Substitution inserts the unescaped phrase, so escaped quotes come out
	// as literal quote characters. Idempotence therefore holds only for
	// quote-free phrases: re-parsing this output finds a new quote pair.
	first := Parse(`x "a \"b\" c" y`)
	if first.Processed != `x a_"b"_c y` {
		t.Fatalf("Processed = %q", first.Processed)
	}
	second := Parse(first.Processed)
	if len(second.Phrases) != 1 || second.Phrases[0] != "b" {
		t.Errorf("reparse extracted %v, want [b]", second.Phrases)
	}
}

func TestEnhance_NoPhrasesIsIdentity(t *testing.T) {
	in := "plain text query"
	if got := Enhance(in); got != in {
		t.Errorf("Enhance(%q) = %q, want identity", in, got)
	}
}

func TestEnhance_AppendsPhrases(t *testing.T) {
	got := Enhance(`learning "for loops" in Python`)
	want := "learning for_loops in Python for loops"
	if got != want {
		t.Errorf("Enhance = %q, want %q", got, want)
	}
}

func TestEnhance_ContainsEachPhraseLiterally(t *testing.T) {
	got := Enhance(`compare "linear regression" with "decision trees"`)
	for _, phrase := range []string{"linear regression", "decision trees"} {
		if !strings.Contains(got, phrase) {
			t.Errorf("Enhance output %q missing phrase %q", got, phrase)
		}
	}
}

func TestEnhance_OnlyEmptyPhrases(t *testing.T) {
	in := `odd "" query`
	if got := Enhance(in); got != in {
		t.Errorf("Enhance(%q) = %q, want raw query back", in, got)
	}
}
