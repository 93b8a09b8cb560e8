package ingest

import (
	"reflect"
	"testing"
)

func TestTokenizeBasic(t *testing.T) {
	tok := NewTokenizer([]string{"the", "a", "into"})
	got := tok.Tokenize("The raven flew into a dark-grey sky")
	want := []string{"raven", "flew", "dark-grey", "sky"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeDropsNumbersAndSingleLetters(t *testing.T) {
	tok := NewTokenizer(nil)
	got := tok.Tokenize("In 1892 a B-movie had 3 acts and x marks")
	want := []string{"in", "b-movie", "had", "acts", "and", "marks"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeHyphenCleanup(t *testing.T) {
	tok := NewTokenizer(nil)
	got := tok.Tokenize("--well--known-- ---")
	want := []string{"well-known"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizerStopwordEditing(t *testing.T) {
	tok := NewTokenizer([]string{"Shadow"})
	if !tok.IsStopword("shadow") {
		t.Fatal("stopwords should be case-insensitive")
	}
	tok.RemoveStopword("SHADOW")
	if tok.IsStopword("shadow") {
		t.Error("RemoveStopword did not remove")
	}
	tok.AddStopword("Mist")
	if got := tok.Tokenize("mist rolls"); !reflect.DeepEqual(got, []string{"rolls"}) {
		t.Errorf("Tokenize after AddStopword = %v", got)
	}
}

func TestWords(t *testing.T) {
	got := Words(`"Run!" she said -- Alexander's coat, 'torn'.`)
	want := []string{"Run", "she", "said", "Alexander's", "coat", "torn"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %v, want %v", got, want)
	}
}
