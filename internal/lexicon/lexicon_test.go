package lexicon

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func importFixture(t *testing.T) *BleveLexicon {
	t.Helper()
	lex, err := Create(filepath.Join(t.TempDir(), "lexicon"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = lex.Close() })
	stats, err := ImportWordNet(context.Background(), lex, filepath.Join("testdata", "wordnet"))
	if err != nil {
		t.Fatalf("ImportWordNet: %v", err)
	}
	if stats.Synsets != 15 {
		t.Errorf("synsets = %d, want 15", stats.Synsets)
	}
	if stats.Senses != 18 {
		t.Errorf("senses = %d, want 18", stats.Senses)
	}
	if stats.Exceptions != 4 {
		t.Errorf("exceptions = %d, want 4", stats.Exceptions)
	}
	return lex
}

func TestSenses(t *testing.T) {
	lex := importFixture(t)
	ctx := context.Background()

	tests := []struct {
		term        string
		wantLexname string
		wantDef     string
		wantCount   int
	}{
		{"fever", "noun.state", "a rise in the temperature of the body; frequently a symptom of infection", 1},
		{"Fever", "noun.state", "a rise in the temperature of the body; frequently a symptom of infection", 1},
		{"fevers", "noun.state", "a rise in the temperature of the body; frequently a symptom of infection", 1},
		{"heart", "noun.body", "the hollow muscular organ located behind the sternum and between the lungs", 2},
		{"Heart Attack", "noun.state", "a sudden severe instance of abnormal heart function", 1},
		{"dogs", "noun.animal", "a member of the genus Canis", 1},
		{"severe", "adj.all", "intensely or extremely bad or unpleasant in degree or quality", 1},
		{"developed", "verb.body", "grow, progress, unfold, or evolve through a process of evolution", 1},
		{"teeth", "noun.body", "hard bonelike structures in the jaws of vertebrates", 1},
		{"Teeth", "noun.body", "hard bonelike structures in the jaws of vertebrates", 1},
		{"vertebrae", "noun.body", "one of the bony segments of the spinal column", 1},
		{"diagnoses", "noun.act", "identifying the nature or cause of some phenomenon", 1},
		{"tooth", "noun.body", "hard bonelike structures in the jaws of vertebrates", 1},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			senses, err := lex.Senses(ctx, tt.term)
			if err != nil {
				t.Fatal(err)
			}
			if len(senses) != tt.wantCount {
				t.Fatalf("got %d senses, want %d: %+v", len(senses), tt.wantCount, senses)
			}
			if senses[0].Lexname != tt.wantLexname {
				t.Errorf("lexname = %q, want %q", senses[0].Lexname, tt.wantLexname)
			}
			if senses[0].Definition != tt.wantDef {
				t.Errorf("definition = %q, want %q", senses[0].Definition, tt.wantDef)
			}
		})
	}
}

func TestSenses_RankOrderAndExamplesStripped(t *testing.T) {
	lex := importFixture(t)
	senses, err := lex.Senses(context.Background(), "heart")
	if err != nil {
		t.Fatal(err)
	}
	if len(senses) != 2 {
		t.Fatalf("got %d senses", len(senses))
	}
	if senses[0].Rank != 0 || senses[1].Rank != 1 {
		t.Errorf("ranks = %d, %d", senses[0].Rank, senses[1].Rank)
	}
	if senses[1].Lexname != "noun.feeling" {
		t.Errorf("second sense lexname = %q", senses[1].Lexname)
	}
	if senses[1].Definition != "an inclination or tendency of a certain kind" {
		t.Errorf("second sense definition = %q", senses[1].Definition)
	}
}

func TestSenses_Unknown(t *testing.T) {
	lex := importFixture(t)
	for _, term := range []string{"zebra", "", "   ", "the"} {
		senses, err := lex.Senses(context.Background(), term)
		if err != nil {
			t.Fatal(err)
		}
		if len(senses) != 0 {
			t.Errorf("%q: got %d senses", term, len(senses))
		}
	}
}

func TestOpen(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "lexicon")
	lex, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := lex.AddSenses(context.Background(), []Sense{{Lemma: "gout", POS: Noun, Offset: "1", Lexname: "noun.state", Definition: "painful inflammation of the big toe"}}); err != nil {
		t.Fatal(err)
	}
	_ = lex.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	n, err := reopened.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestAddExceptions_PersistAndNotCounted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon")
	lex, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := lex.AddSenses(ctx, []Sense{{Lemma: "foot", POS: Noun, Offset: "5", Lexname: "noun.body", Definition: "the pedal extremity"}}); err != nil {
		t.Fatal(err)
	}
	if err := lex.AddExceptions(ctx, Noun, map[string][]string{"feet": {"foot"}}); err != nil {
		t.Fatal(err)
	}
	_ = lex.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	n, err := reopened.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	senses, err := reopened.Senses(ctx, "feet")
	if err != nil {
		t.Fatal(err)
	}
	if len(senses) != 1 || senses[0].Lemma != "foot" {
		t.Errorf("Senses(feet) = %+v, want the foot sense", senses)
	}
	// Exceptions are per part of speech.
	if exc, err := reopened.exceptions("feet", Verb); err != nil || len(exc) != 0 {
		t.Errorf("verb exceptions for feet = %v, %v", exc, err)
	}
}

func TestReadExceptionFile(t *testing.T) {
	exc, err := readExceptionFile(filepath.Join("testdata", "wordnet", "noun.exc"))
	if err != nil {
		t.Fatal(err)
	}
	if got := exc["vertebrae"]; len(got) != 2 || got[0] != "vertebra" || got[1] != "vertebras" {
		t.Errorf("vertebrae = %v", got)
	}
	missing, err := readExceptionFile(filepath.Join(t.TempDir(), "adv.exc"))
	if err != nil || missing != nil {
		t.Errorf("missing file = %v, %v", missing, err)
	}
}

func TestImportWordNet_MissingFiles(t *testing.T) {
	lex, err := Create(filepath.Join(t.TempDir(), "lexicon"))
	if err != nil {
		t.Fatal(err)
	}
	defer lex.Close()
	if _, err := ImportWordNet(context.Background(), lex, t.TempDir()); err == nil {
		t.Error("expected error for empty dictionary directory")
	}
}

func TestCandidateForms(t *testing.T) {
	tests := []struct {
		word, pos  string
		exceptions []string
		want       []string
	}{
		{"fevers", Noun, nil, []string{"fevers", "fever"}},
		{"calves", Noun, nil, []string{"calves", "calve", "calf"}},
		{"teeth", Noun, []string{"tooth"}, []string{"teeth", "tooth"}},
		{"vertebrae", Noun, []string{"vertebra", "vertebra"}, []string{"vertebrae", "vertebra"}},
		{"axes", Noun, []string{"ax", "axis"}, []string{"axes", "ax", "axis"}},
		{"churches", Noun, nil, []string{"churches", "churche", "church"}},
		{"women", Noun, nil, []string{"women", "woman"}},
		{"quickly", Adverb, nil, []string{"quickly"}},
		{"s", Noun, nil, []string{"s"}},
		{"larger", Adjective, nil, []string{"larger", "large", "larg"}},
	}
	for _, tt := range tests {
		got := candidateForms(tt.word, tt.pos, tt.exceptions)
		if len(got) != len(tt.want) {
			t.Errorf("candidateForms(%q, %q) = %v, want %v", tt.word, tt.pos, got, tt.want)
			continue
		}
		seen := map[string]bool{}
		for _, g := range got {
			seen[g] = true
		}
		for _, w := range tt.want {
			if !seen[w] {
				t.Errorf("candidateForms(%q, %q) = %v, missing %q", tt.word, tt.pos, got, w)
			}
		}
	}
}

func TestDefinition(t *testing.T) {
	tests := []struct{ gloss, want string }{
		{` a symptom of hurt; "the patient felt pain" `, "a symptom of hurt"},
		{"one; two", "one; two"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := definition(tt.gloss); got != tt.want {
			t.Errorf("definition(%q) = %q, want %q", tt.gloss, got, tt.want)
		}
	}
}
