package lexicon

import "strings"

type detachment struct{ suffix, replacement string }

// Inflectional suffix rules per part of speech, from WordNet's morphy(7WN).
var detachments = map[string][]detachment{
	Noun: {
		{"s", ""}, {"ses", "s"}, {"ves", "f"}, {"xes", "x"}, {"zes", "z"},
		{"ches", "ch"}, {"shes", "sh"}, {"men", "man"}, {"ies", "y"},
	},
	Verb: {
		{"s", ""}, {"ies", "y"}, {"es", "e"}, {"es", ""},
		{"ed", "e"}, {"ed", ""}, {"ing", "e"}, {"ing", ""},
	},
	Adjective: {
		{"er", ""}, {"est", ""}, {"er", "e"}, {"est", "e"},
	},
}

// candidateForms returns word followed by its base forms, without duplicates.
// When word is listed in the exception file for pos, the listed bases are the
// only base forms; otherwise the detachment rules for pos produce them. Forms
// are unchecked; the caller drops those with no senses.
func candidateForms(word, pos string, exceptions []string) []string {
	forms := []string{word}
	seen := map[string]struct{}{word: {}}
	if len(exceptions) > 0 {
		for _, base := range exceptions {
			if _, ok := seen[base]; ok {
				continue
			}
			seen[base] = struct{}{}
			forms = append(forms, base)
		}
		return forms
	}
	for _, d := range detachments[pos] {
		if !strings.HasSuffix(word, d.suffix) || len(word) <= len(d.suffix) {
			continue
		}
		form := strings.TrimSuffix(word, d.suffix) + d.replacement
		if _, ok := seen[form]; ok {
			continue
		}
		seen[form] = struct{}{}
		forms = append(forms, form)
	}
	return forms
}
