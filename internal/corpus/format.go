package corpus

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hyperjump/predictimed/internal/docid"
	"github.com/hyperjump/predictimed/internal/models"
)

// UnknownName labels records that carry no name.
const UnknownName = "Unknown Disease"

const sourcePrefix = "Medical Database - "

var standardSections = []struct {
	key   string
	label string
}{
	{"description", "Description"},
	{"symptoms", "Symptoms"},
	{"diagnosis", "Diagnosis"},
	{"treatment", "Treatment"},
	{"complications", "Complications"},
}

// Special attributes rendered after the morphology block, in this order.
var specialParams = []string{
	"types",
	"causative_organisms",
	"classification",
	"risk_factors",
	"prevention",
	"epidemiology",
}

// Name returns the record's name or UnknownName.
func Name(rec *models.ConditionRecord) string {
	if rec.HasName {
		return rec.Name
	}
	return UnknownName
}

// SourceLabel returns the provenance label stored with the record's document.
func SourceLabel(rec *models.ConditionRecord) string {
	return sourcePrefix + Name(rec)
}

// Flatten renders rec as labeled sections separated by blank lines. The name
// section is always present, so the result is never empty.
func Flatten(rec *models.ConditionRecord) string {
	parts := []string{"Disease Name: " + Name(rec)}

	for _, s := range standardSections {
		if v, ok := rec.Attr(s.key); ok {
			parts = append(parts, s.label+": "+inline(v))
		}
	}

	if v, ok := rec.Attr("morphological_changes"); ok {
		parts = append(parts, morphology(v))
	}

	for _, p := range specialParams {
		v, ok := rec.Attr(p)
		if !ok {
			continue
		}
		label := pythonTitle(p)
		if v.Kind == models.KindRecords {
			parts = append(parts, label+":\n"+recordLines(v.Records))
			continue
		}
		parts = append(parts, label+": "+inline(v))
	}

	return strings.Join(parts, "\n\n")
}

// BuildDocuments flattens every record into a document. Positions follow
// the input order.
func BuildDocuments(recs []models.ConditionRecord) []models.Document {
	docs := make([]models.Document, len(recs))
	for i := range recs {
		rec := &recs[i]
		docs[i] = models.Document{
			ID:       docid.ConditionDocID(i, Name(rec)),
			Position: i,
			Text:     Flatten(rec),
			Metadata: map[string]string{models.MetadataSource: SourceLabel(rec)},
		}
	}
	return docs
}

func inline(v models.Value) string {
	switch v.Kind {
	case models.KindList:
		return strings.Join(v.List, ", ")
	case models.KindRecords:
		return recordLines(v.Records)
	default:
		return v.Text
	}
}

func recordLines(records []models.Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		pairs := make([]string, len(r))
		for j, f := range r {
			pairs[j] = f.Key + ": " + inline(f.Value)
		}
		lines[i] = strings.Join(pairs, " | ")
	}
	return strings.Join(lines, "\n")
}

func morphology(v models.Value) string {
	if v.Kind != models.KindRecords {
		return "Morphological Changes: " + inline(v)
	}
	lines := make([]string, len(v.Records))
	for i, stage := range v.Records {
		lines[i] = fmt.Sprintf("Duration: %s, Gross Changes: %s, Microscopic Changes: %s",
			field(stage, "duration", "Unknown"),
			field(stage, "gross_changes", "None"),
			field(stage, "light_microscopic_changes", "None"),
		)
	}
	return "Morphological Changes:\n" + strings.Join(lines, "\n")
}

func field(r models.Record, key, fallback string) string {
	if v, ok := r.Get(key); ok {
		return inline(v)
	}
	return fallback
}

// pythonTitle upper-cases the first letter of every letter run and lower-cases
// the rest, so "risk_factors" becomes "Risk_Factors".
func pythonTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
