// Package cli renders answers, annotations and index status for the
// predictimed command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/predictimed/internal/models"
	"github.com/hyperjump/predictimed/internal/rag"
	"github.com/hyperjump/predictimed/internal/retrieval"
	"github.com/hyperjump/predictimed/internal/simplify"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

type answerJSON struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
}

// WriteAnswer writes an orchestrator answer to w in the given format.
func WriteAnswer(w io.Writer, ans rag.Answer, format OutputFormat) error {
	if format == OutputJSON {
		out := answerJSON{Answer: ans.Text, Sources: ans.Sources, Status: string(ans.Status)}
		if out.Sources == nil {
			out.Sources = []string{}
		}
		if ans.Err != nil {
			out.Error = ans.Err.Error()
		}
		return encodeJSON(w, out)
	}

	fmt.Fprintf(w, "\n%s\n", ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for i, src := range ans.Sources {
			fmt.Fprintf(w, "  %d. %s\n", i+1, src)
		}
	}
	fmt.Fprintln(w)
	return nil
}

type annotationJSON struct {
	SimplifiedText string               `json:"simplified_text"`
	Explanations   []models.Explanation `json:"explanations"`
}

// WriteAnnotation writes an annotated text and its glossary to w.
func WriteAnnotation(w io.Writer, res *simplify.Result, format OutputFormat) error {
	if format == OutputJSON {
		out := annotationJSON{SimplifiedText: res.Text, Explanations: res.Explanations}
		if out.Explanations == nil {
			out.Explanations = []models.Explanation{}
		}
		return encodeJSON(w, out)
	}

	fmt.Fprintf(w, "\n%s\n", res.Text)
	if len(res.Explanations) == 0 {
		fmt.Fprintln(w, "\nNo medical terms found.")
		return nil
	}
	fmt.Fprintln(w, "\nTerms:")
	for _, e := range res.Explanations {
		fmt.Fprintf(w, "  - %s: %s\n", e.Term, e.Explanation)
	}
	return nil
}

// WriteManifest writes a summary of a built index.
func WriteManifest(w io.Writer, m *retrieval.Manifest) {
	fmt.Fprintf(w, "Build:      %s\n", m.BuildID)
	fmt.Fprintf(w, "Model:      %s\n", m.Model)
	fmt.Fprintf(w, "Dimensions: %d\n", m.Dimensions)
	fmt.Fprintf(w, "Documents:  %d\n", m.Count)
	fmt.Fprintf(w, "Index type: %s\n", m.IndexType)
	fmt.Fprintf(w, "Created:    %s\n", m.CreatedAt.Format("2006-01-02 15:04:05 MST"))
}

type documentJSON struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Source   string `json:"source"`
	Text     string `json:"text,omitempty"`
}

// WriteDocuments lists indexed documents, one per line in text form.
func WriteDocuments(w io.Writer, docs []models.Document, format OutputFormat) error {
	if format == OutputJSON {
		out := make([]documentJSON, len(docs))
		for i := range docs {
			out[i] = documentJSON{ID: docs[i].ID, Position: docs[i].Position, Source: docs[i].Source()}
		}
		return encodeJSON(w, out)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents.")
		return nil
	}
	for i := range docs {
		fmt.Fprintf(w, "%5d  %s  %s\n", docs[i].Position, docs[i].ID, docs[i].Source())
	}
	return nil
}

// WriteDocument writes one indexed document with its full text.
func WriteDocument(w io.Writer, doc *models.Document, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, documentJSON{ID: doc.ID, Position: doc.Position, Source: doc.Source(), Text: doc.Text})
	}
	fmt.Fprintf(w, "ID:       %s\n", doc.ID)
	fmt.Fprintf(w, "Position: %d\n", doc.Position)
	fmt.Fprintf(w, "Source:   %s\n\n", doc.Source())
	fmt.Fprintln(w, doc.Text)
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
