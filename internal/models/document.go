package models

// MetadataSource is the metadata key holding a document's provenance label.
const MetadataSource = "source"

// DefaultSource is reported for documents whose metadata lacks a source.
const DefaultSource = "Medical Database"

// Document is one flattened condition record ready for embedding. Documents
// are immutable once written to an index.
type Document struct {
	ID       string            `json:"id" db:"id"`
	Position int               `json:"position" db:"position"`
	Text     string            `json:"text" db:"content"`
	Metadata map[string]string `json:"metadata" db:"metadata"`
}

// Source returns the document's source label or DefaultSource.
func (d *Document) Source() string {
	if d.Metadata != nil {
		if s, ok := d.Metadata[MetadataSource]; ok {
			return s
		}
	}
	return DefaultSource
}

// Hit is a single similarity search result.
type Hit struct {
	Document
	Score float64 `json:"score"`
}
