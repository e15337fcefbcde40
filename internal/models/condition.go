// Package models defines core data structures shared by the indexing, retrieval
// and annotation pipelines.
package models

// ValueKind identifies the shape of a condition attribute.
type ValueKind int

const (
	// KindText is a single scalar rendered as text.
	KindText ValueKind = iota
	// KindList is an ordered list of scalars.
	KindList
	// KindRecords is an ordered list of sub-records.
	KindRecords
)

// Value is one attribute of a condition record.
type Value struct {
	Kind    ValueKind
	Text    string
	List    []string
	Records []Record
}

// Field is a key/value pair of a sub-record.
type Field struct {
	Key   string
	Value Value
}

// Record is a sub-record with its fields in source order.
type Record []Field

// Get returns the value for key and whether it was present.
func (r Record) Get(key string) (Value, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// ConditionRecord is the structured description of one medical condition as
// read from the source dataset. Name is empty when HasName is false.
type ConditionRecord struct {
	Name       string
	HasName    bool
	Attributes map[string]Value
}

// Attr returns the attribute stored under key.
func (c *ConditionRecord) Attr(key string) (Value, bool) {
	if c.Attributes == nil {
		return Value{}, false
	}
	v, ok := c.Attributes[key]
	return v, ok
}

// TextValue builds a scalar value.
func TextValue(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// ListValue builds a list value.
func ListValue(items ...string) Value {
	return Value{Kind: KindList, List: items}
}

// RecordsValue builds a list of sub-records.
func RecordsValue(records ...Record) Value {
	return Value{Kind: KindRecords, Records: records}
}
