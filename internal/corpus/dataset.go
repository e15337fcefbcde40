// Package corpus turns structured condition records into the flat text
// documents that are embedded into the similarity index.
package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/hyperjump/predictimed/internal/models"
)

// ErrInvalidDataset is returned when the dataset is not a list of condition objects.
var ErrInvalidDataset = errors.New("invalid dataset")

// LoadDatasetFile reads condition records from a JSON file at path.
func LoadDatasetFile(path string) ([]models.ConditionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return LoadDataset(f)
}

// LoadDataset reads condition records from r. The document is either
// {"diseases": [...]} or a bare array of condition objects. Sub-record keys
// keep the order they have in the source.
func LoadDataset(r io.Reader) ([]models.ConditionRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDataset)
	}
	root := gjson.ParseBytes(data)
	list := root
	if !root.IsArray() {
		list = root.Get("diseases")
		if !list.Exists() {
			return nil, fmt.Errorf("%w: missing \"diseases\" list", ErrInvalidDataset)
		}
		if !list.IsArray() {
			return nil, fmt.Errorf("%w: \"diseases\" is not a list", ErrInvalidDataset)
		}
	}

	var records []models.ConditionRecord
	var parseErr error
	i := 0
	list.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			parseErr = fmt.Errorf("%w: entry %d is not an object", ErrInvalidDataset, i)
			return false
		}
		records = append(records, parseRecord(item))
		i++
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return records, nil
}

func parseRecord(obj gjson.Result) models.ConditionRecord {
	rec := models.ConditionRecord{Attributes: make(map[string]models.Value)}
	obj.ForEach(func(k, v gjson.Result) bool {
		// null is treated the same as a missing key
		if v.Type == gjson.Null {
			return true
		}
		key := k.String()
		if key == "name" {
			rec.Name = scalarString(v)
			rec.HasName = true
			return true
		}
		rec.Attributes[key] = parseValue(v)
		return true
	})
	return rec
}

func parseValue(v gjson.Result) models.Value {
	if !v.IsArray() {
		return models.TextValue(scalarString(v))
	}
	items := v.Array()
	allObjects := len(items) > 0
	for _, it := range items {
		if !it.IsObject() {
			allObjects = false
			break
		}
	}
	if allObjects {
		records := make([]models.Record, len(items))
		for i, it := range items {
			records[i] = parseSubRecord(it)
		}
		return models.RecordsValue(records...)
	}
	list := make([]string, len(items))
	for i, it := range items {
		list[i] = scalarString(it)
	}
	return models.ListValue(list...)
}

func parseSubRecord(obj gjson.Result) models.Record {
	var rec models.Record
	obj.ForEach(func(k, v gjson.Result) bool {
		val := models.TextValue(scalarString(v))
		if v.IsArray() {
			items := v.Array()
			list := make([]string, len(items))
			for i, it := range items {
				list[i] = scalarString(it)
			}
			val = models.ListValue(list...)
		}
		rec = append(rec, models.Field{Key: k.String(), Value: val})
		return true
	})
	return rec
}

// scalarString renders a JSON value the way the dataset authors expect to read it:
// strings unquoted, numbers as written, booleans and null in Python spelling.
func scalarString(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	case gjson.True:
		return "True"
	case gjson.False:
		return "False"
	case gjson.Null:
		return "None"
	default:
		return v.Raw
	}
}
