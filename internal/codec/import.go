package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/clipbox/internal/model"
)

// Import errors.
var (
	ErrNotArray          = errors.New("import data must be a JSON array")
	ErrNothingImportable = errors.New("nothing importable")
)

// Format identifies the shape of an import document.
type Format int

const (
	// FormatGrouped is [{type, icon, data: [{id?, content, key?}]}].
	FormatGrouped Format = iota
	// FormatLegacy is [{content, type?}].
	FormatLegacy
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "grouped"
}

// Result is the outcome of a successful parse.
type Result struct {
	Format  Format
	Records []model.Snippet
	// Dropped counts entries that produced no record.
	Dropped int
	// Icons holds the group icons of a grouped document, keyed by category label.
	Icons model.TypeIcons
}

// Sniff decides the document format by looking at the top level once.
// It returns the array elements for the matching parser.
func Sniff(data []byte) (Format, []json.RawMessage, error) {
	elems, err := topLevelArray(data)
	if err != nil {
		return 0, nil, err
	}
	if len(elems) == 0 {
		return 0, nil, ErrNothingImportable
	}

	first, ok := object(elems[0])
	if ok {
		_, hasContent := first["content"]
		_, hasData := first["data"]
		if hasContent && !hasData {
			return FormatLegacy, elems, nil
		}
	}
	return FormatGrouped, elems, nil
}

// topLevelArray splits a JSON array, or a YAML sequence as written by
// EncodeYAML, into JSON elements.
func topLevelArray(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] == '{' {
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotArray, err)
		}
		return elems, nil
	}

	var seq []any
	if err := yaml.Unmarshal(trimmed, &seq); err != nil || seq == nil {
		return nil, ErrNotArray
	}
	elems = make([]json.RawMessage, 0, len(seq))
	for _, v := range seq {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotArray, err)
		}
		elems = append(elems, raw)
	}
	return elems, nil
}

// Decode sniffs data and parses it with the matching parser. A document that
// yields no valid record is an error.
func Decode(data []byte, now time.Time) (Result, error) {
	format, elems, err := Sniff(data)
	if err != nil {
		return Result{}, err
	}

	var result Result
	switch format {
	case FormatLegacy:
		result, err = ParseLegacy(elems, now)
	default:
		result, err = ParseGrouped(elems, now)
	}
	if err != nil {
		return Result{}, err
	}

	if len(result.Records) == 0 {
		return Result{}, fmt.Errorf("%w: %d invalid entries", ErrNothingImportable, result.Dropped)
	}
	return result, nil
}

// ParseLegacy converts flat {content, type?} records. Every record gets a
// fresh id, an empty key and both timestamps set to now.
func ParseLegacy(elems []json.RawMessage, now time.Time) (Result, error) {
	result := Result{Format: FormatLegacy, Records: make([]model.Snippet, 0, len(elems))}

	for _, raw := range elems {
		obj, ok := object(raw)
		if !ok {
			result.Dropped++
			continue
		}
		content, ok := stringField(obj, "content")
		if !ok {
			result.Dropped++
			continue
		}
		typ, _ := stringField(obj, "type")

		sn, err := model.NewSnippet(content, typ, "", now)
		if errors.Is(err, model.ErrEmptyContent) {
			result.Dropped++
			continue
		}
		if err != nil {
			return Result{}, err
		}
		result.Records = append(result.Records, *sn)
	}

	return result, nil
}

// ParseGrouped flattens {type, icon, data} groups. Supplied ids are kept,
// missing ones are generated, and both timestamps are set to now. The
// uncategorized label maps back to the empty category. A group that is not
// an object or has no data array counts as one dropped entry.
func ParseGrouped(elems []json.RawMessage, now time.Time) (Result, error) {
	result := Result{
		Format:  FormatGrouped,
		Records: make([]model.Snippet, 0, len(elems)),
		Icons:   make(model.TypeIcons),
	}

	for _, raw := range elems {
		group, ok := object(raw)
		if !ok {
			result.Dropped++
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(group["data"], &items); err != nil || items == nil {
			result.Dropped++
			continue
		}

		label, _ := stringField(group, "type")
		label = strings.TrimSpace(label)
		typ := label
		if typ == model.UncategorizedLabel {
			typ = ""
		}
		if label == "" {
			label = model.UncategorizedLabel
		}
		if icon, ok := stringField(group, "icon"); ok && strings.TrimSpace(icon) != "" {
			result.Icons[label] = strings.TrimSpace(icon)
		}

		for _, rawItem := range items {
			item, ok := object(rawItem)
			if !ok {
				result.Dropped++
				continue
			}
			content, ok := stringField(item, "content")
			if !ok {
				result.Dropped++
				continue
			}
			key, _ := stringField(item, "key")

			sn, err := model.NewSnippet(content, typ, key, now)
			if errors.Is(err, model.ErrEmptyContent) {
				result.Dropped++
				continue
			}
			if err != nil {
				return Result{}, err
			}
			if id, ok := stringField(item, "id"); ok && strings.TrimSpace(id) != "" {
				sn.ID = strings.TrimSpace(id)
			}
			result.Records = append(result.Records, *sn)
		}
	}

	return result, nil
}

// object decodes raw as a JSON object.
func object(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// stringField returns obj[name] when it is a JSON string.
func stringField(obj map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := obj[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
