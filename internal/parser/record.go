package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/TELOS-syslab/zsimview/internal/models"
)

// ParseRecords parses the structured export of the columnar stats dump: a
// JSON array with one record per period. Composite records become sections,
// arrays of records become lists of sections, numeric arrays become lists of
// leaves, and scalars unwrap to native int/float. Every period is wrapped
// under the top-level "root" key so path resolution is encoding-agnostic.
func ParseRecords(raw []byte) ([]*models.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var records []interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode record array: %w", err)
	}

	periods := make([]*models.Node, 0, len(records))
	for i, rec := range records {
		node, err := convertRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		period := models.NewSection()
		period.SetChild("root", node)
		periods = append(periods, period)
	}

	return periods, nil
}

func convertRecord(v interface{}) (*models.Node, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		section := models.NewSection()
		// JSON objects are unordered; sort field names so the tree shape is
		// deterministic across parses.
		names := make([]string, 0, len(val))
		for name := range val {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, err := convertRecord(val[name])
			if err != nil {
				return nil, err
			}
			if child != nil {
				section.SetChild(name, child)
			}
		}
		return section, nil
	case []interface{}:
		items := make([]*models.Node, 0, len(val))
		for _, item := range val {
			child, err := convertRecord(item)
			if err != nil {
				return nil, err
			}
			if child != nil {
				items = append(items, child)
			}
		}
		return models.NewList(items), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return models.NewInt(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("unparseable number %q: %w", val.String(), err)
		}
		return models.NewFloat(f), nil
	case string:
		return models.NewString(val), nil
	case bool:
		if val {
			return models.NewInt(1), nil
		}
		return models.NewInt(0), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported record field type %T", v)
	}
}
