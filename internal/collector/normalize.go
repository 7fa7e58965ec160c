package collector

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/model"
)

// envelopeShape classifies how an API response wraps its item list. The
// upstream service answers with at least three undocumented variants.
type envelopeShape int

const (
	shapeFlat envelopeShape = iota
	shapeWrapped
	shapeDoubleWrapped
	shapeUnknown
)

func (s envelopeShape) String() string {
	switch s {
	case shapeFlat:
		return "flat"
	case shapeWrapped:
		return "wrapped"
	case shapeDoubleWrapped:
		return "double-wrapped"
	default:
		return "unknown"
	}
}

// lookupFold returns the value for the first key matching name
// case-insensitively.
func lookupFold(m map[string]any, name string) (any, bool) {
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func lookupString(m map[string]any, name string) string {
	if v, ok := lookupFold(m, name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func itemMaps(list []any) []map[string]any {
	items := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// decodeEnvelope extracts the item list and unit string from a raw API
// response. Descent stops after two wrapping levels; any deeper or otherwise
// unexpected shape yields an empty list, never an error.
func decodeEnvelope(raw []byte) ([]map[string]any, string, envelopeShape) {
	var top any
	if err := json.Unmarshal(raw, &top); err != nil {
		logrus.Debugf("response is not valid JSON: %v", err)
		return nil, "", shapeUnknown
	}

	switch v := top.(type) {
	case []any:
		return itemMaps(v), "", shapeFlat
	case map[string]any:
		unit := lookupString(v, "unit")
		l1, ok := lookupFold(v, "data")
		if !ok {
			return nil, unit, shapeUnknown
		}
		switch inner := l1.(type) {
		case []any:
			return itemMaps(inner), unit, shapeWrapped
		case map[string]any:
			if unit == "" {
				unit = lookupString(inner, "unit")
			}
			l2, ok := lookupFold(inner, "data")
			if !ok {
				return nil, unit, shapeUnknown
			}
			if list, ok := l2.([]any); ok {
				return itemMaps(list), unit, shapeDoubleWrapped
			}
			return nil, unit, shapeUnknown
		default:
			return nil, unit, shapeUnknown
		}
	default:
		return nil, "", shapeUnknown
	}
}

// canonicalKeys maps the canonical item key to the verbose upstream spelling
// it may arrive under.
var canonicalKeys = [...]struct{ canon, source string }{
	{"v", "Value"},
	{"f", "Flag"},
	{"t", "From"},
}

// canonicalizeItem copies verbose keys onto their canonical short names.
// Existing canonical keys are never overwritten, so an already-canonical item
// passes through unchanged.
func canonicalizeItem(item map[string]any) map[string]any {
	if item == nil {
		return item
	}
	for _, ck := range canonicalKeys {
		if _, ok := item[ck.canon]; ok {
			continue
		}
		if v, ok := lookupFold(item, ck.source); ok {
			item[ck.canon] = v
		}
	}
	return item
}

// convertUnit rescales a cent-denominated value to EUR in place. Units not
// mentioning "cent" and non-numeric values pass through unchanged.
func convertUnit(item map[string]any, unit string) {
	if unit == "" || !strings.Contains(strings.ToLower(unit), "cent") {
		return
	}
	switch v := item["v"].(type) {
	case float64:
		item["v"] = v / 100.0
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			item["v"] = f / 100.0
		}
	}
}

// itemTimestamp parses the canonical "t" key. The API mixes offset and Zulu
// notation; a few responses omit the offset entirely.
func itemTimestamp(item map[string]any) (time.Time, bool) {
	s, ok := item["t"].(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func itemPoint(item map[string]any) (model.TimePoint, bool) {
	ts, ok := itemTimestamp(item)
	if !ok {
		return model.TimePoint{}, false
	}
	p := model.TimePoint{Time: ts}
	switch v := item["v"].(type) {
	case float64:
		p.Value = &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.Value = &f
		}
	}
	if f, ok := item["f"].(float64); ok {
		flag := int(f)
		p.Flag = &flag
	}
	return p, true
}

// normalizePoints turns a raw API response into canonical TimePoints plus the
// unit string the response carried. Items without a parseable timestamp are
// skipped.
func normalizePoints(raw []byte) ([]model.TimePoint, string, envelopeShape) {
	items, unit, shape := decodeEnvelope(raw)
	if shape == shapeUnknown {
		logrus.Debugf("unrecognized response shape, treating as no data")
	}
	points := make([]model.TimePoint, 0, len(items))
	for _, item := range items {
		canonicalizeItem(item)
		convertUnit(item, unit)
		if p, ok := itemPoint(item); ok {
			points = append(points, p)
		}
	}
	return points, unit, shape
}
