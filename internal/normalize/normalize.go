// Package normalize turns records arriving in either naming convention (the app's
// camelCase keys or the persistence layer's `$id`/snake_case keys) into the canonical
// model types.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jjenkins/servetrack/internal/model"
)

// UnknownID is assigned to a single record that carries no identifier
const UnknownID = "unknown"

// Raw is a record as decoded from JSON
type Raw map[string]any

// Shape is the naming convention a raw record was written in
type Shape int

const (
	ShapeApp Shape = iota
	ShapePersisted
)

func (s Shape) String() string {
	if s == ShapePersisted {
		return "persisted"
	}
	return "app"
}

// detect counts the keys of each convention present in raw; ties go to ShapeApp.
func detect(raw Raw, table aliasTable) Shape {
	var app, persisted int
	for _, a := range table {
		for _, k := range a.app {
			if _, ok := raw[k]; ok {
				app++
			}
		}
		for _, k := range a.persisted {
			if _, ok := raw[k]; ok {
				persisted++
			}
		}
	}
	if persisted > app {
		return ShapePersisted
	}
	return ShapeApp
}

// reader resolves canonical keys against one raw record
type reader struct {
	raw   Raw
	table aliasTable
	shape Shape
}

func newReader(raw Raw, table aliasTable) reader {
	return reader{raw: raw, table: table, shape: detect(raw, table)}
}

// value returns the first non-empty value stored under any accepted key
func (r reader) value(key string) (any, bool) {
	a, ok := r.table[key]
	if !ok {
		return nil, false
	}
	for _, k := range a.ordered(r.shape) {
		v, ok := r.raw[k]
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r reader) str(key string) string {
	v, ok := r.value(key)
	if !ok {
		return ""
	}
	return toString(v)
}

func (r reader) id() string {
	if id := r.str(KeyID); id != "" {
		return id
	}
	return UnknownID
}

func (r reader) timestamp(key string) time.Time {
	v, ok := r.value(key)
	if !ok {
		return time.Time{}
	}
	return toTime(v)
}

func (r reader) float(key string) (float64, bool) {
	v, ok := r.value(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// hasID reports whether any identifier key holds a usable value
func hasID(raw Raw, table aliasTable) bool {
	return newReader(raw, table).str(KeyID) != ""
}

// Client builds a canonical client. It never fails; missing text becomes "".
func Client(raw Raw) model.Client {
	r := newReader(raw, clientAliases)
	return model.Client{
		ID:        r.id(),
		Name:      r.str(KeyName),
		Email:     r.str(KeyEmail),
		Phone:     r.str(KeyPhone),
		Address:   r.str(KeyAddress),
		CreatedAt: r.timestamp(KeyCreatedAt),
		UpdatedAt: r.timestamp(KeyUpdatedAt),
	}
}

// Case builds a canonical case
func Case(raw Raw) model.Case {
	r := newReader(raw, caseAliases)
	return model.Case{
		ID:          r.id(),
		ClientID:    r.str(KeyClientID),
		CaseNumber:  r.str(KeyCaseNumber),
		CaseName:    r.str(KeyCaseName),
		CourtName:   r.str(KeyCourtName),
		Plaintiff:   r.str(KeyPlaintiff),
		Defendant:   r.str(KeyDefendant),
		ServeeName:  r.str(KeyServeeName),
		HomeAddress: r.str(KeyHomeAddress),
		WorkAddress: r.str(KeyWorkAddress),
		Status:      CaseStatus(r.str(KeyStatus)),
		CreatedAt:   r.timestamp(KeyCreatedAt),
		UpdatedAt:   r.timestamp(KeyUpdatedAt),
	}
}

// Serve builds a canonical serve attempt
func Serve(raw Raw) model.Serve {
	r := newReader(raw, serveAliases)
	return model.Serve{
		ID:             r.id(),
		CaseID:         r.str(KeyCaseID),
		ClientID:       r.str(KeyClientID),
		Timestamp:      r.timestamp(KeyTimestamp),
		CreatedAt:      r.timestamp(KeyCreatedAt),
		Status:         ServeStatus(r.str(KeyStatus)),
		Notes:          r.str(KeyNotes),
		Description:    r.str(KeyDescription),
		ServiceAddress: r.str(KeyServiceAddr),
		ImageURL:       r.str(KeyImageURL),
		Physical:       physical(r),
		Location:       location(r),
	}
}

func physical(r reader) *model.PhysicalDescription {
	v, ok := r.value(KeyPhysical)
	if !ok {
		return nil
	}
	nested := toRaw(v)
	if nested == nil {
		return nil
	}
	pr := newReader(nested, physicalAliases)
	p := &model.PhysicalDescription{
		Sex:    pr.str("sex"),
		Age:    pr.str("age"),
		Height: pr.str("height"),
		Weight: pr.str("weight"),
		Hair:   pr.str("hair"),
		Skin:   pr.str("skin"),
		Other:  pr.str("other"),
	}
	if p.IsZero() {
		return nil
	}
	return p
}

func location(r reader) *model.GeoPoint {
	lat, latOK := r.float(KeyLatitude)
	lng, lngOK := r.float(KeyLongitude)
	acc, _ := r.float(KeyAccuracy)
	if !latOK || !lngOK {
		v, ok := r.value(KeyCoordinates)
		if !ok {
			return nil
		}
		nested := toRaw(v)
		if nested == nil {
			return nil
		}
		nr := newReader(nested, serveAliases)
		lat, latOK = nr.float(KeyLatitude)
		lng, lngOK = nr.float(KeyLongitude)
		acc, _ = nr.float(KeyAccuracy)
		if !latOK || !lngOK {
			return nil
		}
	}
	return &model.GeoPoint{Latitude: lat, Longitude: lng, Accuracy: acc}
}

// ServeStatus maps free-form outcome labels onto completed/failed
func ServeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed", "complete", "served", "success", "successful":
		return model.ServeStatusCompleted
	default:
		return model.ServeStatusFailed
	}
}

// CaseStatus maps free-form case status labels onto open/closed
func CaseStatus(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), model.CaseStatusClosed) {
		return model.CaseStatusClosed
	}
	return model.CaseStatusOpen
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case map[string]any:
		return len(t) == 0
	case Raw:
		return len(t) == 0
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	return ""
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime accepts RFC 3339-ish strings, plain dates and Unix milliseconds.
func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC()
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms != 0 {
			return time.UnixMilli(ms).UTC()
		}
	default:
		if f, ok := toFloat(v); ok && f != 0 {
			return time.UnixMilli(int64(f)).UTC()
		}
	}
	return time.Time{}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// toRaw accepts a nested object or a JSON-encoded object string
func toRaw(v any) Raw {
	switch t := v.(type) {
	case Raw:
		return t
	case map[string]any:
		return Raw(t)
	case string:
		s := strings.TrimSpace(t)
		if !strings.HasPrefix(s, "{") {
			return nil
		}
		var out Raw
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil
		}
		return out
	}
	return nil
}
