package affidavit

import (
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Field outcomes reported by Fill
const (
	OutcomeFilled  = "filled"
	OutcomeMissing = "missing"
	OutcomeSkipped = "skipped"
)

var sentinels = []string{"not specified", "n/a"}

// FillReport records what happened to each logical value
type FillReport struct {
	// Filled maps logical key to the form field that received it
	Filled map[string]string
	// Missing lists keys whose candidates matched no field
	Missing []string
	// Skipped lists keys whose value was empty or a placeholder
	Skipped []string
}

func newFillReport() *FillReport {
	return &FillReport{Filled: make(map[string]string)}
}

// Filler writes resolved values into a Document by candidate field name
type Filler struct {
	fields FieldMap
	logger *zap.Logger
}

// NewFiller creates a Filler; a nil map means DefaultFieldMap
func NewFiller(fields FieldMap, logger *zap.Logger) *Filler {
	if fields == nil {
		fields = DefaultFieldMap()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filler{fields: fields, logger: logger}
}

// Fill writes every usable value in in to doc. Missing fields are logged and
// reported, never returned as errors.
func (f *Filler) Fill(doc Document, in Input) *FillReport {
	report := newFillReport()
	idx := newFieldIndex(doc)

	for _, v := range in.TextValues() {
		if IsPlaceholder(v.Value) {
			report.Skipped = append(report.Skipped, v.Key)
			f.logger.Debug("skipping empty value", zap.String("key", v.Key))
			continue
		}
		value := strings.TrimSpace(v.Value)
		name, ok := f.write(idx, v.Key, func(field string) error {
			return doc.SetText(field, value)
		})
		f.record(report, v.Key, name, ok)
	}

	for _, key := range in.Checks() {
		name, ok := f.write(idx, key, func(field string) error {
			return doc.SetCheckbox(field, true)
		})
		f.record(report, key, name, ok)
	}

	sort.Strings(report.Missing)
	return report
}

// write tries each candidate for key in order and stops at the first field that
// accepts the value.
func (f *Filler) write(idx *fieldIndex, key string, set func(field string) error) (string, bool) {
	candidates := f.fields.Candidates(key)
	for _, candidate := range candidates {
		field, ok := idx.lookup(candidate)
		if !ok || idx.used[field] {
			continue
		}
		if err := set(field); err != nil {
			f.logger.Debug("candidate field rejected value",
				zap.String("key", key),
				zap.String("field", field),
				zap.Error(err))
			continue
		}
		idx.used[field] = true
		return field, true
	}
	f.logger.Debug("no form field for value",
		zap.String("key", key),
		zap.Strings("candidates", candidates))
	return "", false
}

func (f *Filler) record(report *FillReport, key, field string, ok bool) {
	if ok {
		report.Filled[key] = field
		return
	}
	report.Missing = append(report.Missing, key)
}

// IsPlaceholder reports whether a value must not be printed on the form
func IsPlaceholder(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return true
	}
	for _, s := range sentinels {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// fieldIndex matches candidate names exactly, then loosely
type fieldIndex struct {
	doc   Document
	loose map[string]string
	used  map[string]bool
}

func newFieldIndex(doc Document) *fieldIndex {
	idx := &fieldIndex{
		doc:   doc,
		loose: make(map[string]string),
		used:  make(map[string]bool),
	}
	for _, name := range doc.FieldNames() {
		key := looseName(name)
		if _, exists := idx.loose[key]; !exists {
			idx.loose[key] = name
		}
	}
	return idx
}

func (idx *fieldIndex) lookup(candidate string) (string, bool) {
	if idx.doc.HasField(candidate) {
		return candidate, true
	}
	name, ok := idx.loose[looseName(candidate)]
	return name, ok
}

// looseName drops case, spaces and punctuation: "Case No." -> "caseno"
func looseName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
