// Package pdfform exposes a fillable PDF through affidavit.Document using pdfcpu.
//
// pdfcpu's config directory is disabled, and with it the Roboto font pdfcpu
// installs there as its fallback for filling text. A template with text or date
// fields must list a standard font (Helvetica, Times-Roman, ...) in its AcroForm
// /DR resources and name it in the fields' /DA strings. Open rejects templates
// that have none with ErrNoFormFont.
package pdfform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/form"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/primitives"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jjenkins/servetrack/internal/affidavit"
)

// Document is a loaded template plus the values written to it so far. Values are
// applied when Bytes is called; the template bytes are never modified in place.
type Document struct {
	data   []byte
	fields map[string]form.Field
	names  []string
	text   map[string]string
	checks map[string]bool
	conf   *model.Configuration
}

var _ affidavit.Document = (*Document)(nil)

func init() {
	// pdfcpu otherwise writes a config directory under the user's home
	api.DisableConfigDir()
}

// ErrNoFormFont is returned by Open for a template whose text fields could not
// be filled because its AcroForm /DR resources hold no usable font.
var ErrNoFormFont = errors.New("form has text fields but no standard font in its AcroForm /DR resources")

// Open reads the form fields of a PDF
func Open(data []byte) (*Document, error) {
	conf := newConfiguration()
	conf.Cmd = model.LISTFORMFIELDS
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read form fields: %w", err)
	}
	fields, _, err := form.FormFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read form fields: %w", err)
	}
	if hasTextFields(fields) {
		if err := checkFormFont(ctx.XRefTable); err != nil {
			return nil, err
		}
	}
	return newDocument(data, fields, conf), nil
}

func hasTextFields(fields []form.Field) bool {
	for _, f := range fields {
		if f.Typ == form.FTText || f.Typ == form.FTDate {
			return true
		}
	}
	return false
}

// checkFormFont looks for a /DR font pdfcpu can lay out text with
func checkFormFont(xRefTable *model.XRefTable) error {
	fonts, err := primitives.FormFontResDict(xRefTable)
	if err != nil {
		return fmt.Errorf("failed to read form fonts: %w", err)
	}
	for _, o := range fonts {
		indRef, ok := o.(types.IndirectRef)
		if !ok {
			continue
		}
		name, _, err := primitives.FormFontNameAndLangForID(xRefTable, indRef)
		if err != nil {
			continue
		}
		if font.IsCoreFont(name) || font.IsUserFont(name) {
			return nil
		}
	}
	return ErrNoFormFont
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func newDocument(data []byte, fields []form.Field, conf *model.Configuration) *Document {
	d := &Document{
		data:   data,
		fields: make(map[string]form.Field, len(fields)),
		text:   make(map[string]string),
		checks: make(map[string]bool),
		conf:   conf,
	}
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		if _, dup := d.fields[f.Name]; dup {
			continue
		}
		d.fields[f.Name] = f
		d.names = append(d.names, f.Name)
	}
	sort.Strings(d.names)
	return d
}

// FieldNames returns the field names in sorted order
func (d *Document) FieldNames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// HasField reports whether the form has a field called name
func (d *Document) HasField(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// SetText queues a value for a text or date field
func (d *Document) SetText(name, value string) error {
	f, ok := d.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", affidavit.ErrFieldNotFound, name)
	}
	if f.Typ != form.FTText && f.Typ != form.FTDate {
		return fmt.Errorf("field %q is not a text field", name)
	}
	d.text[name] = value
	return nil
}

// SetCheckbox queues a state for a checkbox field
func (d *Document) SetCheckbox(name string, checked bool) error {
	f, ok := d.fields[name]
	if !ok {
		return fmt.Errorf("%w: %q", affidavit.ErrFieldNotFound, name)
	}
	if f.Typ != form.FTCheckBox {
		return fmt.Errorf("field %q is not a checkbox", name)
	}
	d.checks[name] = checked
	return nil
}

// Pending returns how many values are waiting to be written
func (d *Document) Pending() int {
	return len(d.text) + len(d.checks)
}

// Bytes writes the queued values into a copy of the template. Fields stay
// unlocked so the form can still be completed by hand.
func (d *Document) Bytes() ([]byte, error) {
	if d.Pending() == 0 {
		out := make([]byte, len(d.data))
		copy(out, d.data)
		return out, nil
	}

	payload, err := json.Marshal(d.fillGroup())
	if err != nil {
		return nil, fmt.Errorf("failed to encode form values: %w", err)
	}

	var buf bytes.Buffer
	if err := api.FillForm(bytes.NewReader(d.data), bytes.NewReader(payload), &buf, d.conf); err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}
	return buf.Bytes(), nil
}

// fillGroup mirrors the JSON layout pdfcpu accepts for form filling
type fillGroup struct {
	Forms []fillForm `json:"forms"`
}

type fillForm struct {
	TextFields []textField `json:"textfield,omitempty"`
	DateFields []textField `json:"datefield,omitempty"`
	CheckBoxes []checkBox  `json:"checkbox,omitempty"`
}

type textField struct {
	Pages  []int  `json:"pages"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type checkBox struct {
	Pages  []int  `json:"pages"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

func (d *Document) fillGroup() fillGroup {
	var f fillForm
	for _, name := range d.names {
		field := d.fields[name]
		if value, ok := d.text[name]; ok {
			tf := textField{Pages: field.Pages, ID: field.ID, Name: field.Name, Value: value}
			if field.Typ == form.FTDate {
				f.DateFields = append(f.DateFields, tf)
			} else {
				f.TextFields = append(f.TextFields, tf)
			}
		}
		if checked, ok := d.checks[name]; ok {
			f.CheckBoxes = append(f.CheckBoxes, checkBox{Pages: field.Pages, ID: field.ID, Name: field.Name, Value: checked})
		}
	}
	return fillGroup{Forms: []fillForm{f}}
}

// Describe lists the fields with their kinds, for diagnostics
func (d *Document) Describe() []FieldInfo {
	out := make([]FieldInfo, 0, len(d.names))
	for _, name := range d.names {
		f := d.fields[name]
		out = append(out, FieldInfo{Name: name, Kind: kindName(f.Typ), Pages: f.Pages})
	}
	return out
}

// FieldInfo describes one form field
type FieldInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Pages []int  `json:"pages"`
}

func kindName(t form.FieldType) string {
	switch t {
	case form.FTText:
		return "text"
	case form.FTDate:
		return "date"
	case form.FTCheckBox:
		return "checkbox"
	case form.FTComboBox:
		return "combobox"
	case form.FTListBox:
		return "listbox"
	case form.FTRadioButtonGroup:
		return "radio"
	}
	return "unknown"
}
