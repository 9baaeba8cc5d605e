package affidavit

import (
	"context"
	"errors"
)

// ErrFieldNotFound is returned by a Document for a field name it does not have
var ErrFieldNotFound = errors.New("form field not found")

// Document is a fillable form whose field names are only known at runtime
type Document interface {
	// FieldNames enumerates every field in the form
	FieldNames() []string
	HasField(name string) bool
	SetText(name, value string) error
	SetCheckbox(name string, checked bool) error
	// Bytes serializes the document with every value set so far
	Bytes() ([]byte, error)
}

// TemplateSource opens a fresh copy of the template stored at location
type TemplateSource interface {
	Open(ctx context.Context, location string) (Document, error)
}

// TemplateSourceFunc adapts a function to TemplateSource
type TemplateSourceFunc func(ctx context.Context, location string) (Document, error)

// Open calls f
func (f TemplateSourceFunc) Open(ctx context.Context, location string) (Document, error) {
	return f(ctx, location)
}
