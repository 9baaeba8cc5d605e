package affidavit

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// EmitError is a failure to serialize the filled document
type EmitError struct {
	Err error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("failed to serialize affidavit: %v", e.Err)
}

func (e *EmitError) Unwrap() error {
	return e.Err
}

// Emit serializes doc. The returned buffer belongs to the caller.
func Emit(doc Document) ([]byte, error) {
	data, err := doc.Bytes()
	if err != nil {
		return nil, &EmitError{Err: err}
	}
	if len(data) == 0 {
		return nil, &EmitError{Err: fmt.Errorf("document serialized to zero bytes")}
	}
	return data, nil
}

// Filename suggests a download name built from the case number and date
func Filename(caseNumber string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(caseNumber) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '/' || r == '.':
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "case"
	}
	return fmt.Sprintf("affidavit-%s-%s.pdf", name, now.Format("2006-01-02"))
}
