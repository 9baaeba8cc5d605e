// Package assets holds files compiled into the servetrack binary.
package assets

import _ "embed"

// AffidavitTemplateLocation is the template location that resolves to the
// bundled affidavit rather than a file or URL.
const AffidavitTemplateLocation = "bundled:affidavit-template.pdf"

//go:embed affidavit-template.pdf
var affidavitTemplate []byte

// AffidavitTemplate returns a copy of the bundled fillable affidavit
func AffidavitTemplate() []byte {
	out := make([]byte, len(affidavitTemplate))
	copy(out, affidavitTemplate)
	return out
}
