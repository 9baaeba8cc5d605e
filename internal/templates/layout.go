// Package templates holds the HTML pages, written as templ components.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body { font-family: system-ui, sans-serif; margin: 0; color: #1b1b1b; }
header { background: #1a4480; color: #fff; padding: 0.75rem 1.5rem; }
header a { color: #fff; text-decoration: none; font-weight: 600; }
main { padding: 1.5rem; max-width: 960px; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #dfe1e2; }
.cards { display: flex; gap: 1rem; margin-bottom: 1.5rem; }
.card { border: 1px solid #dfe1e2; border-radius: 4px; padding: 0.75rem 1rem; min-width: 140px; }
.card .value { font-size: 1.6rem; font-weight: 700; }
.status-completed { color: #00a91c; }
.status-failed, .status-closed { color: #b50909; }
.empty { color: #71767a; font-style: italic; }
`

// Layout wraps body in the page chrome
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s | ServeTrack</title>
<style>%s</style>
</head>
<body>
<header><a href="/">ServeTrack</a></header>
<main>
`, templ.EscapeString(title), styles)
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, "</main>\n</body>\n</html>\n")
		return err
	})
}

// writer collects the first write error so page bodies read top to bottom
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

// text writes s HTML-escaped
func (w *writer) text(s string) {
	w.raw("%s", templ.EscapeString(s))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
