package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/jjenkins/servetrack/internal/model"
)

// Attempt is one serve attempt as shown on the case page
type Attempt struct {
	Number int
	When   string
	Serve  model.Serve
}

// CaseDetail is everything the case page shows
type CaseDetail struct {
	Case     model.Case
	Client   *model.Client
	Attempts []Attempt
}

// CasePage renders one case with its attempts in chronological order
func CasePage(d CaseDetail) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		c := d.Case

		w.raw("<h1>")
		w.text(orDash(c.CaseName))
		w.raw("</h1>\n<table>\n")
		rows := [][2]string{
			{"Case number", c.CaseNumber},
			{"Court", c.CourtName},
			{"Plaintiff", c.Plaintiff},
			{"Defendant", c.Defendant},
			{"Party to serve", c.ServeeName},
			{"Home address", c.HomeAddress},
			{"Work address", c.WorkAddress},
			{"Status", c.Status},
		}
		if d.Client != nil {
			rows = append(rows, [2]string{"Client", d.Client.Name})
		}
		for _, row := range rows {
			w.raw("<tr><th>")
			w.text(row[0])
			w.raw("</th><td>")
			w.text(orDash(row[1]))
			w.raw("</td></tr>\n")
		}
		w.raw("</table>\n")

		w.raw("<form method=\"get\" action=\"/cases/%s/affidavit\">\n", templ.EscapeString(url.PathEscape(c.ID)))
		w.raw("<label>Service address override <input type=\"text\" name=\"address\"></label>\n")
		w.raw("<button type=\"submit\">Download affidavit</button>\n</form>\n")

		w.raw("<h2>Serve attempts</h2>\n")
		if len(d.Attempts) == 0 {
			w.raw("<p class=\"empty\">No attempts recorded.</p>\n")
			return w.err
		}
		w.raw("<table>\n<thead><tr><th>#</th><th>When</th><th>Status</th><th>Address</th><th>Notes</th></tr></thead>\n<tbody>\n")
		for _, a := range d.Attempts {
			w.raw("<tr><td>%d</td><td>", a.Number)
			w.text(orDash(a.When))
			w.raw("</td><td class=\"status-%s\">", templ.EscapeString(a.Serve.Status))
			w.text(a.Serve.Status)
			w.raw("</td><td>")
			w.text(orDash(a.Serve.ServiceAddress))
			w.raw("</td><td>")
			w.text(orDash(firstNonEmpty(a.Serve.Notes, a.Serve.Description)))
			if g := a.Serve.Location; g != nil {
				w.raw("<br><small>")
				w.text(fmt.Sprintf("GPS %.6f, %.6f", g.Latitude, g.Longitude))
				w.raw("</small>")
			}
			w.raw("</td></tr>\n")
		}
		w.raw("</tbody>\n</table>\n")
		return w.err
	})
	return Layout(orDash(d.Case.CaseNumber), body)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
