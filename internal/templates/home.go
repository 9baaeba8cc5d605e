package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/jjenkins/servetrack/internal/model"
)

// HomeMetrics is the dashboard summary
type HomeMetrics struct {
	Clients         int
	OpenCases       int
	Attempts        int
	CompletedServes int
}

// Home renders the dashboard with the case list
func Home(metrics HomeMetrics, cases []model.Case) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw("<h1>Dashboard</h1>\n<div class=\"cards\">\n")
		for _, card := range []struct {
			label string
			value int
		}{
			{"Clients", metrics.Clients},
			{"Open cases", metrics.OpenCases},
			{"Serve attempts", metrics.Attempts},
			{"Completed serves", metrics.CompletedServes},
		} {
			w.raw("<div class=\"card\"><div class=\"value\">%d</div><div>", card.value)
			w.text(card.label)
			w.raw("</div></div>\n")
		}
		w.raw("</div>\n<h2>Cases</h2>\n")

		if len(cases) == 0 {
			w.raw("<p class=\"empty\">No cases yet. Import a bundle with <code>servetrack import --file</code>.</p>\n")
			return w.err
		}

		w.raw("<table>\n<thead><tr><th>Case number</th><th>Case</th><th>Court</th><th>Status</th></tr></thead>\n<tbody>\n")
		for _, c := range cases {
			w.raw("<tr><td><a href=\"/cases/%s\">", templ.EscapeString(c.ID))
			w.text(orDash(c.CaseNumber))
			w.raw("</a></td><td>")
			w.text(orDash(c.CaseName))
			w.raw("</td><td>")
			w.text(orDash(c.CourtName))
			w.raw("</td><td class=\"status-%s\">", templ.EscapeString(c.Status))
			w.text(c.Status)
			w.raw("</td></tr>\n")
		}
		w.raw("</tbody>\n</table>\n")
		return w.err
	})
	return Layout("Dashboard", body)
}
