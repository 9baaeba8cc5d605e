package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/servetrack/internal/affidavit"
	"github.com/jjenkins/servetrack/internal/metrics"
	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/pdfform"
	"github.com/jjenkins/servetrack/internal/service"
	"github.com/jjenkins/servetrack/internal/store"
)

// memDB backs the fake stores
type memDB struct {
	clients map[string]model.Client
	cases   map[string]model.Case
	serves  map[string]model.Serve
	seq     int
}

func newMemDB() *memDB {
	return &memDB{
		clients: map[string]model.Client{},
		cases:   map[string]model.Case{},
		serves:  map[string]model.Serve{},
	}
}

func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

type memClients struct{ *memDB }

func (m memClients) Create(_ context.Context, c *model.Client) error {
	if c.ID == "" {
		c.ID = m.nextID("cl")
	}
	if _, ok := m.clients[c.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.clients[c.ID] = *c
	return nil
}

func (m memClients) GetByID(_ context.Context, id string) (*model.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (m memClients) List(context.Context) ([]model.Client, error) {
	var out []model.Client
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

type memCases struct{ *memDB }

func (m memCases) Create(_ context.Context, c *model.Case) error {
	for _, existing := range m.cases {
		if existing.ClientID == c.ClientID && c.CaseNumber != "" && existing.CaseNumber == c.CaseNumber {
			return store.ErrDuplicateCaseNumber
		}
	}
	if c.ID == "" {
		c.ID = m.nextID("c")
	}
	if c.Status == "" {
		c.Status = model.CaseStatusOpen
	}
	m.cases[c.ID] = *c
	return nil
}

func (m memCases) GetByID(_ context.Context, id string) (*model.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", id, store.ErrNotFound)
	}
	return &c, nil
}

func (m memCases) ListByClient(_ context.Context, clientID string) ([]model.Case, error) {
	var out []model.Case
	for _, c := range m.cases {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memCases) List(context.Context) ([]model.Case, error) {
	var out []model.Case
	for _, c := range m.cases {
		out = append(out, c)
	}
	return out, nil
}

func (m memCases) UpdateStatus(_ context.Context, id, status string) error {
	c, ok := m.cases[id]
	if !ok {
		return store.ErrNotFound
	}
	c.Status = status
	m.cases[id] = c
	return nil
}

type memServes struct{ *memDB }

func (m memServes) Create(_ context.Context, s *model.Serve) error {
	if s.ID == "" {
		s.ID = m.nextID("s")
	}
	m.serves[s.ID] = *s
	return nil
}

func (m memServes) GetByID(_ context.Context, id string) (*model.Serve, error) {
	s, ok := m.serves[id]
	if !ok {
		return nil, fmt.Errorf("serve %s: %w", id, store.ErrNotFound)
	}
	return &s, nil
}

func (m memServes) ListByCase(_ context.Context, caseID string) ([]model.Serve, error) {
	var out []model.Serve
	for _, s := range m.serves {
		if s.CaseID == caseID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m memServes) UpdateNotes(_ context.Context, id, notes, status string) error {
	s, ok := m.serves[id]
	if !ok {
		return store.ErrNotFound
	}
	s.Notes = notes
	if status != "" {
		s.Status = status
	}
	m.serves[id] = s
	return nil
}

type fixedSummary struct{}

func (fixedSummary) Summary(context.Context) (*service.Summary, error) {
	return &service.Summary{Clients: 1, OpenCases: 1, Attempts: 2, CompletedServes: 1}, nil
}

type stubGenerator struct {
	result *affidavit.Result
	err    error
	opts   service.GenerateOptions
}

func (g *stubGenerator) Generate(_ context.Context, _ string, opts service.GenerateOptions) (*affidavit.Result, error) {
	g.opts = opts
	return g.result, g.err
}

type stubInspector struct{}

func (stubInspector) Inspect(_ context.Context, location string) ([]pdfform.FieldInfo, error) {
	if location == "" {
		return nil, &pdfform.LoadError{Location: location, Err: fmt.Errorf("no template configured")}
	}
	return []pdfform.FieldInfo{
		{Name: "Case Number", Kind: "text", Pages: []int{1}},
		{Name: "Served at Business", Kind: "checkbox", Pages: []int{1}},
	}, nil
}

type testServer struct {
	app *fiber.App
	db  *memDB
	gen *stubGenerator
	reg *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := newMemDB()
	gen := &stubGenerator{result: &affidavit.Result{PDF: []byte("%PDF-1.7 test"), Filename: "affidavit-CV-42-2024-05-07.pdf"}}
	reg := prometheus.NewRegistry()
	metrics.New(reg).Generated()

	app := fiber.New()
	Register(app, Deps{
		Clients:          memClients{db},
		Cases:            memCases{db},
		Serves:           memServes{db},
		Stats:            fixedSummary{},
		Affidavits:       gen,
		Inspector:        stubInspector{},
		TemplateLocation: "assets/affidavit-template.pdf",
		Gatherer:         reg,
		Zone:             time.UTC,
	})
	return &testServer{app: app, db: db, gen: gen, reg: reg}
}

func (s *testServer) do(t *testing.T, method, target, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestClientsAPI(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/api/clients", `{"client_name":"Acme Law","client_address":"123 Main St"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	created := decode(t, body)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Acme Law", created["name"])

	resp, body = s.do(t, http.MethodGet, "/api/clients/"+id, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "123 Main St", decode(t, body)["address"])

	resp, _ = s.do(t, http.MethodGet, "/api/clients/missing", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/clients", `{"email":"x@y.test"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/clients", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/clients", `{"$id":"`+id+`","name":"Again"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCasesAPI(t *testing.T) {
	s := newTestServer(t)
	s.db.clients["cl-1"] = model.Client{ID: "cl-1", Name: "Acme Law"}

	resp, body := s.do(t, http.MethodPost, "/api/cases", `{"clientId":"cl-1","caseNumber":"CV-42","caseName":"Smith v. Jones"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	caseID := decode(t, body)["id"].(string)

	resp, _ = s.do(t, http.MethodPost, "/api/cases", `{"client_id":"cl-1","case_number":"CV-42"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/cases", `{"caseNumber":"CV-43"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/cases", `{"clientId":"nobody","caseNumber":"CV-44"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/clients/cl-1/cases", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list, 1)

	resp, body = s.do(t, http.MethodPatch, "/api/cases/"+caseID+"/status", `{"status":"Closed"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, model.CaseStatusClosed, decode(t, body)["status"])

	resp, _ = s.do(t, http.MethodPatch, "/api/cases/"+caseID+"/status", `{"status":"archived"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPatch, "/api/cases/missing/status", `{"status":"open"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestServesAPI(t *testing.T) {
	s := newTestServer(t)
	s.db.cases["c-1"] = model.Case{ID: "c-1", ClientID: "cl-1", CaseNumber: "CV-42"}

	resp, body := s.do(t, http.MethodPost, "/api/cases/c-1/serves",
		`{"served_at":"2024-05-06T13:45:00Z","serve_status":"served","serve_notes":"Handed to defendant"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	created := decode(t, body)
	serveID := created["id"].(string)
	assert.Equal(t, "c-1", created["caseId"])
	assert.Equal(t, "cl-1", created["clientId"])
	assert.Equal(t, model.ServeStatusCompleted, created["status"])

	_, _ = s.do(t, http.MethodPost, "/api/cases/c-1/serves", `{"timestamp":"2024-05-01T09:00:00Z","notes":"No answer"}`)

	resp, body = s.do(t, http.MethodGet, "/api/cases/c-1/serves", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "No answer", list[0]["notes"], "attempts are listed oldest first")

	resp, body = s.do(t, http.MethodPatch, "/api/serves/"+serveID, `{"notes":"Handed to defendant at door"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	updated := decode(t, body)
	assert.Equal(t, "Handed to defendant at door", updated["notes"])
	assert.Equal(t, model.ServeStatusCompleted, updated["status"])

	resp, _ = s.do(t, http.MethodPost, "/api/cases/missing/serves", `{"notes":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPatch, "/api/serves/missing", `{"notes":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAffidavitDownload(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/cases/c-1/affidavit?address=7+Override+Ct", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="affidavit-CV-42-2024-05-07.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, "%PDF-1.7 test", body)
	assert.Equal(t, "7 Override Ct", s.gen.opts.ServiceAddress)
}

func TestAffidavitDownload_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing case", fmt.Errorf("case x: %w", store.ErrNotFound), fiber.StatusNotFound},
		{"nothing to fill", affidavit.ErrEmptyInput, fiber.StatusBadRequest},
		{"template unreachable", fmt.Errorf("failed to load affidavit template: %w", &pdfform.LoadError{Location: "https://example.test/t.pdf", Err: fmt.Errorf("unexpected status code: 404")}), fiber.StatusInternalServerError},
		{"serialization", &affidavit.EmitError{Err: fmt.Errorf("xref broken")}, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.gen.err = tt.err

			resp, body := s.do(t, http.MethodGet, "/cases/c-1/affidavit", "")
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.err.Error(), decode(t, body)["error"])
		})
	}
}

func TestTemplateFields(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/api/template/fields", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got fieldsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "assets/affidavit-template.pdf", got.Location)
	assert.Len(t, got.Fields, 2)
	assert.Equal(t, "Case Number", got.Resolved[affidavit.FieldCaseNumber])
}

func TestPages(t *testing.T) {
	s := newTestServer(t)
	s.db.clients["cl-1"] = model.Client{ID: "cl-1", Name: "Acme Law"}
	s.db.cases["c-1"] = model.Case{ID: "c-1", ClientID: "cl-1", CaseNumber: "CV-42", Status: model.CaseStatusOpen}
	s.db.serves["s-1"] = model.Serve{ID: "s-1", CaseID: "c-1", Timestamp: time.Date(2024, 5, 6, 13, 45, 0, 0, time.UTC), Status: model.ServeStatusCompleted}

	resp, body := s.do(t, http.MethodGet, "/", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/cases/c-1"`)

	resp, body = s.do(t, http.MethodGet, "/cases/c-1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Acme Law")
	assert.Contains(t, body, "05/06/2024 1:45 PM")

	resp, _ = s.do(t, http.MethodGet, "/cases/missing", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "servetrack_affidavits_generated_total 1")
}

type stubImporter struct {
	stats *service.BundleStats
	got   *service.Bundle
}

func (i *stubImporter) Import(_ context.Context, b *service.Bundle) (*service.BundleStats, error) {
	i.got = b
	return i.stats, nil
}

func TestImportEndpoint(t *testing.T) {
	importer := &stubImporter{stats: &service.BundleStats{Serves: service.ImportStats{Total: 2, Imported: 1, Failed: 1}}}
	app := fiber.New()
	Register(app, Deps{Importer: importer})

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(`{"serves":[{"$id":"s-1"},{"id":"s-2"}]}`))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusMultiStatus, resp.StatusCode)
	require.NotNil(t, importer.got)
	assert.Len(t, importer.got.Serves, 2)

	var stats service.BundleStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Serves.Failed)

	req = httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader(`[`))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
