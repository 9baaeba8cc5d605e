package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/normalize"
)

type recordingStore struct {
	clients []model.Client
	cases   []model.Case
	serves  []model.Serve
	failIDs map[string]bool
}

type clientSink struct{ *recordingStore }
type caseSink struct{ *recordingStore }
type serveSink struct{ *recordingStore }

func (s clientSink) Upsert(_ context.Context, c *model.Client) error {
	if s.failIDs[c.ID] {
		return errors.New("constraint violated")
	}
	s.clients = append(s.clients, *c)
	return nil
}

func (s caseSink) Upsert(_ context.Context, c *model.Case) error {
	if s.failIDs[c.ID] {
		return errors.New("constraint violated")
	}
	s.cases = append(s.cases, *c)
	return nil
}

func (s serveSink) Upsert(_ context.Context, sv *model.Serve) error {
	if s.failIDs[sv.ID] {
		return errors.New("constraint violated")
	}
	s.serves = append(s.serves, *sv)
	return nil
}

func newTestImporter(rs *recordingStore) *Importer {
	return NewImporter(normalize.New(nil), clientSink{rs}, caseSink{rs}, serveSink{rs}, nil)
}

func TestImporter_MixedConventions(t *testing.T) {
	rs := &recordingStore{failIDs: map[string]bool{"s-bad": true}}

	stats, err := newTestImporter(rs).Import(context.Background(), &Bundle{
		Clients: []normalize.Raw{
			{"$id": "cl-1", "client_name": "Acme Law"},
			{"name": "no id"},
		},
		Cases: []normalize.Raw{
			{"id": "c-1", "clientId": "cl-1", "caseNumber": "CV-42"},
		},
		Serves: []normalize.Raw{
			{"$id": "s-1", "case_id": "c-1", "serve_status": "served"},
			{"id": "s-bad", "caseId": "c-1"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ImportStats{Total: 2, Imported: 1, Skipped: 1}, stats.Clients)
	assert.Equal(t, ImportStats{Total: 1, Imported: 1}, stats.Cases)
	assert.Equal(t, ImportStats{Total: 2, Imported: 1, Failed: 1}, stats.Serves)
	assert.Equal(t, 1, stats.Failed())

	require.Len(t, rs.clients, 1)
	assert.Equal(t, "Acme Law", rs.clients[0].Name)
	require.Len(t, rs.cases, 1)
	assert.Equal(t, model.CaseStatusOpen, rs.cases[0].Status)
	require.Len(t, rs.serves, 1)
	assert.Equal(t, "cl-1", rs.serves[0].ClientID, "client id is taken from the imported case")
	assert.Equal(t, model.ServeStatusCompleted, rs.serves[0].Status)
}

func TestImporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestImporter(&recordingStore{}).Import(ctx, &Bundle{
		Clients: []normalize.Raw{{"id": "cl-1"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadBundle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clients":[{"$id":"cl-1"}],"serves":[{"id":"s-1"},{"id":"s-2"}]}`), 0o644))

	b, err := ReadBundle(path)
	require.NoError(t, err)
	assert.Len(t, b.Clients, 1)
	assert.Empty(t, b.Cases)
	assert.Len(t, b.Serves, 2)

	require.NoError(t, os.WriteFile(path, []byte(`{"clients":`), 0o644))
	_, err = ReadBundle(path)
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, &BundleStats{Serves: ImportStats{Total: 3, Imported: 2, Failed: 1}})

	out := buf.String()
	assert.Contains(t, out, "=== Import Summary ===")
	assert.Regexp(t, `Serves\s+3\s+2\s+0\s+1`, out)
}
