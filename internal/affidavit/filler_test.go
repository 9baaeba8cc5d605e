package affidavit

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jjenkins/servetrack/internal/model"
)

// memDocument is an in-memory Document with a fixed field set
type memDocument struct {
	text       map[string]string
	checks     map[string]bool
	checkboxes map[string]bool
	bytesErr   error
}

func newMemDocument(textFields []string, checkboxes ...string) *memDocument {
	d := &memDocument{
		text:       make(map[string]string),
		checks:     make(map[string]bool),
		checkboxes: make(map[string]bool),
	}
	for _, f := range textFields {
		d.text[f] = ""
	}
	for _, f := range checkboxes {
		d.checkboxes[f] = true
	}
	return d
}

func (d *memDocument) FieldNames() []string {
	var names []string
	for n := range d.text {
		names = append(names, n)
	}
	for n := range d.checkboxes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *memDocument) HasField(name string) bool {
	_, text := d.text[name]
	return text || d.checkboxes[name]
}

func (d *memDocument) SetText(name, value string) error {
	if _, ok := d.text[name]; !ok {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	d.text[name] = value
	return nil
}

func (d *memDocument) SetCheckbox(name string, checked bool) error {
	if !d.checkboxes[name] {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	d.checks[name] = checked
	return nil
}

func (d *memDocument) Bytes() ([]byte, error) {
	if d.bytesErr != nil {
		return nil, d.bytesErr
	}
	var b strings.Builder
	b.WriteString("%PDF-memory\n")
	for _, name := range d.FieldNames() {
		fmt.Fprintf(&b, "%s=%s\n", name, d.text[name])
	}
	return []byte(b.String()), nil
}

func fullInput() Input {
	return Resolve(
		model.Client{Name: "Acme Law", Address: "123 Main St"},
		&model.Case{CaseNumber: "CV-42", CaseName: "Smith v. Jones", CourtName: "Superior Court", WorkAddress: "456 Work Ave"},
		[]model.Serve{{
			ID:             "s1",
			Timestamp:      time.Date(2024, 5, 6, 13, 45, 0, 0, time.UTC),
			Status:         model.ServeStatusCompleted,
			Notes:          "Handed to defendant",
			ServiceAddress: "456 Work Ave, Springfield, IL",
		}},
		ResolveOptions{Location: time.UTC},
	)
}

func TestFiller_FirstExistingCandidateWins(t *testing.T) {
	fields := FieldMap{
		FieldCaseNumber: {"Case Number", "CaseNumber", "Case No"},
		FieldCourtName:  {"Court Name"},
	}
	doc := newMemDocument([]string{"CaseNumber", "Case No"})

	report := NewFiller(fields, nil).Fill(doc, fullInput())

	assert.Equal(t, "CV-42", doc.text["CaseNumber"])
	assert.Equal(t, "", doc.text["Case No"])
	assert.Equal(t, "CaseNumber", report.Filled[FieldCaseNumber])
	assert.Contains(t, report.Missing, FieldCourtName)
}

func TestFiller_LooseNameMatch(t *testing.T) {
	fields := FieldMap{FieldCaseNumber: {"Case No."}}
	doc := newMemDocument([]string{"CASE_NO"})

	report := NewFiller(fields, nil).Fill(doc, fullInput())

	assert.Equal(t, "CV-42", doc.text["CASE_NO"])
	assert.Equal(t, "CASE_NO", report.Filled[FieldCaseNumber])
}

func TestFiller_FieldUsedOnce(t *testing.T) {
	fields := FieldMap{
		FieldServiceDate:  {"Date"},
		AttemptDateKey(1): {"Date", "Attempt 1 Date"},
	}
	doc := newMemDocument([]string{"Date", "Attempt 1 Date"})

	NewFiller(fields, nil).Fill(doc, fullInput())

	assert.Equal(t, "05/06/2024", doc.text["Date"])
	assert.Equal(t, "05/06/2024", doc.text["Attempt 1 Date"])
}

func TestFiller_SkipsPlaceholders(t *testing.T) {
	in := fullInput()
	in.CourtName = "Not specified"
	in.Plaintiff = " n/a "
	in.Defendant = "   "
	fields := FieldMap{
		FieldCourtName: {"Court"},
		FieldPlaintiff: {"Plaintiff"},
		FieldDefendant: {"Defendant"},
	}
	doc := newMemDocument([]string{"Court", "Plaintiff", "Defendant"})

	report := NewFiller(fields, nil).Fill(doc, in)

	assert.Equal(t, "", doc.text["Court"])
	assert.Equal(t, "", doc.text["Plaintiff"])
	assert.Equal(t, "", doc.text["Defendant"])
	assert.Subset(t, report.Skipped, []string{FieldCourtName, FieldPlaintiff, FieldDefendant})
	assert.NotContains(t, report.Missing, FieldCourtName)
}

func TestFiller_Checkboxes(t *testing.T) {
	doc := newMemDocument(nil, "Business", "Residence")

	report := NewFiller(nil, nil).Fill(doc, fullInput())

	assert.True(t, doc.checks["Business"])
	assert.False(t, doc.checks["Residence"])
	assert.Equal(t, "Business", report.Filled[CheckBusiness])
}

func TestFiller_MissingCheckboxIsNoop(t *testing.T) {
	doc := newMemDocument([]string{"Case Number"})

	report := NewFiller(nil, nil).Fill(doc, fullInput())

	assert.Contains(t, report.Missing, CheckBusiness)
	assert.Empty(t, doc.checks)
}

func TestFiller_TextCandidateThatIsACheckboxFallsThrough(t *testing.T) {
	fields := FieldMap{FieldNotes: {"Notes", "Comments"}}
	doc := newMemDocument([]string{"Comments"}, "Notes")

	report := NewFiller(fields, nil).Fill(doc, fullInput())

	assert.Equal(t, "Handed to defendant", doc.text["Comments"])
	assert.Equal(t, "Comments", report.Filled[FieldNotes])
}

func TestFiller_NoCandidatesExist(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	full := newMemDocument(allCandidateNames(DefaultFieldMap()))
	none := newMemDocument([]string{"Unrelated Field"})

	filler := NewFiller(nil, zap.New(core))
	fullReport := filler.Fill(full, fullInput())
	noneReport := filler.Fill(none, fullInput())

	assert.NotEmpty(t, fullReport.Filled)
	assert.Empty(t, noneReport.Filled)
	assert.NotEmpty(t, noneReport.Missing)
	assert.NotZero(t, logs.FilterMessage("no form field for value").Len())

	fullBytes, err := Emit(full)
	require.NoError(t, err)
	noneBytes, err := Emit(none)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(fullBytes), "%PDF"))
	assert.True(t, strings.HasPrefix(string(noneBytes), "%PDF"))
}

func TestIsPlaceholder(t *testing.T) {
	for _, v := range []string{"", "   ", "Not specified", "NOT SPECIFIED", "N/A", " n/a"} {
		assert.True(t, IsPlaceholder(v), "%q", v)
	}
	for _, v := range []string{"NA County", "Not served", "0"} {
		assert.False(t, IsPlaceholder(v), "%q", v)
	}
}

func TestDefaultFieldMap(t *testing.T) {
	m := DefaultFieldMap()

	for _, key := range []string{FieldCaseNumber, FieldServiceAddress, FieldNotes, CheckResidence, CheckBusiness} {
		assert.NotEmpty(t, m.Candidates(key), key)
	}
	assert.Equal(t, "Case Number", m.Candidates(FieldCaseNumber)[0])
	for n := 1; n <= MaxAttemptFields; n++ {
		assert.NotEmpty(t, m.Candidates(AttemptDateKey(n)))
		assert.NotEmpty(t, m.Candidates(AttemptTimeKey(n)))
	}
	assert.Empty(t, m.Candidates(AttemptDateKey(MaxAttemptFields+1)))
}

func TestLoadFieldMap_Override(t *testing.T) {
	path := t.TempDir() + "/fields.yaml"
	require.NoError(t, os.WriteFile(path, []byte("case_number:\n  - Docket\n  - Docket Number\n"), 0o644))

	m, err := LoadFieldMap(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Docket", "Docket Number"}, m.Candidates(FieldCaseNumber))
	assert.NotEmpty(t, m.Candidates(FieldCourtName))

	_, err = LoadFieldMap(t.TempDir() + "/missing.yaml")
	assert.Error(t, err)
}

func TestEmit_Failure(t *testing.T) {
	doc := newMemDocument(nil)
	doc.bytesErr = errors.New("xref table broken")

	_, err := Emit(doc)

	var emitErr *EmitError
	require.ErrorAs(t, err, &emitErr)
	assert.Contains(t, err.Error(), "xref table broken")
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 7, 9, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "affidavit-CV-42-2024-07-09.pdf", Filename("CV-42", now))
	assert.Equal(t, "affidavit-2024-CV-001-2024-07-09.pdf", Filename(" 2024/CV 001 ", now))
	assert.Equal(t, "affidavit-case-2024-07-09.pdf", Filename("", now))
	assert.Equal(t, "affidavit-case-2024-07-09.pdf", Filename("***", now))
}

func allCandidateNames(m FieldMap) []string {
	seen := map[string]bool{}
	var names []string
	for key, candidates := range m {
		if key == CheckResidence || key == CheckBusiness || key == CheckNonService {
			continue
		}
		for _, c := range candidates {
			if !seen[c] {
				seen[c] = true
				names = append(names, c)
			}
		}
	}
	return names
}

func TestFieldMap_Match(t *testing.T) {
	m := FieldMap{
		FieldCaseNumber: {"Case Number", "Case No"},
		FieldCourtName:  {"Court"},
		FieldNotes:      {"Remarks", "NOTES"},
	}
	assert.Equal(t, map[string]string{
		FieldCaseNumber: "Case No",
		FieldNotes:      "Notes",
	}, m.Match([]string{"Case No", "Notes"}))
}
