package affidavit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jjenkins/servetrack/internal/model"
	"github.com/jjenkins/servetrack/internal/normalize"
)

// ErrEmptyInput is returned when no affidavit value could be resolved
var ErrEmptyInput = errors.New("nothing to put on the affidavit")

// Pipeline stages, used for failure metrics
const (
	StageResolve = "resolve"
	StageLoad    = "load"
	StageEmit    = "emit"
)

// Recorder receives pipeline metrics
type Recorder interface {
	Generated()
	Failed(stage string)
	Fields(outcome string, n int)
}

type nopRecorder struct{}

func (nopRecorder) Generated()         {}
func (nopRecorder) Failed(string)      {}
func (nopRecorder) Fields(string, int) {}

// Request is everything one affidavit is generated from
type Request struct {
	Client model.Client
	Case   *model.Case
	Serves []model.Serve
	// ServiceAddress overrides every recorded address when set
	ServiceAddress string
}

// Result is a generated affidavit
type Result struct {
	PDF      []byte
	Filename string
	Input    Input
	Report   *FillReport
}

// Generator runs resolve -> load -> fill -> emit. Each call opens its own copy of
// the template, so calls share no state.
type Generator struct {
	source   TemplateSource
	location string
	filler   *Filler
	zone     *time.Location
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithTimeZone sets the zone dates and times are written in
func WithTimeZone(loc *time.Location) Option {
	return func(g *Generator) { g.zone = loc }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithClock overrides time.Now, used for the filename date
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator reading the template at location from source
func NewGenerator(source TemplateSource, location string, filler *Filler, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filler == nil {
		filler = NewFiller(nil, logger)
	}
	g := &Generator{
		source:   source,
		location: location,
		filler:   filler,
		zone:     time.Local,
		logger:   logger,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces one affidavit. Any stage failure aborts the rest; a
// partially filled form is not a failure.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	in := Resolve(req.Client, req.Case, req.Serves, ResolveOptions{
		ServiceAddress: req.ServiceAddress,
		Location:       g.zone,
	})
	if in.IsEmpty() {
		g.recorder.Failed(StageResolve)
		return nil, ErrEmptyInput
	}

	doc, err := g.source.Open(ctx, g.location)
	if err != nil {
		g.recorder.Failed(StageLoad)
		return nil, fmt.Errorf("failed to load affidavit template: %w", err)
	}

	report := g.filler.Fill(doc, in)
	g.recorder.Fields(OutcomeFilled, len(report.Filled))
	g.recorder.Fields(OutcomeMissing, len(report.Missing))
	g.recorder.Fields(OutcomeSkipped, len(report.Skipped))

	data, err := Emit(doc)
	if err != nil {
		g.recorder.Failed(StageEmit)
		return nil, err
	}

	g.recorder.Generated()
	g.logger.Info("affidavit generated",
		zap.String("case_number", in.CaseNumber),
		zap.Int("attempts", len(in.Attempts)),
		zap.Int("filled", len(report.Filled)),
		zap.Strings("missing", report.Missing),
		zap.Int("bytes", len(data)))

	return &Result{
		PDF:      data,
		Filename: Filename(in.CaseNumber, g.now().In(g.zone)),
		Input:    in,
		Report:   report,
	}, nil
}

// RawRequest is a Request whose records have not been normalized yet
type RawRequest struct {
	Client         normalize.Raw
	Case           normalize.Raw
	Serves         []normalize.Raw
	ServiceAddress string
}

// GenerateRaw normalizes the records first. Serve records without an
// identifier are dropped by n.
func (g *Generator) GenerateRaw(ctx context.Context, n *normalize.Normalizer, req RawRequest) (*Result, error) {
	r := Request{
		Client:         normalize.Client(req.Client),
		Serves:         n.Serves(req.Serves),
		ServiceAddress: req.ServiceAddress,
	}
	if req.Case != nil {
		c := normalize.Case(req.Case)
		r.Case = &c
	}
	return g.Generate(ctx, r)
}
