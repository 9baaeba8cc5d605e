package affidavit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jjenkins/servetrack/internal/model"
)

// Date and time layouts written onto the form
const (
	DateLayout = "01/02/2006"
	TimeLayout = "3:04 PM"
)

// ServiceType is the residence/business classification of the service address
type ServiceType string

const (
	ServiceUnknown   ServiceType = ""
	ServiceResidence ServiceType = "residence"
	ServiceBusiness  ServiceType = "business"
)

var businessKeywords = []string{"work", "office", "business", "corp", "llc", "inc"}

// ResolveOptions carries caller-supplied overrides
type ResolveOptions struct {
	// ServiceAddress, when set, wins over every recorded address
	ServiceAddress string
	// Location is the time zone for dates and times; nil means time.Local
	Location *time.Location
}

// Attempt is one serve attempt with its formatted date and time
type Attempt struct {
	Serve model.Serve
	Date  string
	Time  string
}

// Input is the reconciled view of one affidavit
type Input struct {
	ClientName    string
	ClientAddress string

	CaseNumber string
	CaseName   string
	CourtName  string
	Plaintiff  string
	Defendant  string

	ServedParty    string
	ServiceAddress string
	ServiceType    ServiceType
	CityState      string

	// Attempts are in chronological order
	Attempts []Attempt
	// Primary is the attempt used for the main date/time fields
	Primary     *model.Serve
	Served      bool
	ServiceDate string
	ServiceTime string

	Notes    string
	Physical model.PhysicalDescription
	GPS      string
}

// IsEmpty reports whether nothing at all could be resolved
func (in Input) IsEmpty() bool {
	for _, v := range in.TextValues() {
		if strings.TrimSpace(v.Value) != "" {
			return false
		}
	}
	return len(in.Attempts) == 0
}

// Value is one logical text value
type Value struct {
	Key   string
	Value string
}

// TextValues lists every text value in fill order
func (in Input) TextValues() []Value {
	values := []Value{
		{FieldCaseNumber, in.CaseNumber},
		{FieldCourtName, in.CourtName},
		{FieldCaseName, in.CaseName},
		{FieldPlaintiff, in.Plaintiff},
		{FieldDefendant, in.Defendant},
		{FieldServedParty, in.ServedParty},
		{FieldServiceAddress, in.ServiceAddress},
		{FieldCityState, in.CityState},
		{FieldServiceDate, in.ServiceDate},
		{FieldServiceTime, in.ServiceTime},
		{FieldClientName, in.ClientName},
		{FieldClientAddress, in.ClientAddress},
		{FieldSex, in.Physical.Sex},
		{FieldAge, in.Physical.Age},
		{FieldHeight, in.Physical.Height},
		{FieldWeight, in.Physical.Weight},
		{FieldHair, in.Physical.Hair},
		{FieldSkin, in.Physical.Skin},
		{FieldOtherFeatures, in.Physical.Other},
		{FieldGPS, in.GPS},
	}
	for i, a := range in.Attempts {
		if i >= MaxAttemptFields {
			break
		}
		values = append(values,
			Value{AttemptDateKey(i + 1), a.Date},
			Value{AttemptTimeKey(i + 1), a.Time},
		)
	}
	return append(values, Value{FieldNotes, in.Notes})
}

// Checks lists the checkboxes to tick
func (in Input) Checks() []string {
	var checks []string
	switch in.ServiceType {
	case ServiceResidence:
		checks = append(checks, CheckResidence)
	case ServiceBusiness:
		checks = append(checks, CheckBusiness)
	}
	if in.Primary != nil && !in.Served {
		checks = append(checks, CheckNonService)
	}
	return checks
}

// Resolve derives the affidavit values from a client, its case and the case's
// serve attempts. It never fails; anything missing is left empty.
func Resolve(client model.Client, c *model.Case, serves []model.Serve, opts ResolveOptions) Input {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	in := Input{
		ClientName:    strings.TrimSpace(client.Name),
		ClientAddress: strings.TrimSpace(client.Address),
	}

	var kase model.Case
	if c != nil {
		kase = *c
	}
	in.CaseNumber = strings.TrimSpace(kase.CaseNumber)
	in.CaseName = strings.TrimSpace(kase.CaseName)
	in.CourtName = strings.TrimSpace(kase.CourtName)
	in.Plaintiff = strings.TrimSpace(kase.Plaintiff)
	in.Defendant = strings.TrimSpace(kase.Defendant)
	in.ServedParty = firstNonEmpty(kase.ServeeName, kase.CaseName)

	sorted := SortAttempts(serves)
	in.Attempts = make([]Attempt, len(sorted))
	for i, s := range sorted {
		in.Attempts[i] = Attempt{Serve: s, Date: formatDate(s.SortTime(), loc), Time: formatTime(s.SortTime(), loc)}
	}

	in.Primary = PrimaryAttempt(sorted)
	var primaryAddress string
	if in.Primary != nil {
		in.Served = in.Primary.Completed()
		in.ServiceDate = formatDate(in.Primary.SortTime(), loc)
		in.ServiceTime = formatTime(in.Primary.SortTime(), loc)
		primaryAddress = in.Primary.ServiceAddress
		if in.Primary.Physical != nil {
			in.Physical = trimPhysical(*in.Primary.Physical)
		}
		if g := in.Primary.Location; g != nil {
			in.GPS = fmt.Sprintf("%.6f, %.6f", g.Latitude, g.Longitude)
		}
	}

	in.ServiceAddress = firstNonEmpty(opts.ServiceAddress, primaryAddress, kase.HomeAddress, kase.WorkAddress, client.Address)
	if in.ServiceAddress != "" {
		in.ServiceType = Classify(in.ServiceAddress, kase.HomeAddress, kase.WorkAddress)
		in.CityState = CityState(in.ServiceAddress)
	}

	in.Notes = AggregateNotes(sorted)
	return in
}

// SortAttempts returns the attempts ordered by Timestamp, falling back to
// CreatedAt; attempts with neither sort first. Input order breaks ties.
func SortAttempts(serves []model.Serve) []model.Serve {
	sorted := make([]model.Serve, len(serves))
	copy(sorted, serves)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortTime().Before(sorted[j].SortTime())
	})
	return sorted
}

// PrimaryAttempt picks the chronologically last completed attempt, or the last
// attempt of any status when none completed. sorted must be chronological.
func PrimaryAttempt(sorted []model.Serve) *model.Serve {
	if len(sorted) == 0 {
		return nil
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Completed() {
			s := sorted[i]
			return &s
		}
	}
	s := sorted[len(sorted)-1]
	return &s
}

// Classify decides residence vs business for a resolved address. A match on the
// case's work address wins over a match on its home address, which wins over
// keywords.
func Classify(address, homeAddress, workAddress string) ServiceType {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return ServiceUnknown
	}
	if work := strings.ToLower(strings.TrimSpace(workAddress)); work != "" && strings.Contains(addr, work) {
		return ServiceBusiness
	}
	if home := strings.ToLower(strings.TrimSpace(homeAddress)); home != "" && strings.Contains(addr, home) {
		return ServiceResidence
	}
	if hasBusinessKeyword(addr) {
		return ServiceBusiness
	}
	return ServiceResidence
}

// hasBusinessKeyword reports whether addr contains a keyword anywhere, so
// "Acme Corporation" and "Workman Rd" both count. addr must already be lowercase.
func hasBusinessKeyword(addr string) bool {
	for _, k := range businessKeywords {
		if strings.Contains(addr, k) {
			return true
		}
	}
	return false
}

// CityState returns "City, State" from the last two comma-separated segments of
// address, or "" when there are fewer than two.
func CityState(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}
	city := strings.TrimSpace(parts[len(parts)-2])
	state := strings.TrimSpace(parts[len(parts)-1])
	if city == "" || state == "" {
		return ""
	}
	return city + ", " + state
}

// AggregateNotes joins each attempt's notes (or description) in order. Entries
// are labelled "Attempt N: " only when more than one attempt contributes.
func AggregateNotes(sorted []model.Serve) string {
	type entry struct {
		n    int
		text string
	}
	var entries []entry
	for i, s := range sorted {
		text := firstNonEmpty(s.Notes, s.Description)
		if text != "" {
			entries = append(entries, entry{n: i + 1, text: text})
		}
	}

	if len(entries) == 1 {
		return entries[0].text
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = fmt.Sprintf("Attempt %d: %s", e.n, e.text)
	}
	return strings.Join(parts, "\n\n")
}

func trimPhysical(p model.PhysicalDescription) model.PhysicalDescription {
	return model.PhysicalDescription{
		Sex:    strings.TrimSpace(p.Sex),
		Age:    strings.TrimSpace(p.Age),
		Height: strings.TrimSpace(p.Height),
		Weight: strings.TrimSpace(p.Weight),
		Hair:   strings.TrimSpace(p.Hair),
		Skin:   strings.TrimSpace(p.Skin),
		Other:  strings.TrimSpace(p.Other),
	}
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DateLayout)
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
