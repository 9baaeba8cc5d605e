package affidavit

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Logical values placed on the affidavit
const (
	FieldCaseNumber     = "case_number"
	FieldCourtName      = "court_name"
	FieldCaseName       = "case_name"
	FieldPlaintiff      = "plaintiff"
	FieldDefendant      = "defendant"
	FieldServedParty    = "served_party"
	FieldServiceAddress = "service_address"
	FieldCityState      = "city_state"
	FieldServiceDate    = "service_date"
	FieldServiceTime    = "service_time"
	FieldNotes          = "notes"
	FieldClientName     = "client_name"
	FieldClientAddress  = "client_address"
	FieldSex            = "sex"
	FieldAge            = "age"
	FieldHeight         = "height"
	FieldWeight         = "weight"
	FieldHair           = "hair"
	FieldSkin           = "skin"
	FieldOtherFeatures  = "other_features"
	FieldGPS            = "gps"

	CheckResidence  = "residence"
	CheckBusiness   = "business"
	CheckNonService = "non_service"
)

// MaxAttemptFields is how many attempts get their own date/time fields
const MaxAttemptFields = 5

// AttemptDateKey returns the logical key for attempt n's date (1-based)
func AttemptDateKey(n int) string { return fmt.Sprintf("attempt_%d_date", n) }

// AttemptTimeKey returns the logical key for attempt n's time (1-based)
func AttemptTimeKey(n int) string { return fmt.Sprintf("attempt_%d_time", n) }

//go:embed fieldnames.yaml
var defaultFieldNames []byte

// FieldMap maps a logical key to its candidate form field names, in priority order
type FieldMap map[string][]string

// Candidates returns the candidates for key
func (m FieldMap) Candidates(key string) []string {
	return m[key]
}

// DefaultFieldMap returns the built-in candidate table, including per-attempt
// date/time candidates.
func DefaultFieldMap() FieldMap {
	m, err := ParseFieldMap(defaultFieldNames)
	if err != nil {
		panic(fmt.Sprintf("affidavit: embedded field map: %v", err))
	}
	for n := 1; n <= MaxAttemptFields; n++ {
		m[AttemptDateKey(n)] = []string{
			fmt.Sprintf("Attempt %d Date", n),
			fmt.Sprintf("Date of Attempt %d", n),
			fmt.Sprintf("Attempt Date %d", n),
			fmt.Sprintf("Date%d", n),
		}
		m[AttemptTimeKey(n)] = []string{
			fmt.Sprintf("Attempt %d Time", n),
			fmt.Sprintf("Time of Attempt %d", n),
			fmt.Sprintf("Attempt Time %d", n),
			fmt.Sprintf("Time%d", n),
		}
	}
	return m
}

// ParseFieldMap decodes a YAML candidate table
func ParseFieldMap(data []byte) (FieldMap, error) {
	m := FieldMap{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse field map: %w", err)
	}
	return m, nil
}

// LoadFieldMap returns the default table with keys from the YAML file at path
// replacing the defaults. An empty path returns the defaults.
func LoadFieldMap(path string) (FieldMap, error) {
	m := DefaultFieldMap()
	if path == "" {
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field map %s: %w", path, err)
	}
	override, err := ParseFieldMap(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for key, candidates := range override {
		m[key] = candidates
	}
	return m, nil
}

// Match reports, per logical key, the first candidate found among names
func (m FieldMap) Match(names []string) map[string]string {
	idx := newFieldIndex(nameList(names))
	out := make(map[string]string)
	for key, candidates := range m {
		for _, c := range candidates {
			if field, ok := idx.lookup(c); ok {
				out[key] = field
				break
			}
		}
	}
	return out
}

// nameList is a read-only Document made of field names alone
type nameList []string

func (n nameList) FieldNames() []string { return n }

func (n nameList) HasField(name string) bool {
	for _, v := range n {
		if v == name {
			return true
		}
	}
	return false
}

func (nameList) SetText(string, string) error   { return ErrFieldNotFound }
func (nameList) SetCheckbox(string, bool) error { return ErrFieldNotFound }
func (nameList) Bytes() ([]byte, error)         { return nil, ErrFieldNotFound }
