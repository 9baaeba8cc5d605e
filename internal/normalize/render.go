package normalize

import (
	"time"

	"github.com/jjenkins/servetrack/internal/model"
)

// ClientRaw renders a client under canonical keys
func ClientRaw(c model.Client) Raw {
	raw := Raw{
		KeyID:      c.ID,
		KeyName:    c.Name,
		KeyEmail:   c.Email,
		KeyPhone:   c.Phone,
		KeyAddress: c.Address,
	}
	putTime(raw, KeyCreatedAt, c.CreatedAt)
	putTime(raw, KeyUpdatedAt, c.UpdatedAt)
	return raw
}

// CaseRaw renders a case under canonical keys
func CaseRaw(c model.Case) Raw {
	raw := Raw{
		KeyID:          c.ID,
		KeyClientID:    c.ClientID,
		KeyCaseNumber:  c.CaseNumber,
		KeyCaseName:    c.CaseName,
		KeyCourtName:   c.CourtName,
		KeyPlaintiff:   c.Plaintiff,
		KeyDefendant:   c.Defendant,
		KeyServeeName:  c.ServeeName,
		KeyHomeAddress: c.HomeAddress,
		KeyWorkAddress: c.WorkAddress,
		KeyStatus:      c.Status,
	}
	putTime(raw, KeyCreatedAt, c.CreatedAt)
	putTime(raw, KeyUpdatedAt, c.UpdatedAt)
	return raw
}

// ServeRaw renders a serve attempt under canonical keys
func ServeRaw(s model.Serve) Raw {
	raw := Raw{
		KeyID:          s.ID,
		KeyCaseID:      s.CaseID,
		KeyClientID:    s.ClientID,
		KeyStatus:      s.Status,
		KeyNotes:       s.Notes,
		KeyDescription: s.Description,
		KeyServiceAddr: s.ServiceAddress,
		KeyImageURL:    s.ImageURL,
	}
	putTime(raw, KeyTimestamp, s.Timestamp)
	putTime(raw, KeyCreatedAt, s.CreatedAt)
	if !s.Physical.IsZero() {
		raw[KeyPhysical] = map[string]any{
			"sex":    s.Physical.Sex,
			"age":    s.Physical.Age,
			"height": s.Physical.Height,
			"weight": s.Physical.Weight,
			"hair":   s.Physical.Hair,
			"skin":   s.Physical.Skin,
			"other":  s.Physical.Other,
		}
	}
	if s.Location != nil {
		raw[KeyLatitude] = s.Location.Latitude
		raw[KeyLongitude] = s.Location.Longitude
		raw[KeyAccuracy] = s.Location.Accuracy
	}
	return raw
}

func putTime(raw Raw, key string, t time.Time) {
	if !t.IsZero() {
		raw[key] = t.UTC().Format(time.RFC3339Nano)
	}
}
