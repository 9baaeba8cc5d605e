package model

import "time"

// Serve attempt outcomes
const (
	ServeStatusCompleted = "completed"
	ServeStatusFailed    = "failed"
)

// Serve represents one attempt to deliver documents for a case
type Serve struct {
	ID       string
	CaseID   string
	ClientID string
	// Timestamp is when the attempt happened; CreatedAt is when it was recorded
	Timestamp      time.Time
	CreatedAt      time.Time
	Status         string
	Notes          string
	Description    string
	ServiceAddress string
	Physical       *PhysicalDescription
	ImageURL       string
	Location       *GeoPoint
}

// Completed reports whether the attempt resulted in service
func (s Serve) Completed() bool {
	return s.Status == ServeStatusCompleted
}

// SortTime returns the time used to order attempts chronologically
func (s Serve) SortTime() time.Time {
	if !s.Timestamp.IsZero() {
		return s.Timestamp
	}
	return s.CreatedAt
}

// PhysicalDescription captures what the server observed about the person served
type PhysicalDescription struct {
	Sex    string `json:"sex,omitempty"`
	Age    string `json:"age,omitempty"`
	Height string `json:"height,omitempty"`
	Weight string `json:"weight,omitempty"`
	Hair   string `json:"hair,omitempty"`
	Skin   string `json:"skin,omitempty"`
	Other  string `json:"other,omitempty"`
}

// IsZero reports whether no attribute was recorded
func (p *PhysicalDescription) IsZero() bool {
	return p == nil || *p == PhysicalDescription{}
}

// GeoPoint is the GPS fix captured with an attempt
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}
