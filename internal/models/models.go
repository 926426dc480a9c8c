package models

import "time"

// Coordinates is a geographic point in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hub represents a delivery hub an applicant can be assigned to. Identity is
// ID; a hub list returned by a source is an immutable snapshot and is never
// mutated after the load.
type Hub struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	City        string      `json:"city,omitempty"`
	State       string      `json:"state,omitempty"`
	PostalCode  string      `json:"postal_code,omitempty"`
	Country     string      `json:"country,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Region      string      `json:"region,omitempty"`
	Type        string      `json:"type,omitempty"`
	Active      bool        `json:"active"`
}

// HubStats summarizes the hub inventory, counting hubs before the active
// filter is applied.
type HubStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// MatchRequest is one applicant submission to be matched against the hub list.
type MatchRequest struct {
	Address       string `json:"address" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`
}

// MatchResult is the outcome of one successful match. Immutable after
// construction; the service does not persist it.
type MatchResult struct {
	InputAddress        string      `json:"input_address"`
	GeocodedAddress     string      `json:"geocoded_address"`
	GeocodedCoordinates Coordinates `json:"geocoded_coordinates"`
	MatchedHub          Hub         `json:"matched_hub"`
	DistanceKm          float64     `json:"distance_km"`
	DistanceMiles       float64     `json:"distance_miles"`
	ProcessingTimeMs    float64     `json:"processing_time_ms"`
	Timestamp           time.Time   `json:"timestamp"`
}

// BatchOutcome is the per-item result of a batch match. Exactly one of Result
// or Error is set. Index is the position of the request in the input slice.
type BatchOutcome struct {
	Index  int          `json:"index"`
	Result *MatchResult `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
	Kind   string       `json:"error_kind,omitempty"`
}

// TypeformWebhook is the payload Typeform sends on form submission. Only the
// answer fields the matcher needs are modeled; the rest of the form response
// is kept as raw maps.
type TypeformWebhook struct {
	EventID      string               `json:"event_id"`
	EventType    string               `json:"event_type"`
	FormResponse TypeformFormResponse `json:"form_response"`
}

type TypeformFormResponse struct {
	FormID      string           `json:"form_id"`
	Token       string           `json:"token"`
	SubmittedAt string           `json:"submitted_at"`
	Answers     []TypeformAnswer `json:"answers"`
}

type TypeformAnswer struct {
	Field       TypeformField `json:"field"`
	Text        string        `json:"text,omitempty"`
	Email       string        `json:"email,omitempty"`
	PhoneNumber string        `json:"phone_number,omitempty"`
}

type TypeformField struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}
