// Package model defines the JSON documents exchanged with the contact form
// service. Clients can use these types to build requests and decode responses.
package model

import "time"

// TimestampLayout is the format of every timestamp in a response. The
// fraction always has three digits.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a point in time rendered in UTC with TimestampLayout.
// Decoding accepts any RFC 3339 time.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, len(TimestampLayout)+2)
	b = append(b, '"')
	b = t.UTC().AppendFormat(b, TimestampLayout)
	return append(b, '"'), nil
}

// SubmitRequest is the body of POST /submit-contact. It may be sent as JSON
// or as an urlencoded form.
type SubmitRequest struct {
	Name    string `json:"name"    form:"name"`
	Email   string `json:"email"   form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// Contact is a stored contact form submission.
type Contact struct {
	Id      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Date    Timestamp `json:"date"`
}

// SubmittedContact is the short form of a contact returned right after it
// was saved.
type SubmittedContact struct {
	Id   string    `json:"id"`
	Name string    `json:"name"`
	Date Timestamp `json:"date"`
}

// Submitted is the response of a successful POST /submit-contact.
type Submitted struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    SubmittedContact `json:"data"`
}

// ContactList is the response of GET /contacts.
type ContactList struct {
	Success bool      `json:"success"`
	Count   int       `json:"count"`
	Data    []Contact `json:"data"`
}

// ContactResult is the response of GET /contacts/:id.
type ContactResult struct {
	Success bool    `json:"success"`
	Data    Contact `json:"data"`
}

// Failure is the body of every error response. Errors lists one message per
// violated rule and is only present for validation failures.
type Failure struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// Health is the response of GET /health.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

// Index is the response of GET /.
type Index struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}
