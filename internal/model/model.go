package model

import "time"

// Contact is a contact form submission as it is persisted in the store.
// Id and Date are assigned by the store when the contact is created; the
// text fields are validated and normalized before that.
type Contact struct {
	Id      string    `json:"id"      db:"id"`
	Name    string    `json:"name"    db:"name"    validate:"required"`
	Email   string    `json:"email"   db:"email"   validate:"required"`
	Subject string    `json:"subject" db:"subject" validate:"required"`
	Message string    `json:"message" db:"message" validate:"required"`
	Date    time.Time `json:"date"    db:"date"`
}

// Draft holds the normalized text fields of a contact that has not been
// saved yet.
type Draft struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Contact turns the draft into a contact carrying the given id and date.
func (d Draft) Contact(id string, date time.Time) Contact {
	return Contact{
		Id:      id,
		Name:    d.Name,
		Email:   d.Email,
		Subject: d.Subject,
		Message: d.Message,
		Date:    date,
	}
}
