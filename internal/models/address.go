package models

import "gorm.io/gorm"

// Address is a stored address in a user's address book.
type Address struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string `json:"user_id" gorm:"index;type:varchar(36)"`
	Label      string `json:"label" validate:"omitempty,max=50"`
	Recipient  string `json:"recipient" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Line1      string `json:"line1" validate:"required,max=255"`
	Line2      string `json:"line2" validate:"omitempty,max=255"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// AddressSnapshot is the copy of an address embedded into an order at
// creation time. Later edits to the address book never touch it.
type AddressSnapshot struct {
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Snapshot copies the address into an order-embeddable value.
func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Recipient:  a.Recipient,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
