package models

import "time"

// Desk is the persisted record for one bookable desk.
//
// ID is the storage key and is never written as a payload field; every
// backend stores it only as the record identity. When Booked is false,
// UserEmail is empty and SignOutTime closes the last occupancy interval
// (nil if the desk was never booked). When Booked is true, UserEmail and
// SignInTime are set and SignOutTime is nil.
type Desk struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Booked      bool       `json:"booked" yaml:"booked"`
	UserEmail   string     `json:"user_email,omitempty" yaml:"user_email,omitempty"`
	SignInTime  *time.Time `json:"sign_in_time,omitempty" yaml:"sign_in_time,omitempty"`
	SignOutTime *time.Time `json:"sign_out_time,omitempty" yaml:"sign_out_time,omitempty"`
	HotDesk     bool       `json:"hotdesk" yaml:"hotdesk"`
}

// Occupied reports whether the desk is currently booked.
func (d Desk) Occupied() bool {
	return d.Booked
}

// BookingNotice is the payload sent to the notification collaborator after
// a successful booking.
type BookingNotice struct {
	DeskID     string   `json:"desk_id"`
	DeskName   string   `json:"desk_name"`
	UserEmail  string   `json:"user_email"`
	Recipients []string `json:"recipient_emails"`
}
