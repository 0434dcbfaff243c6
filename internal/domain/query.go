package domain

import "time"

// QueryMessage is a submitted contact-form entry. It has no link to an Account.
type QueryMessage struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// QueryInput carries the fields of a new submission.
type QueryInput struct {
	Name    string
	Email   string
	Message string
}

// QueryPatch is a partial update. Nil fields are left untouched.
type QueryPatch struct {
	Name    *string
	Email   *string
	Message *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p QueryPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Message == nil
}

// Overview is the dashboard payload. Users and queries are not correlated.
type Overview struct {
	Users   []Account
	Queries []QueryMessage
}
