// Package models defines server-side data models persisted in the database.
package models

import "time"

// UserProfile is the locally stored profile record. The account itself lives
// with the external identity provider; the profile carries the password hash
// used for login and the locale preferences of the finance app.
type UserProfile struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Timezone     string
	Currency     string
	Language     string
	CreatedAt    time.Time
}
