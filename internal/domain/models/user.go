package models

import "time"

// User is the only persisted entity. PassHash never leaves the service.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PassHash          []byte     `json:"-"`
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	Picture           string     `json:"picture"`
	DOB               *time.Time `json:"dob"`
	AccountCreated    time.Time  `json:"accountCreated"`
	ArticlesPublished int        `json:"articlesPublished"`
}
