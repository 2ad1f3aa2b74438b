package model

import "time"

// User holds a local account. PasswordHash is empty for Google-only accounts.
type User struct {
	Id           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"displayName,omitempty"`
	GoogleId     string    `db:"google_id" json:"googleId,omitempty"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// HasPassword reports whether the account can authenticate locally.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u *User) Author() *Author {
	return &Author{
		Id:          u.Id,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// Author is the projection of a user attached to posts and comments.
type Author struct {
	Id          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
}
