package model

import "time"

type Post struct {
	Id           int64      `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Tags         []string   `json:"tags"`
	Author       *Author    `json:"author"`
	Image        string     `json:"image,omitempty"`
	Views        int64      `json:"views"`
	IsEdited     bool       `json:"isEdited"`
	CommentCount int64      `json:"commentCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// PopularPost is the trimmed projection returned by the popular ranking.
type PopularPost struct {
	Id        int64     `json:"id"`
	Title     string    `json:"title"`
	Views     int64     `json:"views"`
	Author    *Author   `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}
