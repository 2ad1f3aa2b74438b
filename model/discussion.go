package model

import "time"

type Discussion struct {
	Id           int64      `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Author       *Author    `json:"author"`
	IsEdited     bool       `json:"isEdited"`
	CommentCount int64      `json:"commentCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}
