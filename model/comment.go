package model

import "time"

// Comment belongs to a post. ParentCommentId links one level of replies; the
// API still returns a flat list and leaves assembly to the client.
type Comment struct {
	Id              int64      `json:"id"`
	Content         string     `json:"content"`
	Author          *Author    `json:"author"`
	PostId          int64      `json:"post"`
	ParentCommentId int64      `json:"parentComment,omitempty"`
	ReplyToUser     *Author    `json:"replyToUser,omitempty"`
	IsEdited        bool       `json:"isEdited"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// DiscussionComment has the same shape minus threading.
type DiscussionComment struct {
	Id           int64      `json:"id"`
	Content      string     `json:"content"`
	Author       *Author    `json:"author"`
	DiscussionId int64      `json:"discussion"`
	IsEdited     bool       `json:"isEdited"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}
