package db

import (
	"context"

	"github.com/stopmotionlab/blog-be/model"

	_ "github.com/go-sql-driver/mysql"
)

type Database interface {
	UserDatabase
	PostDatabase
	DiscussionDatabase
	Close() error
}

type CreateUser struct {
	Username     string
	Email        string
	PasswordHash string // empty for Google-only accounts
	DisplayName  string
	GoogleId     string
	IsAdmin      bool
}

type CreatePost struct {
	AuthorId int64
	Title    string
	Content  string
	Tags     []string
	Image    string
}

// UpdatePost is a partial update. Empty Title/Content are kept as-is; tags
// are replaced only when SetTags is true; SetImage with an empty Image clears
// the stored path.
type UpdatePost struct {
	Title    string
	Content  string
	Tags     []string
	SetTags  bool
	Image    string
	SetImage bool
}

type CreateComment struct {
	AuthorId        int64
	PostId          int64
	Content         string
	ParentCommentId int64 // 0 for top-level comments
	ReplyToUserId   int64 // 0 when not replying to a specific user
}

type CreateDiscussion struct {
	AuthorId int64
	Title    string
	Content  string
}

type UpdateDiscussion struct {
	Title   string
	Content string
}

type CreateDiscussionComment struct {
	AuthorId     int64
	DiscussionId int64
	Content      string
}

type UserDatabase interface {
	CreateUser(ctx context.Context, req *CreateUser) (userId int64, err error)
	GetUserById(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByGoogleId(ctx context.Context, googleId string) (*model.User, error)
	GetUsers(ctx context.Context) ([]*model.User, error)
	SetDisplayName(ctx context.Context, id int64, displayName string) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
	LinkGoogleAccount(ctx context.Context, id int64, googleId, displayName string) error
}

type PostDatabase interface {
	CreatePost(ctx context.Context, req *CreatePost) (postId int64, err error)
	GetPosts(ctx context.Context) ([]*model.Post, error)
	GetPostById(ctx context.Context, id int64) (*model.Post, error)
	// ViewPost increments the view counter and returns the updated post.
	ViewPost(ctx context.Context, id int64) (*model.Post, error)
	GetPopularPosts(ctx context.Context, limit int) ([]*model.PopularPost, error)
	UpdatePost(ctx context.Context, id int64, req *UpdatePost) error
	// DeletePost removes the post and every comment attached to it.
	DeletePost(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, req *CreateComment) (commentId int64, err error)
	GetCommentById(ctx context.Context, id int64) (*model.Comment, error)
	GetCommentsForPost(ctx context.Context, postId int64) ([]*model.Comment, error)
	UpdateComment(ctx context.Context, id int64, content string) error
	// DeleteComment removes the comment and its direct replies.
	DeleteComment(ctx context.Context, id int64) error
}

type DiscussionDatabase interface {
	CreateDiscussion(ctx context.Context, req *CreateDiscussion) (discussionId int64, err error)
	GetDiscussions(ctx context.Context) ([]*model.Discussion, error)
	GetDiscussionById(ctx context.Context, id int64) (*model.Discussion, error)
	UpdateDiscussion(ctx context.Context, id int64, req *UpdateDiscussion) error
	DeleteDiscussion(ctx context.Context, id int64) error

	CreateDiscussionComment(ctx context.Context, req *CreateDiscussionComment) (commentId int64, err error)
	GetDiscussionCommentById(ctx context.Context, id int64) (*model.DiscussionComment, error)
	GetCommentsForDiscussion(ctx context.Context, discussionId int64) ([]*model.DiscussionComment, error)
	UpdateDiscussionComment(ctx context.Context, id int64, content string) error
	DeleteDiscussionComment(ctx context.Context, id int64) error
}
