package mysql

import (
	"context"
	"database/sql"
	"time"

	db2 "github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"

	"github.com/upper/db/v4"
)

type DiscussionDB struct {
	sess db.Session
}

func getDiscussionDB(sess db.Session) *DiscussionDB {
	return &DiscussionDB{sess}
}

type flattenedDiscussion struct {
	flattenedAuthor `db:",inline"`
	Id              int64        `db:"id"`
	Title           string       `db:"title"`
	Content         string       `db:"content"`
	IsEdited        bool         `db:"is_edited"`
	CommentCount    int64        `db:"comment_count"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       sql.NullTime `db:"updated_at"`
}

var discussionColumns = append([]interface{}{
	"d.id",
	"d.title",
	"d.content",
	"d.is_edited",
	"d.created_at",
	"d.updated_at",
}, authorColumns...)

// discussionListColumns is built once so concurrent list queries share a
// read-only slice instead of appending into discussionColumns' capacity.
var discussionListColumns = append(append([]interface{}{}, discussionColumns...),
	db.Raw("COUNT(c.id) AS comment_count"))

func buildDiscussionFromFlattened(discussion *flattenedDiscussion) *model.Discussion {
	var updatedAt *time.Time
	if discussion.UpdatedAt.Valid {
		updatedAt = &discussion.UpdatedAt.Time
	}
	return &model.Discussion{
		Id:           discussion.Id,
		Title:        discussion.Title,
		Content:      discussion.Content,
		Author:       buildAuthorFromFlattened(&discussion.flattenedAuthor),
		IsEdited:     discussion.IsEdited,
		CommentCount: discussion.CommentCount,
		CreatedAt:    discussion.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (ddb *DiscussionDB) CreateDiscussion(ctx context.Context, req *db2.CreateDiscussion) (int64, error) {
	res, err := ddb.sess.SQL().
		InsertInto("discussion").
		Columns("author_id", "title", "content").
		Values(req.AuthorId, req.Title, req.Content).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (ddb *DiscussionDB) GetDiscussions(ctx context.Context) ([]*model.Discussion, error) {
	var flattenedDiscussions []flattenedDiscussion
	if err := ddb.sess.SQL().
		Select(discussionListColumns...).
		From("discussion AS d").
		Join("person AS author").On("d.author_id = author.id").
		LeftJoin("discussion_comment AS c").On("c.discussion_id = d.id").
		GroupBy("d.id", "author.id").
		OrderBy("d.created_at DESC", "d.id DESC").
		IteratorContext(ctx).
		All(&flattenedDiscussions); err != nil {
		return nil, err
	}
	discussions := make([]*model.Discussion, len(flattenedDiscussions))
	for i := range flattenedDiscussions {
		discussions[i] = buildDiscussionFromFlattened(&flattenedDiscussions[i])
	}
	return discussions, nil
}

func (ddb *DiscussionDB) GetDiscussionById(ctx context.Context, id int64) (*model.Discussion, error) {
	var discussion flattenedDiscussion
	if err := ddb.sess.SQL().
		Select(discussionColumns...).
		From("discussion AS d").
		Join("person AS author").On("d.author_id = author.id").
		Where("d.id = ?", id).
		IteratorContext(ctx).
		One(&discussion); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildDiscussionFromFlattened(&discussion), nil
}

func (ddb *DiscussionDB) UpdateDiscussion(ctx context.Context, id int64, req *db2.UpdateDiscussion) error {
	updates := map[string]interface{}{
		"is_edited":  true,
		"updated_at": time.Now(),
	}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Content != "" {
		updates["content"] = req.Content
	}
	_, err := ddb.sess.SQL().
		Update("discussion").
		Set(updates).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

func (ddb *DiscussionDB) DeleteDiscussion(ctx context.Context, id int64) error {
	return ddb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			DeleteFrom("discussion_comment").
			Where("discussion_id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			DeleteFrom("discussion").
			Where("id = ?", id).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}

type flattenedDiscussionComment struct {
	flattenedAuthor `db:",inline"`
	Id              int64        `db:"id"`
	DiscussionId    int64        `db:"discussion_id"`
	Content         string       `db:"content"`
	IsEdited        bool         `db:"is_edited"`
	CreatedAt       time.Time    `db:"created_at"`
	UpdatedAt       sql.NullTime `db:"updated_at"`
}

var discussionCommentColumns = append([]interface{}{
	"c.id",
	"c.discussion_id",
	"c.content",
	"c.is_edited",
	"c.created_at",
	"c.updated_at",
}, authorColumns...)

func buildDiscussionCommentFromFlattened(comment *flattenedDiscussionComment) *model.DiscussionComment {
	var updatedAt *time.Time
	if comment.UpdatedAt.Valid {
		updatedAt = &comment.UpdatedAt.Time
	}
	return &model.DiscussionComment{
		Id:           comment.Id,
		Content:      comment.Content,
		Author:       buildAuthorFromFlattened(&comment.flattenedAuthor),
		DiscussionId: comment.DiscussionId,
		IsEdited:     comment.IsEdited,
		CreatedAt:    comment.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (ddb *DiscussionDB) CreateDiscussionComment(ctx context.Context, req *db2.CreateDiscussionComment) (int64, error) {
	res, err := ddb.sess.SQL().
		InsertInto("discussion_comment").
		Columns("discussion_id", "author_id", "content").
		Values(req.DiscussionId, req.AuthorId, req.Content).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (ddb *DiscussionDB) GetDiscussionCommentById(ctx context.Context, id int64) (*model.DiscussionComment, error) {
	var comment flattenedDiscussionComment
	if err := ddb.discussionCommentQuery().
		Where("c.id = ?", id).
		IteratorContext(ctx).
		One(&comment); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildDiscussionCommentFromFlattened(&comment), nil
}

// GetCommentsForDiscussion returns comments newest first, unlike post
// comments which read oldest first.
func (ddb *DiscussionDB) GetCommentsForDiscussion(ctx context.Context, discussionId int64) ([]*model.DiscussionComment, error) {
	var flattenedComments []flattenedDiscussionComment
	if err := ddb.discussionCommentQuery().
		Where("c.discussion_id = ?", discussionId).
		OrderBy("c.created_at DESC", "c.id DESC").
		IteratorContext(ctx).
		All(&flattenedComments); err != nil {
		return nil, err
	}
	comments := make([]*model.DiscussionComment, len(flattenedComments))
	for i := range flattenedComments {
		comments[i] = buildDiscussionCommentFromFlattened(&flattenedComments[i])
	}
	return comments, nil
}

func (ddb *DiscussionDB) discussionCommentQuery() db.Selector {
	return ddb.sess.SQL().
		Select(discussionCommentColumns...).
		From("discussion_comment AS c").
		Join("person AS author").On("c.author_id = author.id")
}

func (ddb *DiscussionDB) UpdateDiscussionComment(ctx context.Context, id int64, content string) error {
	_, err := ddb.sess.SQL().
		Update("discussion_comment").
		Set(map[string]interface{}{
			"content":    content,
			"is_edited":  true,
			"updated_at": time.Now(),
		}).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

func (ddb *DiscussionDB) DeleteDiscussionComment(ctx context.Context, id int64) error {
	_, err := ddb.sess.SQL().
		DeleteFrom("discussion_comment").
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}
