package mysql

import (
	"context"
	"database/sql"
	"time"

	db2 "github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"

	"github.com/upper/db/v4"
)

type flattenedComment struct {
	flattenedAuthor    `db:",inline"`
	Id                 int64          `db:"id"`
	PostId             int64          `db:"post_id"`
	Content            string         `db:"content"`
	ParentCommentId    sql.NullInt64  `db:"parent_comment_id"`
	ReplyToUserId      sql.NullInt64  `db:"reply_user_id"`
	ReplyToUsername    sql.NullString `db:"reply_user_username"`
	ReplyToDisplayName sql.NullString `db:"reply_user_display_name"`
	IsEdited           bool           `db:"is_edited"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          sql.NullTime   `db:"updated_at"`
}

var commentColumns = append([]interface{}{
	"c.id",
	"c.post_id",
	"c.content",
	"c.parent_comment_id",
	"c.is_edited",
	"c.created_at",
	"c.updated_at",
	"reply_user.id AS reply_user_id",
	"reply_user.username AS reply_user_username",
	"reply_user.display_name AS reply_user_display_name",
}, authorColumns...)

func buildCommentFromFlattened(comment *flattenedComment) *model.Comment {
	var replyTo *model.Author
	if comment.ReplyToUserId.Valid {
		replyTo = &model.Author{
			Id:          comment.ReplyToUserId.Int64,
			Username:    comment.ReplyToUsername.String,
			DisplayName: comment.ReplyToDisplayName.String,
		}
	}
	var updatedAt *time.Time
	if comment.UpdatedAt.Valid {
		updatedAt = &comment.UpdatedAt.Time
	}
	return &model.Comment{
		Id:              comment.Id,
		Content:         comment.Content,
		Author:          buildAuthorFromFlattened(&comment.flattenedAuthor),
		PostId:          comment.PostId,
		ParentCommentId: comment.ParentCommentId.Int64,
		ReplyToUser:     replyTo,
		IsEdited:        comment.IsEdited,
		CreatedAt:       comment.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (pdb *PostDB) CreateComment(ctx context.Context, req *db2.CreateComment) (int64, error) {
	res, err := pdb.sess.SQL().
		InsertInto("comment").
		Columns("post_id", "author_id", "content", "parent_comment_id", "reply_to_user_id").
		Values(req.PostId, req.AuthorId, req.Content,
			nullInt64(req.ParentCommentId), nullInt64(req.ReplyToUserId)).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (pdb *PostDB) GetCommentById(ctx context.Context, id int64) (*model.Comment, error) {
	var comment flattenedComment
	if err := pdb.commentQuery().
		Where("c.id = ?", id).
		IteratorContext(ctx).
		One(&comment); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildCommentFromFlattened(&comment), nil
}

// GetCommentsForPost returns comments oldest first so conversations read in
// order.
func (pdb *PostDB) GetCommentsForPost(ctx context.Context, postId int64) ([]*model.Comment, error) {
	var flattenedComments []flattenedComment
	if err := pdb.commentQuery().
		Where("c.post_id = ?", postId).
		OrderBy("c.created_at ASC", "c.id ASC").
		IteratorContext(ctx).
		All(&flattenedComments); err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, len(flattenedComments))
	for i := range flattenedComments {
		comments[i] = buildCommentFromFlattened(&flattenedComments[i])
	}
	return comments, nil
}

func (pdb *PostDB) commentQuery() db.Selector {
	return pdb.sess.SQL().
		Select(commentColumns...).
		From("comment AS c").
		Join("person AS author").On("c.author_id = author.id").
		LeftJoin("person AS reply_user").On("c.reply_to_user_id = reply_user.id")
}

func (pdb *PostDB) UpdateComment(ctx context.Context, id int64, content string) error {
	_, err := pdb.sess.SQL().
		Update("comment").
		Set(map[string]interface{}{
			"content":    content,
			"is_edited":  true,
			"updated_at": time.Now(),
		}).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

// DeleteComment removes the comment together with its direct replies. Replies
// of replies are left alone; threading is one level deep.
func (pdb *PostDB) DeleteComment(ctx context.Context, id int64) error {
	return pdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			DeleteFrom("comment").
			Where("parent_comment_id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			DeleteFrom("comment").
			Where("id = ?", id).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}
