package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	db2 "github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"

	"github.com/upper/db/v4"
)

type PostDB struct {
	sess db.Session
}

func getPostDB(sess db.Session) *PostDB {
	return &PostDB{sess}
}

type flattenedAuthor struct {
	AuthorId          int64          `db:"author_id"`
	AuthorUsername    string         `db:"author_username"`
	AuthorDisplayName sql.NullString `db:"author_display_name"`
}

func buildAuthorFromFlattened(author *flattenedAuthor) *model.Author {
	return &model.Author{
		Id:          author.AuthorId,
		Username:    author.AuthorUsername,
		DisplayName: author.AuthorDisplayName.String,
	}
}

type flattenedPost struct {
	flattenedAuthor `db:",inline"`
	Id              int64          `db:"id"`
	Title           string         `db:"title"`
	Content         string         `db:"content"`
	TagsJSON        sql.NullString `db:"tags"`
	Image           sql.NullString `db:"image"`
	Views           int64          `db:"views"`
	IsEdited        bool           `db:"is_edited"`
	CommentCount    int64          `db:"comment_count"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

var authorColumns = []interface{}{
	"author.id AS author_id",
	"author.username AS author_username",
	"author.display_name AS author_display_name",
}

var postColumns = append([]interface{}{
	"p.id",
	"p.title",
	"p.content",
	"p.tags",
	"p.image",
	"p.views",
	"p.is_edited",
	"p.created_at",
	"p.updated_at",
}, authorColumns...)

// postListColumns is built once; appending to postColumns per call would
// write into its spare capacity and race between concurrent list queries.
var postListColumns = append(append([]interface{}{}, postColumns...),
	db.Raw("COUNT(c.id) AS comment_count"))

func buildPostFromFlattened(post *flattenedPost) (*model.Post, error) {
	tags := []string{}
	if post.TagsJSON.Valid && post.TagsJSON.String != "" {
		if err := json.Unmarshal([]byte(post.TagsJSON.String), &tags); err != nil {
			return nil, err
		}
	}
	var updatedAt *time.Time
	if post.UpdatedAt.Valid {
		updatedAt = &post.UpdatedAt.Time
	}
	return &model.Post{
		Id:           post.Id,
		Title:        post.Title,
		Content:      post.Content,
		Tags:         tags,
		Author:       buildAuthorFromFlattened(&post.flattenedAuthor),
		Image:        post.Image.String,
		Views:        post.Views,
		IsEdited:     post.IsEdited,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (pdb *PostDB) CreatePost(ctx context.Context, req *db2.CreatePost) (int64, error) {
	tagsJSON, err := marshalTags(req.Tags)
	if err != nil {
		return 0, err
	}
	res, err := pdb.sess.SQL().
		InsertInto("post").
		Columns("author_id", "title", "content", "tags", "image").
		Values(req.AuthorId, req.Title, req.Content, tagsJSON, nullString(req.Image)).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPosts returns every post, newest first, with the comment count folded
// into the same query.
func (pdb *PostDB) GetPosts(ctx context.Context) ([]*model.Post, error) {
	var flattenedPosts []flattenedPost
	if err := pdb.sess.SQL().
		Select(postListColumns...).
		From("post AS p").
		Join("person AS author").On("p.author_id = author.id").
		LeftJoin("comment AS c").On("c.post_id = p.id").
		GroupBy("p.id", "author.id").
		OrderBy("p.created_at DESC", "p.id DESC").
		IteratorContext(ctx).
		All(&flattenedPosts); err != nil {
		return nil, err
	}
	posts := make([]*model.Post, len(flattenedPosts))
	for i := range flattenedPosts {
		post, err := buildPostFromFlattened(&flattenedPosts[i])
		if err != nil {
			return nil, err
		}
		posts[i] = post
	}
	return posts, nil
}

func (pdb *PostDB) GetPostById(ctx context.Context, id int64) (*model.Post, error) {
	return getPostById(ctx, pdb.sess, id)
}

func getPostById(ctx context.Context, sess db.Session, id int64) (*model.Post, error) {
	var post flattenedPost
	if err := sess.SQL().
		Select(postColumns...).
		From("post AS p").
		Join("person AS author").On("p.author_id = author.id").
		Where("p.id = ?", id).
		IteratorContext(ctx).
		One(&post); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildPostFromFlattened(&post)
}

// ViewPost counts a read and returns the post. Every fetch counts,
// including the author's own.
func (pdb *PostDB) ViewPost(ctx context.Context, id int64) (*model.Post, error) {
	var post *model.Post
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			Update("post").
			Set("views = views + 1").
			Where("id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		fetched, err := getPostById(ctx, sess, id)
		if err != nil {
			return err
		}
		post = fetched
		return nil
	}, nil)
	return post, err
}

type flattenedPopularPost struct {
	flattenedAuthor `db:",inline"`
	Id              int64     `db:"id"`
	Title           string    `db:"title"`
	Views           int64     `db:"views"`
	CreatedAt       time.Time `db:"created_at"`
}

func (pdb *PostDB) GetPopularPosts(ctx context.Context, limit int) ([]*model.PopularPost, error) {
	var flattenedPosts []flattenedPopularPost
	if err := pdb.sess.SQL().
		Select(append([]interface{}{"p.id", "p.title", "p.views", "p.created_at"}, authorColumns...)...).
		From("post AS p").
		Join("person AS author").On("p.author_id = author.id").
		OrderBy("p.views DESC", "p.id DESC").
		Limit(limit).
		IteratorContext(ctx).
		All(&flattenedPosts); err != nil {
		return nil, err
	}
	posts := make([]*model.PopularPost, len(flattenedPosts))
	for i, flattened := range flattenedPosts {
		posts[i] = &model.PopularPost{
			Id:        flattened.Id,
			Title:     flattened.Title,
			Views:     flattened.Views,
			Author:    buildAuthorFromFlattened(&flattened.flattenedAuthor),
			CreatedAt: flattened.CreatedAt,
		}
	}
	return posts, nil
}

func (pdb *PostDB) UpdatePost(ctx context.Context, id int64, req *db2.UpdatePost) error {
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
	if req.SetTags {
		tagsJSON, err := marshalTags(req.Tags)
		if err != nil {
			return err
		}
		updates["tags"] = tagsJSON
	}
	if req.SetImage {
		updates["image"] = nullString(req.Image)
	}
	_, err := pdb.sess.SQL().
		Update("post").
		Set(updates).
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}

// DeletePost drops the post and all of its comments in one transaction.
func (pdb *PostDB) DeletePost(ctx context.Context, id int64) error {
	return pdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			DeleteFrom("comment").
			Where("post_id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			DeleteFrom("post").
			Where("id = ?", id).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}
