package routes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"

	"github.com/go-sql-driver/mysql"
)

// memDB is an in-memory db.Database used to exercise the routes without a
// MySQL instance. It mirrors the store's behavior where the routes depend on
// it: duplicate-key errors, cascade deletes and comment ordering.
type memDB struct {
	mu sync.Mutex

	nextId      int64
	users       []*model.User
	posts       []*model.Post
	comments    []*model.Comment
	discussions []*model.Discussion
	discComms   []*model.DiscussionComment
}

func newMemDB() *memDB {
	return &memDB{nextId: 1}
}

var _ db.Database = (*memDB)(nil)

// dupKeyErr mimics the MySQL 8 message format, which prefixes the key with
// the table name.
func dupKeyErr(key string) error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'person." + key + "'"}
}

func (m *memDB) id() int64 {
	id := m.nextId
	m.nextId++
	return id
}

func (m *memDB) Close() error { return nil }

func (m *memDB) CreateUser(_ context.Context, req *db.CreateUser) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == req.Username {
			return 0, dupKeyErr("username")
		}
		if req.Email != "" && u.Email == req.Email {
			return 0, dupKeyErr("email")
		}
		if req.GoogleId != "" && u.GoogleId == req.GoogleId {
			return 0, dupKeyErr("google_id")
		}
	}
	user := &model.User{
		Id:           m.id(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		DisplayName:  req.DisplayName,
		GoogleId:     req.GoogleId,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    time.Now(),
	}
	m.users = append(m.users, user)
	return user.Id, nil
}

func (m *memDB) findUser(match func(*model.User) bool) *model.User {
	for _, u := range m.users {
		if match(u) {
			clone := *u
			return &clone
		}
	}
	return nil
}

func (m *memDB) GetUserById(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUser(func(u *model.User) bool { return u.Id == id }), nil
}

func (m *memDB) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUser(func(u *model.User) bool { return u.Email != "" && u.Email == email }), nil
}

func (m *memDB) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUser(func(u *model.User) bool { return u.Username == username }), nil
}

func (m *memDB) GetUserByGoogleId(_ context.Context, googleId string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findUser(func(u *model.User) bool { return u.GoogleId != "" && u.GoogleId == googleId }), nil
}

// GetUsers returns newest first, matching the store.
func (m *memDB) GetUsers(_ context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*model.User, 0, len(m.users))
	for i := len(m.users) - 1; i >= 0; i-- {
		clone := *m.users[i]
		users = append(users, &clone)
	}
	return users, nil
}

func (m *memDB) mutateUser(id int64, mutate func(*model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Id == id {
			mutate(u)
			return nil
		}
	}
	return nil
}

func (m *memDB) SetDisplayName(_ context.Context, id int64, displayName string) error {
	return m.mutateUser(id, func(u *model.User) { u.DisplayName = displayName })
}

func (m *memDB) SetPassword(_ context.Context, id int64, passwordHash string) error {
	return m.mutateUser(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (m *memDB) SetAdmin(_ context.Context, id int64, isAdmin bool) error {
	return m.mutateUser(id, func(u *model.User) { u.IsAdmin = isAdmin })
}

func (m *memDB) LinkGoogleAccount(_ context.Context, id int64, googleId, displayName string) error {
	return m.mutateUser(id, func(u *model.User) {
		u.GoogleId = googleId
		if u.DisplayName == "" {
			u.DisplayName = displayName
		}
	})
}

func (m *memDB) author(id int64) *model.Author {
	for _, u := range m.users {
		if u.Id == id {
			return u.Author()
		}
	}
	return nil
}

func (m *memDB) CreatePost(_ context.Context, req *db.CreatePost) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post := &model.Post{
		Id:        m.id(),
		Title:     req.Title,
		Content:   req.Content,
		Tags:      append([]string{}, req.Tags...),
		Author:    m.author(req.AuthorId),
		Image:     req.Image,
		CreatedAt: time.Now(),
	}
	m.posts = append(m.posts, post)
	return post.Id, nil
}

func (m *memDB) clonePost(post *model.Post) *model.Post {
	clone := *post
	clone.Tags = append([]string{}, post.Tags...)
	for _, comment := range m.comments {
		if comment.PostId == post.Id {
			clone.CommentCount++
		}
	}
	return &clone
}

func (m *memDB) GetPosts(_ context.Context) ([]*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]*model.Post, 0, len(m.posts))
	for i := len(m.posts) - 1; i >= 0; i-- {
		posts = append(posts, m.clonePost(m.posts[i]))
	}
	return posts, nil
}

func (m *memDB) GetPostById(_ context.Context, id int64) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.Id == id {
			return m.clonePost(post), nil
		}
	}
	return nil, nil
}

func (m *memDB) ViewPost(_ context.Context, id int64) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.Id == id {
			post.Views++
			return m.clonePost(post), nil
		}
	}
	return nil, nil
}

func (m *memDB) GetPopularPosts(_ context.Context, limit int) ([]*model.PopularPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	posts := make([]*model.Post, len(m.posts))
	copy(posts, m.posts)
	sort.Slice(posts, func(i, j int) bool { return posts[i].Views > posts[j].Views })
	popular := make([]*model.PopularPost, 0, limit)
	for _, post := range posts {
		if len(popular) == limit {
			break
		}
		popular = append(popular, &model.PopularPost{
			Id:        post.Id,
			Title:     post.Title,
			Views:     post.Views,
			Author:    post.Author,
			CreatedAt: post.CreatedAt,
		})
	}
	return popular, nil
}

func (m *memDB) UpdatePost(_ context.Context, id int64, req *db.UpdatePost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, post := range m.posts {
		if post.Id != id {
			continue
		}
		if req.Title != "" {
			post.Title = req.Title
		}
		if req.Content != "" {
			post.Content = req.Content
		}
		if req.SetTags {
			post.Tags = append([]string{}, req.Tags...)
		}
		if req.SetImage {
			post.Image = req.Image
		}
		post.IsEdited = true
		now := time.Now()
		post.UpdatedAt = &now
		return nil
	}
	return nil
}

func (m *memDB) DeletePost(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.comments[:0]
	for _, comment := range m.comments {
		if comment.PostId != id {
			kept = append(kept, comment)
		}
	}
	m.comments = kept
	for i, post := range m.posts {
		if post.Id == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memDB) CreateComment(_ context.Context, req *db.CreateComment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment := &model.Comment{
		Id:              m.id(),
		Content:         req.Content,
		Author:          m.author(req.AuthorId),
		PostId:          req.PostId,
		ParentCommentId: req.ParentCommentId,
		CreatedAt:       time.Now(),
	}
	if req.ReplyToUserId != 0 {
		comment.ReplyToUser = m.author(req.ReplyToUserId)
	}
	m.comments = append(m.comments, comment)
	return comment.Id, nil
}

func (m *memDB) GetCommentById(_ context.Context, id int64) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, comment := range m.comments {
		if comment.Id == id {
			clone := *comment
			return &clone, nil
		}
	}
	return nil, nil
}

// GetCommentsForPost returns oldest first, matching the store.
func (m *memDB) GetCommentsForPost(_ context.Context, postId int64) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comments := make([]*model.Comment, 0)
	for _, comment := range m.comments {
		if comment.PostId == postId {
			clone := *comment
			comments = append(comments, &clone)
		}
	}
	return comments, nil
}

func (m *memDB) UpdateComment(_ context.Context, id int64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, comment := range m.comments {
		if comment.Id == id {
			comment.Content = content
			comment.IsEdited = true
			now := time.Now()
			comment.UpdatedAt = &now
			return nil
		}
	}
	return nil
}

func (m *memDB) DeleteComment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.comments[:0]
	for _, comment := range m.comments {
		if comment.Id != id && comment.ParentCommentId != id {
			kept = append(kept, comment)
		}
	}
	m.comments = kept
	return nil
}

func (m *memDB) CreateDiscussion(_ context.Context, req *db.CreateDiscussion) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	discussion := &model.Discussion{
		Id:        m.id(),
		Title:     req.Title,
		Content:   req.Content,
		Author:    m.author(req.AuthorId),
		CreatedAt: time.Now(),
	}
	m.discussions = append(m.discussions, discussion)
	return discussion.Id, nil
}

func (m *memDB) cloneDiscussion(discussion *model.Discussion) *model.Discussion {
	clone := *discussion
	for _, comment := range m.discComms {
		if comment.DiscussionId == discussion.Id {
			clone.CommentCount++
		}
	}
	return &clone
}

func (m *memDB) GetDiscussions(_ context.Context) ([]*model.Discussion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	discussions := make([]*model.Discussion, 0, len(m.discussions))
	for i := len(m.discussions) - 1; i >= 0; i-- {
		discussions = append(discussions, m.cloneDiscussion(m.discussions[i]))
	}
	return discussions, nil
}

func (m *memDB) GetDiscussionById(_ context.Context, id int64) (*model.Discussion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, discussion := range m.discussions {
		if discussion.Id == id {
			return m.cloneDiscussion(discussion), nil
		}
	}
	return nil, nil
}

func (m *memDB) UpdateDiscussion(_ context.Context, id int64, req *db.UpdateDiscussion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, discussion := range m.discussions {
		if discussion.Id == id {
			if req.Title != "" {
				discussion.Title = req.Title
			}
			if req.Content != "" {
				discussion.Content = req.Content
			}
			discussion.IsEdited = true
			now := time.Now()
			discussion.UpdatedAt = &now
			return nil
		}
	}
	return nil
}

func (m *memDB) DeleteDiscussion(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.discComms[:0]
	for _, comment := range m.discComms {
		if comment.DiscussionId != id {
			kept = append(kept, comment)
		}
	}
	m.discComms = kept
	for i, discussion := range m.discussions {
		if discussion.Id == id {
			m.discussions = append(m.discussions[:i], m.discussions[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memDB) CreateDiscussionComment(_ context.Context, req *db.CreateDiscussionComment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment := &model.DiscussionComment{
		Id:           m.id(),
		Content:      req.Content,
		Author:       m.author(req.AuthorId),
		DiscussionId: req.DiscussionId,
		CreatedAt:    time.Now(),
	}
	m.discComms = append(m.discComms, comment)
	return comment.Id, nil
}

func (m *memDB) GetDiscussionCommentById(_ context.Context, id int64) (*model.DiscussionComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, comment := range m.discComms {
		if comment.Id == id {
			clone := *comment
			return &clone, nil
		}
	}
	return nil, nil
}

// GetCommentsForDiscussion returns newest first, matching the store.
func (m *memDB) GetCommentsForDiscussion(_ context.Context, discussionId int64) ([]*model.DiscussionComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comments := make([]*model.DiscussionComment, 0)
	for i := len(m.discComms) - 1; i >= 0; i-- {
		if m.discComms[i].DiscussionId == discussionId {
			clone := *m.discComms[i]
			comments = append(comments, &clone)
		}
	}
	return comments, nil
}

func (m *memDB) UpdateDiscussionComment(_ context.Context, id int64, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, comment := range m.discComms {
		if comment.Id == id {
			comment.Content = content
			comment.IsEdited = true
			now := time.Now()
			comment.UpdatedAt = &now
			return nil
		}
	}
	return nil
}

func (m *memDB) DeleteDiscussionComment(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, comment := range m.discComms {
		if comment.Id == id {
			m.discComms = append(m.discComms[:i], m.discComms[i+1:]...)
			break
		}
	}
	return nil
}
