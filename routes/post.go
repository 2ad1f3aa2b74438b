package routes

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/middleware"
	"github.com/stopmotionlab/blog-be/services"
	"github.com/stopmotionlab/blog-be/util"

	"github.com/gin-gonic/gin"
)

const defaultPopularLimit = 5

type postRoutes struct {
	db      db.Database
	uploads *services.UploadStore
}

func AddPostRoutes(group *gin.RouterGroup, database db.Database, uploads *services.UploadStore) {
	routes := postRoutes{db: database, uploads: uploads}
	posts := group.Group("/posts")

	posts.GET("", util.HandlerWrapper(routes.getPosts, &util.HandlerOpts{}))
	posts.GET("/popular/top", util.HandlerWrapper(routes.getPopularPosts, &util.HandlerOpts{}))
	posts.GET("/:id", util.HandlerWrapper(routes.getPostById, &util.HandlerOpts{}))
	posts.GET("/:id/comments", util.HandlerWrapper(routes.getComments, &util.HandlerOpts{}))

	authed := posts.Group("", middleware.Auth(database, &middleware.AuthConfig{}))
	authed.POST("/create", middleware.RequireAdmin(),
		util.HandlerWrapper(routes.createPost, &util.HandlerOpts{}))
	authed.PUT("/:id", util.HandlerWrapper(routes.updatePost, &util.HandlerOpts{}))
	authed.DELETE("/:id", util.HandlerWrapper(routes.deletePost, &util.HandlerOpts{}))
	authed.POST("/:id/comments", util.HandlerWrapper(routes.createComment, &util.HandlerOpts{}))
	authed.PUT("/:id/comments/:commentId", util.HandlerWrapper(routes.updateComment, &util.HandlerOpts{}))
	authed.DELETE("/:id/comments/:commentId", util.HandlerWrapper(routes.deleteComment, &util.HandlerOpts{}))
}

func (pr *postRoutes) getPosts(c *gin.Context) (interface{}, *util.HTTPError) {
	posts, err := pr.db.GetPosts(c)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"posts": posts}, nil
}

func (pr *postRoutes) getPopularPosts(c *gin.Context) (interface{}, *util.HTTPError) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPopularLimit
	}
	posts, err := pr.db.GetPopularPosts(c, limit)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"posts": posts}, nil
}

// getPostById also counts the read; every fetch increments the view counter,
// whoever the caller is.
func (pr *postRoutes) getPostById(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, err := pr.db.ViewPost(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "文章不存在"}
	}
	return gin.H{"post": post}, nil
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	title := c.PostForm("title")
	content := c.PostForm("content")
	if title == "" || content == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "Missing fields"}
	}

	image := ""
	if file, err := c.FormFile("image"); err == nil {
		path, err := pr.uploads.Save(file)
		if err != nil {
			log.Println("image upload failed", err)
			return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "無法儲存圖片"}
		}
		image = path
	}

	postId, err := pr.db.CreatePost(c, &db.CreatePost{
		AuthorId: middleware.MustGetUser(c).Id,
		Title:    util.XSSSanitize(title),
		Content:  util.XSSSanitize(content),
		Tags:     util.SplitTags(c.PostForm("tags")),
		Image:    image,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	post, err := pr.db.GetPostById(c, postId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, util.BuildReadBackHTTPErr("post")
	}
	return gin.H{"post": post}, nil
}

func (pr *postRoutes) updatePost(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, err := pr.db.GetPostById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "文章不存在"}
	}
	if !canModify(middleware.MustGetUser(c), post.Author.Id) {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "無權編輯此文章"}
	}

	req := &db.UpdatePost{
		Title:   util.XSSSanitize(c.PostForm("title")),
		Content: util.XSSSanitize(c.PostForm("content")),
	}
	if tags, hasTags := c.GetPostForm("tags"); hasTags {
		req.SetTags = true
		req.Tags = util.SplitTags(tags)
	}

	// removeImage is the explicit "clear the image" sentinel; a request with
	// neither the sentinel nor a new file keeps the current image.
	oldImage := post.Image
	if c.PostForm("removeImage") == "true" {
		req.SetImage = true
	} else if file, err := c.FormFile("image"); err == nil {
		path, err := pr.uploads.Save(file)
		if err != nil {
			log.Println("image upload failed", err)
			return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "無法儲存圖片"}
		}
		req.SetImage = true
		req.Image = path
	}

	if err := pr.db.UpdatePost(c, id, req); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if req.SetImage && oldImage != "" && oldImage != req.Image {
		if err := pr.uploads.Remove(oldImage); err != nil {
			log.Println("failed to remove replaced image", err)
		}
	}

	updated, err := pr.db.GetPostById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if updated == nil {
		return nil, util.BuildReadBackHTTPErr("post")
	}
	return gin.H{"post": updated, "message": "文章更新成功!"}, nil
}

func (pr *postRoutes) deletePost(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, err := pr.db.GetPostById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "文章不存在"}
	}
	if !canModify(middleware.MustGetUser(c), post.Author.Id) {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "無權刪除此文章"}
	}

	if err := pr.db.DeletePost(c, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post.Image != "" {
		if err := pr.uploads.Remove(post.Image); err != nil {
			log.Println("failed to remove post image", err)
		}
	}
	return gin.H{"message": "文章已刪除!"}, nil
}

func (pr *postRoutes) getComments(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	comments, err := pr.db.GetCommentsForPost(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"comments": comments}, nil
}

type createCommentReq struct {
	Content         string `json:"content"`
	ParentCommentId int64  `json:"parentCommentId"`
	ReplyToUserId   int64  `json:"replyToUserId"`
}

func (pr *postRoutes) createComment(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req createCommentReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "留言內容不能為空"}
	}

	post, err := pr.db.GetPostById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "文章不存在"}
	}

	if req.ParentCommentId != 0 {
		parent, err := pr.db.GetCommentById(c, req.ParentCommentId)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if parent == nil {
			return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "要回覆的留言不存在"}
		}
	}

	commentId, err := pr.db.CreateComment(c, &db.CreateComment{
		AuthorId:        middleware.MustGetUser(c).Id,
		PostId:          id,
		Content:         util.XSSSanitize(content),
		ParentCommentId: req.ParentCommentId,
		ReplyToUserId:   req.ReplyToUserId,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	comment, err := pr.db.GetCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, util.BuildReadBackHTTPErr("comment")
	}
	return gin.H{"comment": comment, "message": "留言成功!"}, nil
}

type updateCommentReq struct {
	Content string `json:"content"`
}

func (pr *postRoutes) updateComment(c *gin.Context) (interface{}, *util.HTTPError) {
	commentId, httpErr := util.ParseId(c.Param("commentId"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req updateCommentReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "留言內容不能為空"}
	}

	comment, err := pr.db.GetCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "留言不存在"}
	}
	// Stricter than the post rule: admins cannot edit other people's comments.
	if comment.Author.Id != middleware.MustGetUser(c).Id {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "只有留言作者可以編輯"}
	}

	if err := pr.db.UpdateComment(c, commentId, util.XSSSanitize(content)); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	updated, err := pr.db.GetCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if updated == nil {
		return nil, util.BuildReadBackHTTPErr("comment")
	}
	return gin.H{"comment": updated, "message": "留言已更新!"}, nil
}

func (pr *postRoutes) deleteComment(c *gin.Context) (interface{}, *util.HTTPError) {
	commentId, httpErr := util.ParseId(c.Param("commentId"))
	if httpErr != nil {
		return nil, httpErr
	}
	comment, err := pr.db.GetCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "留言不存在"}
	}
	if !canModify(middleware.MustGetUser(c), comment.Author.Id) {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "無權刪除此留言"}
	}

	if err := pr.db.DeleteComment(c, commentId); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"message": "留言已刪除!"}, nil
}
