package routes

import (
	"net/http"
	"strings"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/middleware"
	"github.com/stopmotionlab/blog-be/util"

	"github.com/gin-gonic/gin"
)

type discussionRoutes struct {
	db db.Database
}

func AddDiscussionRoutes(group *gin.RouterGroup, database db.Database) {
	routes := discussionRoutes{db: database}
	discussions := group.Group("/discussions")

	discussions.GET("", util.HandlerWrapper(routes.getDiscussions, &util.HandlerOpts{}))
	discussions.GET("/:id", util.HandlerWrapper(routes.getDiscussionById, &util.HandlerOpts{}))
	discussions.GET("/:id/comments", util.HandlerWrapper(routes.getComments, &util.HandlerOpts{}))

	authed := discussions.Group("", middleware.Auth(database, &middleware.AuthConfig{}))
	authed.POST("/create", util.HandlerWrapper(routes.createDiscussion, &util.HandlerOpts{}))
	authed.PUT("/:id", util.HandlerWrapper(routes.updateDiscussion, &util.HandlerOpts{}))
	authed.DELETE("/:id", util.HandlerWrapper(routes.deleteDiscussion, &util.HandlerOpts{}))
	authed.POST("/:id/comments", util.HandlerWrapper(routes.createComment, &util.HandlerOpts{}))
	authed.PUT("/:id/comments/:commentId", util.HandlerWrapper(routes.updateComment, &util.HandlerOpts{}))
	authed.DELETE("/:id/comments/:commentId", util.HandlerWrapper(routes.deleteComment, &util.HandlerOpts{}))
}

func (dr *discussionRoutes) getDiscussions(c *gin.Context) (interface{}, *util.HTTPError) {
	discussions, err := dr.db.GetDiscussions(c)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"discussions": discussions}, nil
}

type createDiscussionReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// createDiscussion is open to every logged-in user, unlike posts.
func (dr *discussionRoutes) createDiscussion(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createDiscussionReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "標題和內容為必填"}
	}

	discussionId, err := dr.db.CreateDiscussion(c, &db.CreateDiscussion{
		AuthorId: middleware.MustGetUser(c).Id,
		Title:    util.XSSSanitize(title),
		Content:  util.XSSSanitize(content),
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	discussion, err := dr.db.GetDiscussionById(c, discussionId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if discussion == nil {
		return nil, util.BuildReadBackHTTPErr("discussion")
	}
	return gin.H{"discussion": discussion, "message": "發文成功!"}, nil
}

func (dr *discussionRoutes) getDiscussionById(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	discussion, err := dr.db.GetDiscussionById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if discussion == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "討論不存在"}
	}
	return gin.H{"discussion": discussion}, nil
}

func (dr *discussionRoutes) updateDiscussion(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	var req createDiscussionReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	discussion, err := dr.db.GetDiscussionById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if discussion == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "討論不存在"}
	}
	if !canModify(middleware.MustGetUser(c), discussion.Author.Id) {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "無權編輯此討論"}
	}

	if err := dr.db.UpdateDiscussion(c, id, &db.UpdateDiscussion{
		Title:   util.XSSSanitize(strings.TrimSpace(req.Title)),
		Content: util.XSSSanitize(strings.TrimSpace(req.Content)),
	}); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	updated, err := dr.db.GetDiscussionById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if updated == nil {
		return nil, util.BuildReadBackHTTPErr("discussion")
	}
	return gin.H{"discussion": updated, "message": "討論已更新!"}, nil
}

func (dr *discussionRoutes) deleteDiscussion(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	discussion, err := dr.db.GetDiscussionById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if discussion == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "討論不存在"}
	}
	if !canModify(middleware.MustGetUser(c), discussion.Author.Id) {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "無權刪除此討論"}
	}

	if err := dr.db.DeleteDiscussion(c, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"message": "討論已刪除!"}, nil
}

func (dr *discussionRoutes) getComments(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	comments, err := dr.db.GetCommentsForDiscussion(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"comments": comments}, nil
}

func (dr *discussionRoutes) createComment(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
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

	discussion, err := dr.db.GetDiscussionById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if discussion == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "討論不存在"}
	}

	commentId, err := dr.db.CreateDiscussionComment(c, &db.CreateDiscussionComment{
		AuthorId:     middleware.MustGetUser(c).Id,
		DiscussionId: id,
		Content:      util.XSSSanitize(content),
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	comment, err := dr.db.GetDiscussionCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, util.BuildReadBackHTTPErr("comment")
	}
	return gin.H{"comment": comment, "message": "留言成功!"}, nil
}

func (dr *discussionRoutes) updateComment(c *gin.Context) (interface{}, *util.HTTPError) {
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

	comment, err := dr.db.GetDiscussionCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "留言不存在"}
	}
	if comment.Author.Id != middleware.MustGetUser(c).Id {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "只有留言作者可以編輯"}
	}

	if err := dr.db.UpdateDiscussionComment(c, commentId, util.XSSSanitize(content)); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	updated, err := dr.db.GetDiscussionCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if updated == nil {
		return nil, util.BuildReadBackHTTPErr("comment")
	}
	return gin.H{"comment": updated, "message": "留言已更新!"}, nil
}

func (dr *discussionRoutes) deleteComment(c *gin.Context) (interface{}, *util.HTTPError) {
	commentId, httpErr := util.ParseId(c.Param("commentId"))
	if httpErr != nil {
		return nil, httpErr
	}
	comment, err := dr.db.GetDiscussionCommentById(c, commentId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if comment == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "留言不存在"}
	}
	if !canModify(middleware.MustGetUser(c), comment.Author.Id) {
		return nil, &util.HTTPError{Status: http.StatusForbidden, Message: "無權刪除此留言"}
	}

	if err := dr.db.DeleteDiscussionComment(c, commentId); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"message": "留言已刪除!"}, nil
}
