package routes

import (
	"fmt"
	"net/http"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/middleware"
	"github.com/stopmotionlab/blog-be/util"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	db db.Database
}

func AddAdminRoutes(group *gin.RouterGroup, database db.Database) {
	routes := adminRoutes{db: database}
	admin := group.Group("/admin",
		middleware.Auth(database, &middleware.AuthConfig{}),
		middleware.RequireAdmin())
	admin.GET("/users", util.HandlerWrapper(routes.getUsers, &util.HandlerOpts{}))
	admin.POST("/users/:id/toggle-admin", util.HandlerWrapper(routes.toggleAdmin, &util.HandlerOpts{}))
}

func (ar *adminRoutes) getUsers(c *gin.Context) (interface{}, *util.HTTPError) {
	users, err := ar.db.GetUsers(c)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"users": users}, nil
}

func (ar *adminRoutes) toggleAdmin(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	target, err := ar.db.GetUserById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if target == nil {
		return nil, &util.HTTPError{Status: http.StatusNotFound, Message: "使用者不存在"}
	}
	// Admins cannot demote themselves, so the site always keeps at least the
	// acting admin.
	if target.Id == middleware.MustGetUser(c).Id {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "不能移除自己的管理員權限"}
	}

	isAdmin := !target.IsAdmin
	if err := ar.db.SetAdmin(c, target.Id, isAdmin); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	message := fmt.Sprintf("%s 的管理員權限已移除", target.Username)
	if isAdmin {
		message = fmt.Sprintf("%s 已升級為管理員", target.Username)
	}
	return gin.H{
		"user": gin.H{
			"id":       target.Id,
			"username": target.Username,
			"isAdmin":  isAdmin,
		},
		"message": message,
	}, nil
}
