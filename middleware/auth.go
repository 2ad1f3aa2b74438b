package middleware

import (
	"net/http"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionUserIdKey = "user_id"
	UserKey          = "user"
)

type AuthConfig struct {
	// sessionNotRequired lets unauthenticated requests through without a user
	// in the context, for public read endpoints.
	SessionNotRequired bool
}

// Auth resolves the cookie session into a user and stores it on the context.
func Auth(userDB db.UserDatabase, config *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userId, ok := session.Get(SessionUserIdKey).(int64)
		if !ok {
			if config.SessionNotRequired {
				return
			}
			abortUnauthenticated(c)
			return
		}

		user, err := userDB.GetUserById(c, userId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"ok":    false,
				"error": "Server error",
			})
			c.Abort()
			return
		}
		if user == nil {
			// Stale session pointing at a deleted account.
			if config.SessionNotRequired {
				return
			}
			abortUnauthenticated(c)
			return
		}
		c.Set(UserKey, user)
	}
}

// RequireAdmin aborts non-admin requests. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUserMaybe(c)
		if user == nil {
			abortUnauthenticated(c)
			return
		}
		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"ok":    false,
				"error": "需要管理員權限",
			})
			c.Abort()
			return
		}
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"ok":    false,
		"error": "請先登入",
	})
	c.Abort()
}

// MustGetUser returns the authenticated user. Only valid behind Auth without
// SessionNotRequired.
func MustGetUser(c *gin.Context) *model.User {
	user, _ := c.Get(UserKey)
	return user.(*model.User)
}

// GetUserMaybe returns the authenticated user or nil.
func GetUserMaybe(c *gin.Context) *model.User {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	return user.(*model.User)
}

// SetSessionUser records the user on the session, the single login shape
// shared by register, password login and the OAuth callback.
func SetSessionUser(c *gin.Context, userId int64) error {
	session := sessions.Default(c)
	session.Set(SessionUserIdKey, userId)
	return session.Save()
}

// ClearSession destroys the session and expires the cookie.
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	return session.Save()
}
