package routes

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/middleware"
	"github.com/stopmotionlab/blog-be/model"
	"github.com/stopmotionlab/blog-be/services"
	"github.com/stopmotionlab/blog-be/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const (
	oauthStateKey = "oauth_state"
	// invalidCredentialsMsg is shared by every login failure mode so callers
	// cannot probe which accounts exist or which use Google.
	invalidCredentialsMsg = "登入資訊錯誤"
)

type authRoutes struct {
	db           db.Database
	google       *services.GoogleProvider
	clientOrigin string
}

// AddAuthRoutes mounts registration, login and the Google OAuth flow.
// google may be nil, which leaves the OAuth endpoints unregistered.
func AddAuthRoutes(group *gin.RouterGroup, database db.Database, google *services.GoogleProvider, clientOrigin string) {
	routes := authRoutes{db: database, google: google, clientOrigin: clientOrigin}
	auth := group.Group("/auth")
	auth.POST("/register", util.HandlerWrapper(routes.register, &util.HandlerOpts{}))
	auth.POST("/login", util.HandlerWrapper(routes.login, &util.HandlerOpts{}))
	auth.POST("/logout", util.HandlerWrapper(routes.logout, &util.HandlerOpts{}))

	profile := auth.Group("/profile", middleware.Auth(database, &middleware.AuthConfig{}))
	profile.GET("", util.HandlerWrapper(routes.getProfile, &util.HandlerOpts{}))
	profile.PUT("", util.HandlerWrapper(routes.updateProfile, &util.HandlerOpts{}))

	if google != nil {
		auth.GET("/google", routes.googleLogin)
		auth.GET("/google/callback", routes.googleCallback)
	}
}

type registerReq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (ar *authRoutes) register(c *gin.Context) (interface{}, *util.HTTPError) {
	var req registerReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	if req.Email == "" || req.Password == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "Email 和密碼為必填"}
	}

	if existing, err := ar.db.GetUserByEmail(c, req.Email); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	} else if existing != nil {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "Email 已被使用"}
	}
	if req.Username != "" {
		if existing, err := ar.db.GetUserByUsername(c, req.Username); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		} else if existing != nil {
			return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "使用者名稱已被使用"}
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("password hashing failed", err)
		return nil, &util.HTTPError{Status: http.StatusInternalServerError, Message: "Server error"}
	}

	username := req.Username
	if username == "" {
		username = emailLocalPart(req.Email)
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = username
	}

	userId, err := ar.db.CreateUser(c, &db.CreateUser{
		Username:     username,
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	})
	if err != nil {
		// Races between the pre-checks and the insert surface here. MySQL 8
		// reports the key as 'person.username', older servers as 'username'.
		if db.IsDupKeyErr(err) {
			if strings.HasSuffix(db.GetDupKey(err), "username") {
				return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "使用者名稱已被使用"}
			}
			return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "Email 已被使用"}
		}
		return nil, util.BuildDbHTTPErr(err)
	}

	user, err := ar.db.GetUserById(c, userId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil {
		return nil, util.BuildReadBackHTTPErr("user")
	}
	if err := middleware.SetSessionUser(c, user.Id); err != nil {
		log.Println("failed to save session", err)
		return nil, &util.HTTPError{Status: http.StatusInternalServerError, Message: "Server error"}
	}
	return gin.H{"user": user, "message": "註冊成功！"}, nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ar *authRoutes) login(c *gin.Context) (interface{}, *util.HTTPError) {
	var req loginReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	if req.Email == "" || req.Password == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "Email 和密碼為必填"}
	}

	user, err := ar.db.GetUserByEmail(c, req.Email)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil || !user.HasPassword() {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: invalidCredentialsMsg}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: invalidCredentialsMsg}
	}

	if err := middleware.SetSessionUser(c, user.Id); err != nil {
		log.Println("failed to save session", err)
		return nil, &util.HTTPError{Status: http.StatusInternalServerError, Message: "Server error"}
	}
	return gin.H{"user": user, "message": "登入成功！"}, nil
}

func (ar *authRoutes) logout(c *gin.Context) (interface{}, *util.HTTPError) {
	if err := middleware.ClearSession(c); err != nil {
		log.Println("failed to destroy session", err)
		return nil, &util.HTTPError{Status: http.StatusInternalServerError, Message: "Could not logout"}
	}
	return gin.H{"message": "登出成功！"}, nil
}

func (ar *authRoutes) getProfile(c *gin.Context) (interface{}, *util.HTTPError) {
	return gin.H{"user": middleware.MustGetUser(c)}, nil
}

type updateProfileReq struct {
	DisplayName string `json:"displayName"`
}

func (ar *authRoutes) updateProfile(c *gin.Context) (interface{}, *util.HTTPError) {
	var req updateProfileReq
	if err := c.BindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	if req.DisplayName == "" {
		return nil, &util.HTTPError{Status: http.StatusBadRequest, Message: "Display name is required"}
	}

	user := middleware.MustGetUser(c)
	if err := ar.db.SetDisplayName(c, user.Id, req.DisplayName); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	updated, err := ar.db.GetUserById(c, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if updated == nil {
		return nil, util.BuildReadBackHTTPErr("user")
	}
	return gin.H{"user": updated, "message": "名稱更新成功！"}, nil
}

func (ar *authRoutes) googleLogin(c *gin.Context) {
	state, err := generateRandomState(32)
	if err != nil {
		log.Println("failed to generate oauth state", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server error"})
		return
	}

	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		log.Println("failed to save session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Server error"})
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, ar.google.AuthURL(state))
}

func (ar *authRoutes) googleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState, _ := session.Get(oauthStateKey).(string)
	session.Delete(oauthStateKey)
	_ = session.Save()

	if savedState == "" || c.Query("state") != savedState {
		log.Println("oauth state mismatch")
		ar.failLogin(c)
		return
	}

	token, err := ar.google.ExchangeCode(c, c.Query("code"))
	if err != nil {
		log.Println("oauth code exchange failed", err)
		ar.failLogin(c)
		return
	}
	info, err := ar.google.GetUserInfo(c, token)
	if err != nil {
		log.Println("oauth userinfo fetch failed", err)
		ar.failLogin(c)
		return
	}

	user, err := ar.resolveGoogleUser(c, info)
	if err != nil {
		log.Println("oauth account resolution failed", err)
		ar.failLogin(c)
		return
	}

	// Same session shape as a password login.
	if err := middleware.SetSessionUser(c, user.Id); err != nil {
		log.Println("failed to save session", err)
		ar.failLogin(c)
		return
	}
	c.Redirect(http.StatusFound, ar.clientOrigin)
}

// resolveGoogleUser implements the account-linking order: by Google id, then
// by email (linking the Google id to the existing account), then a fresh
// account with no local password.
func (ar *authRoutes) resolveGoogleUser(c *gin.Context, info *services.GoogleUserInfo) (*model.User, error) {
	user, err := ar.db.GetUserByGoogleId(c, info.Sub)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user, err = ar.db.GetUserByEmail(c, info.Email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := ar.db.LinkGoogleAccount(c, user.Id, info.Sub, info.Name); err != nil {
			return nil, err
		}
		return ar.db.GetUserById(c, user.Id)
	}

	username, err := ar.availableUsername(c, emailLocalPart(info.Email))
	if err != nil {
		return nil, err
	}
	userId, err := ar.db.CreateUser(c, &db.CreateUser{
		Username:    username,
		Email:       info.Email,
		DisplayName: info.Name,
		GoogleId:    info.Sub,
	})
	if err != nil {
		return nil, err
	}
	return ar.db.GetUserById(c, userId)
}

// availableUsername appends a counter when the email local part is already
// taken by another account.
func (ar *authRoutes) availableUsername(c *gin.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		existing, err := ar.db.GetUserByUsername(c, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

func (ar *authRoutes) failLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, strings.TrimSuffix(ar.clientOrigin, "/")+"/login")
}

func generateRandomState(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
