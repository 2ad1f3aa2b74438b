package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/model"
	"github.com/stopmotionlab/blog-be/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	db      *memDB
	uploads *services.UploadStore
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	database := newMemDB()
	uploads, err := services.NewUploadStore(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Sessions("blog_session", cookie.NewStore([]byte("test-secret"))))

	api := r.Group("/api")
	AddHealthCheckRoutes(api)
	AddAuthRoutes(api, database, nil, "http://localhost:3000")
	AddPostRoutes(api, database, uploads)
	AddDiscussionRoutes(api, database)
	AddAdminRoutes(api, database)

	return &testEnv{db: database, uploads: uploads, router: r}
}

// createUser seeds an account directly in the store, bypassing the register
// endpoint. MinCost keeps the test suite fast.
func (env *testEnv) createUser(t *testing.T, username, email, password string, isAdmin bool) *model.User {
	passwordHash := ""
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		passwordHash = string(hash)
	}
	userId, err := env.db.CreateUser(context.Background(), &db.CreateUser{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  username,
		IsAdmin:      isAdmin,
	})
	require.NoError(t, err)
	user, err := env.db.GetUserById(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

// login runs the password login and returns the session cookies.
func (env *testEnv) login(t *testing.T, email, password string) []*http.Cookie {
	w := env.doJSON(t, http.MethodPost, "/api/auth/login",
		gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (env *testEnv) do(t *testing.T, method, path string, body io.Reader,
	contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) doJSON(t *testing.T, method, path string, body interface{},
	cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	return env.do(t, method, path, reader, "application/json", cookies)
}

// doForm sends a multipart form the way the post editor does.
func (env *testEnv) doForm(t *testing.T, method, path string, fields map[string]string,
	cookies []*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, val := range fields {
		require.NoError(t, writer.WriteField(key, val))
	}
	require.NoError(t, writer.Close())
	return env.do(t, method, path, &buf, writer.FormDataContentType(), cookies)
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
