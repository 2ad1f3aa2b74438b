package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/stopmotionlab/blog-be/config"
	"github.com/stopmotionlab/blog-be/db/mysql"
	"github.com/stopmotionlab/blog-be/routes"
	"github.com/stopmotionlab/blog-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration: ", err)
	}

	database, err := mysql.GetDatabase(cfg.DSN())
	if err != nil {
		log.Fatal("Received err when attempting to connect to DB", err)
	}
	defer database.Close()

	if err := database.RunMigrations(context.Background()); err != nil {
		log.Fatal("an error occurred while running migrations", err)
	}

	uploads, err := services.NewUploadStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("an error occurred while preparing the upload directory", err)
	}

	var google *services.GoogleProvider
	if cfg.GoogleOAuthEnabled() {
		google = services.NewGoogleProvider(services.GoogleProviderConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleCallbackURL(),
		})
	} else {
		log.Println("Google OAuth not configured; /api/auth/google routes disabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	clientOrigins := strings.Split(cfg.ClientOrigin, ";")
	r.Use(cors.New(cors.Config{
		AllowOrigins:     clientOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   24 * 60 * 60, // 1 day
	})
	r.Use(sessions.Sessions("blog_session", sessionStore))

	// uploaded images are served straight from disk
	r.Static(services.PublicUploadPath, uploads.Dir())
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Stop Motion Blog API running"})
	})

	apiGroup := r.Group("/api")
	routes.AddHealthCheckRoutes(apiGroup)
	routes.AddAuthRoutes(apiGroup, database, google, clientOrigins[0])
	routes.AddPostRoutes(apiGroup, database, uploads)
	routes.AddDiscussionRoutes(apiGroup, database)
	routes.AddAdminRoutes(apiGroup, database)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Error when attempting to run web server", err)
	}
}
