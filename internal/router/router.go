package router

import (
	"html/template"
	"regexp"
	"time"

	"campusfeed/internal/config"
	"campusfeed/internal/handlers"
	"campusfeed/internal/middleware"
	"campusfeed/internal/services"
	"campusfeed/web"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

// Setup builds the engine with sessions, templates and every route.
func Setup(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.JWTTTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
	})
	r.Use(sessions.Sessions("campusfeed_session", store))

	r.HTMLRender = LoadTemplates()

	fileStore := services.NewStorage(cfg)
	if local, isLocal := fileStore.(*services.LocalStorage); isLocal {
		r.Static("/files", local.Dir())
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	r.Use(middleware.LoadUser(tokens))

	RegisterRoutes(r, cfg, tokens, fileStore)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, tokens *services.TokenService, store services.Storage) {
	// Handlers
	authHandler := handlers.NewAuthHandler(tokens)
	profileHandler := handlers.NewProfileHandler()
	categoryHandler := handlers.NewCategoryHandler()
	postHandler := handlers.NewPostHandler()
	adminHandler := handlers.NewAdminHandler()
	lmsHandler := handlers.NewLMSHandler()
	noteHandler := handlers.NewNoteHandler()
	uploadHandler := handlers.NewUploadHandler(store)
	newsHandler := handlers.NewNewsHandler(services.NewPushService(cfg.PushGatewayURL, cfg.PushConcurrency), services.NewRSSFetcher())
	aiHandler := handlers.NewAIHandler(services.NewLLMService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL))
	seoHandler := handlers.NewSEOHandler(cfg.SiteURL)
	shareHandler := handlers.NewShareHandler(cfg.SiteURL)

	// 公共页面 (Public Pages)
	r.GET("/p/:ref", shareHandler.Show)        // 文章分享页
	r.GET("/notes/:id/view", noteHandler.View) // 笔记 WebView
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)
	r.GET("/feed.xml", seoHandler.RSSFeed)

	api := r.Group("/api")

	// 认证 (Auth)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// 公共接口 (Public API)
	api.GET("/categories", categoryHandler.List)
	api.GET("/categories/:slug", categoryHandler.Show)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/featured", postHandler.Featured)
	api.GET("/posts/:id", postHandler.Detail)
	api.GET("/news", newsHandler.List)

	api.GET("/learn/categories", lmsHandler.Categories)
	api.GET("/learn/categories/:slug/courses", lmsHandler.CategoryCourses)
	api.GET("/learn/courses/:id", lmsHandler.Course)
	api.GET("/learn/modules/:id", lmsHandler.Module)
	api.GET("/learn/notes/:id", noteHandler.Show)

	// 受保护接口 (Protected API)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.PUT("/me/push-token", profileHandler.SavePushToken)
		authorized.GET("/me/onboarding", profileHandler.Onboarding)
		authorized.POST("/me/onboarding", profileHandler.CompleteOnboarding)
		authorized.DELETE("/me/onboarding", profileHandler.ResetOnboarding)
		authorized.POST("/posts/:id/like", postHandler.ToggleLike)
	}

	// 管理后台 (Admin API)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/analytics", adminHandler.Analytics)
		admin.POST("/analytics/reset", adminHandler.ResetAnalytics)
		admin.POST("/analytics/reconcile", adminHandler.ReconcileLikes)

		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", adminHandler.CreateUser)
		admin.PUT("/users/:id/role", adminHandler.UpdateRole)

		admin.POST("/categories", categoryHandler.Create)
		admin.PUT("/categories/:id", categoryHandler.Update)
		admin.DELETE("/categories/:id", categoryHandler.Delete)

		admin.GET("/posts", postHandler.AdminList)
		admin.POST("/posts", postHandler.Create)
		admin.POST("/posts/import", postHandler.Import)
		admin.PUT("/posts/:id", postHandler.Update)
		admin.DELETE("/posts/:id", postHandler.Delete)

		admin.GET("/course-categories", lmsHandler.AdminCategories)
		admin.POST("/course-categories", lmsHandler.CreateCategory)
		admin.PUT("/course-categories/:id", lmsHandler.UpdateCategory)
		admin.DELETE("/course-categories/:id", lmsHandler.DeleteCategory)

		admin.GET("/courses", lmsHandler.AdminCourses)
		admin.POST("/courses", lmsHandler.CreateCourse)
		admin.PUT("/courses/:id", lmsHandler.UpdateCourse)
		admin.DELETE("/courses/:id", lmsHandler.DeleteCourse)

		admin.GET("/modules", lmsHandler.AdminModules)
		admin.POST("/modules", lmsHandler.CreateModule)
		admin.PUT("/modules/:id", lmsHandler.UpdateModule)
		admin.DELETE("/modules/:id", lmsHandler.DeleteModule)
		admin.GET("/modules/:id/notes", noteHandler.ListByModule)

		admin.POST("/notes", noteHandler.Create)
		admin.PUT("/notes/:id", noteHandler.Update)
		admin.DELETE("/notes/:id", noteHandler.Delete)

		admin.POST("/uploads/:bucket", uploadHandler.Upload)

		admin.GET("/news", newsHandler.List)
		admin.POST("/news", newsHandler.Create)
		admin.POST("/news/import", newsHandler.Import)
		admin.PUT("/news/:id", newsHandler.Update)
		admin.DELETE("/news/:id", newsHandler.Delete)
		admin.POST("/news/:id/send", newsHandler.Send)

		admin.POST("/ai/notes", aiHandler.GenerateNote)
		admin.POST("/ai/enhance", aiHandler.Enhance)
	}
}

// LoadTemplates parses each page together with the shared layout from the embedded FS.
func LoadTemplates() multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"cssColor": func(s string) template.CSS {
			if hexColor.MatchString(s) {
				return template.CSS(s)
			}
			return template.CSS("#6b7280")
		},
	}

	add := func(name, view string) {
		tmpl := template.Must(template.New("base.html").Funcs(funcMap).
			ParseFS(web.Templates, "templates/layouts/base.html", "templates/views/"+view))
		r.Add(name, tmpl)
	}

	add("post/share.html", "post/share.html")
	add("note/view.html", "note/view.html")
	add("error.html", "error.html")

	return r
}
