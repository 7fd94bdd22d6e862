package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mailforge/mailforge-backend/internal/handlers"
	"github.com/mailforge/mailforge-backend/internal/middleware"
)

type RouterConfig struct {
	EventHandler     *handlers.EventHandler
	CatalogHandler   *handlers.CatalogHandler
	TemplateHandler  *handlers.TemplateHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	GenerateHandler  *handlers.GenerateHandler
	ProviderHandler  *handlers.ProviderHandler

	AllowOrigins []string
	APIKey       string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.RequireAPIKey(cfg.APIKey))
	{
		// Events
		api.POST("/events", cfg.EventHandler.Create)
		api.GET("/events", cfg.EventHandler.List)
		api.GET("/events/:id", cfg.EventHandler.Get)
		api.POST("/events/:id/knowledge/sync", cfg.EventHandler.SyncKnowledge)

		// Planning catalog
		api.POST("/content-types", cfg.CatalogHandler.CreateContentType)
		api.GET("/events/:id/content-types", cfg.CatalogHandler.ListContentTypes)
		api.POST("/mailing-lists", cfg.CatalogHandler.CreateMailingList)
		api.GET("/events/:id/mailing-lists", cfg.CatalogHandler.ListMailingLists)
		api.POST("/topics", cfg.CatalogHandler.CreateTopics)
		api.GET("/events/:id/topics", cfg.CatalogHandler.ListTopics)

		// Templates
		api.POST("/templates/induce", cfg.TemplateHandler.Induce)
		api.GET("/templates/active", cfg.TemplateHandler.GetActive)

		// Knowledge
		api.POST("/knowledge/program", cfg.KnowledgeHandler.IndexProgram)
		api.POST("/knowledge/pain-points", cfg.KnowledgeHandler.IndexPainPoints)
		api.POST("/knowledge/style-snippets", cfg.KnowledgeHandler.IndexStyleSnippets)
		api.POST("/knowledge/search", cfg.KnowledgeHandler.Search)

		// Generation
		api.POST("/generate", cfg.GenerateHandler.Generate)
		api.POST("/generate/batch", cfg.GenerateHandler.GenerateBatch)
		api.GET("/events/:id/emails", cfg.GenerateHandler.ListGenerated)
		api.GET("/emails/:id", cfg.GenerateHandler.GetGenerated)

		// Provider
		if cfg.ProviderHandler != nil {
			api.POST("/emails/:id/push", cfg.ProviderHandler.PushTemplate)
			api.POST("/provider/test-send", cfg.ProviderHandler.SendTest)
			api.GET("/provider/lists", cfg.ProviderHandler.ListLists)
		}
	}

	return router
}
