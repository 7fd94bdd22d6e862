package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mailforge/mailforge-backend/internal/db"
	"github.com/mailforge/mailforge-backend/internal/generation"
	"github.com/mailforge/mailforge-backend/internal/handlers"
	"github.com/mailforge/mailforge-backend/internal/induction"
	"github.com/mailforge/mailforge-backend/internal/knowledge"
	"github.com/mailforge/mailforge-backend/internal/logger"
	"github.com/mailforge/mailforge-backend/internal/repos"
	"github.com/mailforge/mailforge-backend/internal/server"
	"github.com/mailforge/mailforge-backend/internal/services"
	"github.com/mailforge/mailforge-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.NewService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	eventRepo := repos.NewEventRepo(theDB, log)
	contentTypeRepo := repos.NewContentTypeRepo(theDB, log)
	templateRepo := repos.NewTemplateRepo(theDB, log)
	knowledgeItemRepo := repos.NewKnowledgeItemRepo(theDB, log)
	mailingListRepo := repos.NewMailingListRepo(theDB, log)
	topicRepo := repos.NewTopicRepo(theDB, log)
	generatedEmailRepo := repos.NewGeneratedEmailRepo(theDB, log)
	aiCallLogRepo := repos.NewAICallLogRepo(theDB, log)

	// Redis (optional query-embedding cache)
	var cache *redis.Client
	if addr := utils.GetEnv("REDIS_ADDR", "", log); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		})
	}

	// Services
	log.Info("Setting up Services from main...")
	aiClient, err := services.NewAIClient(log)
	if err != nil {
		log.Error("Could not init AIClient", "error", err)
		os.Exit(1)
	}
	loggedAI := services.NewLoggedAIClient(aiClient, aiCallLogRepo, log)

	defaultModel := utils.GetEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini", log)
	index := knowledge.NewIndex(knowledgeItemRepo, loggedAI, cache, log)
	fetcher := services.NewDocFetcher(log)
	syncer := knowledge.NewSyncer(index, fetcher, log)

	inducer := induction.NewInducer(log)
	templateService := services.NewTemplateService(inducer, loggedAI, defaultModel, templateRepo, log)

	pipeline := generation.NewService(generation.ServiceDeps{
		AI:           loggedAI,
		Index:        index,
		DefaultModel: defaultModel,
		Events:       eventRepo,
		ContentTypes: contentTypeRepo,
		Templates:    templateRepo,
		Lists:        mailingListRepo,
		Topics:       topicRepo,
		Emails:       generatedEmailRepo,
	}, log)

	// Handlers
	log.Info("Setting up handlers from main...")
	eventHandler := handlers.NewEventHandler(eventRepo, syncer)
	catalogHandler := handlers.NewCatalogHandler(contentTypeRepo, mailingListRepo, topicRepo)
	templateHandler := handlers.NewTemplateHandler(templateService)
	knowledgeHandler := handlers.NewKnowledgeHandler(index)
	generateHandler := handlers.NewGenerateHandler(pipeline, generatedEmailRepo, knowledgeItemRepo)

	var providerHandler *handlers.ProviderHandler
	if mailer, err := services.NewMailer(log); err != nil {
		log.Warn("Mailer disabled", "error", err)
	} else {
		providerHandler = handlers.NewProviderHandler(mailer, generatedEmailRepo)
	}

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if raw := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log); raw != "" {
		origins = strings.Split(raw, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		EventHandler:     eventHandler,
		CatalogHandler:   catalogHandler,
		TemplateHandler:  templateHandler,
		KnowledgeHandler: knowledgeHandler,
		GenerateHandler:  generateHandler,
		ProviderHandler:  providerHandler,
		AllowOrigins:     origins,
		APIKey:           utils.GetEnv("API_KEY", "", log),
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
