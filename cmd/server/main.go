package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hromoibes/love-game-telegram/internal/ai"
	"github.com/hromoibes/love-game-telegram/internal/config"
	"github.com/hromoibes/love-game-telegram/internal/database"
	"github.com/hromoibes/love-game-telegram/internal/game"
	"github.com/hromoibes/love-game-telegram/internal/handlers"
	"github.com/hromoibes/love-game-telegram/internal/middleware"
	"github.com/hromoibes/love-game-telegram/internal/services"
	"github.com/hromoibes/love-game-telegram/internal/telegram"
	"github.com/hromoibes/love-game-telegram/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	hub := ws.NewHub()

	authService := services.NewAuthService(db, cfg.JWTSecret)
	archiveService := services.NewArchiveService(db)

	store := game.NewStore()
	chance := game.NewRandChance(time.Now().UnixNano())
	engine := game.NewEngine(store, chance, game.Config{
		SkipBudget:    cfg.SkipBudget,
		MaxQuestions:  cfg.MaxQuestions,
		ProbUp:        cfg.LevelUpProb,
		ProbDown:      cfg.LevelDownProb,
		AnswerTimeout: cfg.AnswerTimeout,
	})

	aiClient := ai.NewClient(cfg.AIAPIKey, cfg.AIAPIURL, cfg.AIModel)
	if !aiClient.IsAvailable() {
		log.Println("AI_API_KEY not set, falling back to built-in questions")
	}

	tgClient := telegram.NewClient(cfg.TelegramToken)
	stateManager := telegram.NewStateManager()
	updateHandler := telegram.NewUpdateHandler(tgClient, stateManager, engine, aiClient, archiveService, hub)
	botManager := telegram.NewBotManager(tgClient, updateHandler, cfg.TelegramToken, cfg.WebhookBaseURL, cfg.WebhookSecret)

	engine.SetReminderFunc(updateHandler.Remind)

	authHandler := handlers.NewAuthHandler(authService)
	gameHandler := handlers.NewGameHandler(engine, archiveService)
	wsHandler := handlers.NewWSHandler(hub)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/webhook/bot/:secret", botManager.HandleWebhook)
	r.GET("/ws/chat/:chat_id", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(authService))
		{
			protected.GET("/games", gameHandler.ListActive)
			protected.GET("/archive", gameHandler.ListArchive)
			protected.GET("/archive/:id", gameHandler.GetArchived)
			protected.GET("/archive/chat/:chat_id", gameHandler.ChatHistory)
		}
	}

	if cfg.TelegramToken != "" && cfg.WebhookBaseURL != "" {
		if err := botManager.Start(); err != nil {
			log.Printf("bot start failed: %v", err)
		}
	} else {
		log.Println("TELEGRAM_TOKEN or WEBHOOK_BASE_URL not set, webhook not registered")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down")
		botManager.Stop()
		engine.Shutdown()
		os.Exit(0)
	}()

	log.Printf("server listening on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
