package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"sns-backend/internal/auth"
	"sns-backend/internal/config"
	"sns-backend/internal/db"
	"sns-backend/internal/handlers"
	"sns-backend/internal/middleware"
	"sns-backend/internal/observability"
	"sns-backend/internal/rankings"
	"sns-backend/internal/repositories"
	"sns-backend/internal/sentiment"
	"sns-backend/internal/ws"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.Debug)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Connect(cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	publisher := observability.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger)
	observability.SetPublisher(publisher)

	shutdownTracing, err := observability.SetupTracing(context.Background(), cfg.Telemetry)
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLMinutes)*time.Minute)
	analyzer := sentiment.NewOpenAIAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger)

	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	friendshipRepo := repositories.NewFriendshipRepo(database)

	hub := ws.NewHub(logger)
	pipeline := ws.NewPipeline(messageRepo, friendshipRepo, analyzer, hub, logger)
	chatWS := ws.NewChatSessionHandler(hub, pipeline, userRepo, tokens, logger)

	authHandler := handlers.NewAuthHandler(userRepo, tokens)
	friendsHandler := handlers.NewFriendsHandler(friendshipRepo, userRepo)
	chatHandler := handlers.NewChatHandler(messageRepo, userRepo)
	rankingsHandler := handlers.NewRankingsHandler(rankings.NewAggregator(friendshipRepo, messageRepo))
	analysisHandler := handlers.NewAnalysisHandler(analyzer)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("", middleware.RequireAuth(tokens))
	authed.GET("/friends", friendsHandler.List)
	authed.POST("/friends", friendsHandler.Add)
	authed.PUT("/friends/:friend_id", friendsHandler.UpdateStatus)
	authed.DELETE("/friends/:friend_id", friendsHandler.Remove)

	authed.GET("/chat/:friend_id", chatHandler.History)
	authed.PUT("/chat/:friend_id/read", chatHandler.MarkRead)
	authed.GET("/chat/:friend_id/unread", chatHandler.Unread)

	authed.GET("/rankings/top-friends", rankingsHandler.TopFriends)

	authed.POST("/analysis/sentiment", analysisHandler.Sentiment)
	authed.POST("/analysis/wordcloud", analysisHandler.WordCloud)
	authed.POST("/analysis/intimacy", analysisHandler.Intimacy)

	// Token arrives as a query parameter; the handler authenticates itself.
	router.GET("/ws/chat/:friend_id", chatWS.Handle)

	logger.Info("starting server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
