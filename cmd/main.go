package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"trip-planner/internal/auth"
	"trip-planner/internal/config"
	"trip-planner/internal/database"
	"trip-planner/internal/handlers"
	"trip-planner/internal/jobs"
	"trip-planner/internal/optimistic"
	"trip-planner/internal/repository"
	"trip-planner/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize services
	authService := services.NewAuthService(database.GetDB())
	userService := services.NewUserService(repo)
	notificationService := services.NewNotificationService(database.GetDB())
	votingService := services.NewVotingService(database.GetDB())
	inviteService := services.NewInviteService(database.GetDB(), notificationService)
	proposalService := services.NewProposalService(repo, votingService, notificationService)

	// The optimistic coordinator owns the shared view cache; all
	// mutation entry points go through it
	coordinator := optimistic.NewCoordinator(optimistic.NewViewCache())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	tripHandler := handlers.NewTripHandler(repo)
	proposalHandler := handlers.NewProposalHandler(proposalService, coordinator)
	voteHandler := handlers.NewVoteHandler(votingService, proposalService, coordinator)
	inviteHandler := handlers.NewInviteHandler(inviteService, repo, coordinator)
	scheduleHandler := handlers.NewScheduleHandler(repo)

	// Start deadline watcher job
	interval, err := time.ParseDuration(cfg.App.DeadlineWatcherInterval)
	if err != nil {
		interval = time.Minute
	}
	deadlineWatcher := jobs.NewDeadlineWatcher(repo, notificationService, interval)
	go deadlineWatcher.Start()
	defer deadlineWatcher.Stop()

	// Set up router
	router := gin.Default()

	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Trip endpoints
		api.POST("/trips", tripHandler.CreateTrip)
		api.GET("/trips/:id", tripHandler.GetTrip)
		api.POST("/trips/:id/members", tripHandler.AddMember)

		// Proposal endpoints
		api.POST("/trips/:id/proposals", proposalHandler.CreateProposal)
		api.GET("/trips/:id/proposals", proposalHandler.ListProposals)
		api.POST("/proposals/:id/cancel", proposalHandler.CancelProposal)
		api.POST("/proposals/:id/convert", proposalHandler.ConvertProposal)

		// Voting endpoints
		api.POST("/proposals/:id/rank", voteHandler.SubmitRank)
		api.GET("/proposals/:id/rankings", voteHandler.GetRankings)

		// Schedule endpoints
		api.GET("/trips/:id/schedule", scheduleHandler.GetSchedule)
		api.POST("/trips/:id/schedule", scheduleHandler.CreateEntry)

		// Invite endpoints
		api.POST("/schedule/:id/respond", inviteHandler.Respond)
		api.GET("/schedule/:id/invites", inviteHandler.ListInvites)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
