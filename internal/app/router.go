package app

import (
	"log"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/config"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/middleware"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/service"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/util"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	// Set Gin mode
	if cfg.ServerPort == "5000" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registerValidators()

	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware(cfg.ClientURL))

	// Rate limiting middleware (if enabled)
	if cfg.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.Invitation{},
		&model.Friendship{},
		&model.Ticket{},
		&model.WantedTicket{},
		&model.Notification{},
		&model.FunctionAttempt{},
		&model.SuspiciousActivity{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// Initialize Redis with retry logic
	redisClient := initRedisWithRetry(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db, redisClient)
	ticketRepo := repository.NewTicketRepository(db, redisClient)
	wantedRepo := repository.NewWantedTicketRepository(db)
	notificationRepo := repository.NewNotificationRepository(db, redisClient)
	attemptRepo := repository.NewAttemptRepository(db)
	suspiciousRepo := repository.NewSuspiciousActivityRepository(db)

	// Initialize RabbitMQ with retry logic
	rabbitMQ := initRabbitMQWithRetry(cfg)

	// Initialize email service
	emailService := service.NewEmailService(cfg)

	// Initialize email worker if RabbitMQ is available
	if rabbitMQ != nil {
		emailWorker := service.NewEmailWorker(emailService, rabbitMQ)
		if err := emailWorker.Start(); err != nil {
			log.Printf("Warning: Failed to start email worker: %v", err)
		} else {
			log.Println("Email worker started successfully")
		}
	} else {
		log.Println("Email worker not started - RabbitMQ connection failed. Invitation emails will be sent directly.")
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("WebSocket hub started")

	// Initialize Cloudinary client
	var cloudinaryClient *util.CloudinaryClient
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		var err error
		cloudinaryClient, err = util.NewCloudinaryClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v. Image uploads will be disabled.", err)
		} else {
			log.Println("Cloudinary initialized successfully")
		}
	} else {
		log.Println("Cloudinary credentials not configured. Image uploads will be disabled.")
	}

	// Initialize services
	networkService := service.NewNetworkService(friendshipRepo, userRepo)
	rateLimitService := service.NewRateLimitService(attemptRepo, suspiciousRepo)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, rabbitMQ)
	notificationService.SetWSHub(wsHub)
	invitationService := service.NewInvitationService(invitationRepo, userRepo, emailService, rabbitMQ, cfg)
	authService := service.NewAuthService(userRepo, invitationService, rabbitMQ, cfg)
	friendshipService := service.NewFriendshipService(friendshipRepo, userRepo, notificationService)
	ticketService := service.NewTicketService(ticketRepo, userRepo, wantedRepo, networkService, notificationService)
	wantedService := service.NewWantedTicketService(wantedRepo, userRepo)
	feedService := service.NewFeedService(networkService, ticketRepo, wantedRepo)

	// Initialize handlers
	authHandler := NewAuthHandler(authService, cfg.JWTSecret)
	userHandler := NewUserHandler(authService, rateLimitService, cfg)
	invitationHandler := NewInvitationHandler(invitationService, rateLimitService, cfg)
	friendshipHandler := NewFriendshipHandler(friendshipService)
	networkHandler := NewNetworkHandler(networkService)
	ticketHandler := NewTicketHandler(ticketService, feedService, cloudinaryClient)
	wantedHandler := NewWantedTicketHandler(wantedService)
	notificationHandler := NewNotificationHandler(notificationService)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			// Protected routes
			auth.GET("/me", authHandler.AuthMiddleware(), authHandler.GetMe)
			auth.PUT("/email-notifications", authHandler.AuthMiddleware(), authHandler.UpdateEmailNotifications)
		}

		// User routes
		users := api.Group("/users")
		{
			// Public: the invitation form checks addresses before signup,
			// guarded by the abuse-control layer inside the handler
			users.POST("/check-email", userHandler.CheckEmailExists)

			users.Use(authHandler.AuthMiddleware())
			{
				users.GET("/search", userHandler.SearchUsers)
			}
		}

		// Invitation routes
		invitations := api.Group("/invitations")
		{
			// Public: the invitee opens the signup link before being a member
			invitations.GET("/:token", invitationHandler.GetInvitation)

			invitations.Use(authHandler.AuthMiddleware())
			{
				invitations.POST("", invitationHandler.CreateInvitation)
				invitations.GET("", invitationHandler.GetMyInvitations)
			}
		}

		// Friendship routes
		friendships := api.Group("/friendships")
		{
			friendships.Use(authHandler.AuthMiddleware())
			{
				friendships.POST("/request", friendshipHandler.SendFriendRequest)
				friendships.GET("/pending", friendshipHandler.GetPendingRequests)
				friendships.GET("/friends", friendshipHandler.GetFriends)
				friendships.GET("/status/:userID", friendshipHandler.GetFriendshipStatus)
				friendships.GET("/count/:userID", friendshipHandler.GetFriendsCount)
				friendships.POST("/:id/accept", friendshipHandler.AcceptFriendRequest)
				friendships.POST("/:id/reject", friendshipHandler.RejectFriendRequest)
				friendships.DELETE("/:id", friendshipHandler.RemoveFriend)
			}
		}

		// Network routes
		network := api.Group("/network")
		{
			network.Use(authHandler.AuthMiddleware())
			{
				network.GET("", networkHandler.GetMyNetwork)
				network.GET("/mutual/:userID", networkHandler.GetMutualFriends)
			}
		}

		// Ticket routes
		tickets := api.Group("/tickets")
		{
			tickets.Use(authHandler.AuthMiddleware())
			{
				tickets.POST("", ticketHandler.CreateTicket)
				tickets.GET("/mine", ticketHandler.GetMyTickets)
				tickets.GET("/:id", ticketHandler.GetTicket)
				tickets.PUT("/:id", ticketHandler.UpdateTicket)
				tickets.POST("/:id/sold", ticketHandler.MarkSold)
				tickets.POST("/:id/image", ticketHandler.UploadTicketImage)
				tickets.DELETE("/:id", ticketHandler.DeleteTicket)
			}
		}

		// Wanted ticket routes
		wanted := api.Group("/wanted-tickets")
		{
			wanted.Use(authHandler.AuthMiddleware())
			{
				wanted.POST("", wantedHandler.CreateWantedTicket)
				wanted.GET("/mine", wantedHandler.GetMyWantedTickets)
				wanted.PUT("/:id", wantedHandler.UpdateWantedTicket)
				wanted.DELETE("/:id", wantedHandler.DeleteWantedTicket)
			}
		}

		// Market feed
		market := api.Group("/market")
		{
			market.Use(authHandler.AuthMiddleware())
			{
				market.GET("/feed", ticketHandler.GetFeed)
			}
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.Use(authHandler.AuthMiddleware())
			{
				notifications.GET("", notificationHandler.GetNotifications)
				notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
				notifications.PUT("/:id/read", notificationHandler.MarkAsRead)
				notifications.PUT("/read-all", notificationHandler.MarkAllAsRead)
				notifications.DELETE("/:id", notificationHandler.DeleteNotification)
			}
		}
	}

	// WebSocket route
	r.GET("/ws", func(c *gin.Context) {
		websocket.ServeWS(wsHub, cfg.JWTSecret).ServeHTTP(c.Writer, c.Request)
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

// registerValidators adds custom binding rules used by request structs
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// futuredate: the field must be a time.Time in the future. Listings
	// for past events are noise nobody can act on.
	_ = v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
		date, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return date.After(time.Now())
	})
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		dsn = "host=" + cfg.PostgresHost +
			" port=" + cfg.PostgresPort +
			" user=" + cfg.PostgresUser +
			" password=" + cfg.PostgresPassword +
			" dbname=" + cfg.PostgresDB +
			" sslmode=" + cfg.PostgresSSLMode
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// initRabbitMQWithRetry attempts to connect to RabbitMQ with exponential backoff retry
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		rabbitMQ, err := util.NewRabbitMQClient(cfg)
		if err == nil {
			log.Printf("RabbitMQ connected successfully on attempt %d", attempt)
			return rabbitMQ
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to RabbitMQ after %d attempts: %v. Queued email sending will be disabled.", maxRetries, err)
		}
	}

	return nil
}

// initRedisWithRetry attempts to connect to Redis with exponential backoff retry
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	maxRetries := 10
	initialDelay := 2 * time.Second
	maxDelay := 30 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		redisClient, err := util.NewRedisClient(cfg)
		if err == nil {
			log.Printf("Redis connected successfully on attempt %d", attempt)
			return redisClient
		}

		if attempt < maxRetries {
			delay := initialDelay * time.Duration(1<<uint(attempt-1))
			if delay > maxDelay {
				delay = maxDelay
			}

			log.Printf("Failed to connect to Redis (attempt %d/%d): %v. Retrying in %v...", attempt, maxRetries, err, delay)
			time.Sleep(delay)
		} else {
			log.Printf("Warning: Failed to connect to Redis after %d attempts: %v. Caching will be disabled.", maxRetries, err)
		}
	}

	return nil
}

func corsMiddleware(clientURL string) gin.HandlerFunc {
	// Allowed origins (whitelist)
	allowedOrigins := []string{
		clientURL,
		"http://localhost:3000",
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", clientURL)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
