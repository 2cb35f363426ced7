package main

import (
	"context"  // context package is needed for Redis operations
	"log"      // log package is needed for logging
	"net/http" // Serving through the method-override wrapper

	"yelpcamp/internal/api"        // Custom package for controllers
	"yelpcamp/internal/config"     // Custom package for configuration
	"yelpcamp/internal/geocode"    // Geocoding collaborator
	"yelpcamp/internal/middleware" // Custom package for middleware
	"yelpcamp/internal/session"    // Redis-backed sessions
	"yelpcamp/internal/storage"    // Image hosting collaborator

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database; the handle is shared for the life of the process
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Collaborators: session store, page cache, image hosting, geocoding
	sessions := session.NewStore(redisClient)
	cache := session.NewCache(redisClient)
	files, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logrus.Fatalf("failed to prepare upload directory: %v", err)
	}
	geocoder := geocode.NewClient(cfg.GeocoderURL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	r.LoadHTMLGlob("templates/*.html")      // Server-rendered pages
	r.Static("/uploads", cfg.UploadDir)     // Serve stored campground images
	r.Use(middleware.LoadSession(sessions, cfg.SessionSecret)) // Every route sees the session

	// Home
	r.GET("/", api.HomeHandler())

	// Campground routes
	camps := r.Group("/campgrounds")
	camps.GET("", api.ListCampgroundsHandler(db, cache))                         // Index
	camps.GET("/new", middleware.RequireLogin(), api.NewCampgroundFormHandler()) // Create form
	camps.POST("",
		middleware.RequireLogin(),
		middleware.ValidateCampground(),
		api.CreateCampgroundHandler(db, cache, geocoder, files)) // Create
	camps.GET("/:id", api.ShowCampgroundHandler(db)) // Show
	camps.GET("/:id/edit",
		middleware.RequireLogin(),
		middleware.CampgroundAuthor(db),
		api.EditCampgroundFormHandler(db)) // Edit form
	camps.PUT("/:id",
		middleware.RequireLogin(),
		middleware.CampgroundAuthor(db),
		middleware.ValidateCampground(),
		api.UpdateCampgroundHandler(db, cache, geocoder, files)) // Update
	camps.DELETE("/:id",
		middleware.RequireLogin(),
		middleware.CampgroundAuthor(db),
		api.DeleteCampgroundHandler(db, cache, files)) // Delete

	// Review routes, nested under the campground
	camps.POST("/:id/reviews",
		middleware.RequireLogin(),
		middleware.ValidateReview(),
		api.CreateReviewHandler(db)) // Create review
	camps.DELETE("/:id/reviews/:reviewId",
		middleware.RequireLogin(),
		middleware.ReviewAuthor(db),
		api.DeleteReviewHandler(db)) // Delete review

	// Auth routes
	r.GET("/register", api.RegisterFormHandler())                            // Registration form
	r.POST("/register", api.RegisterHandler(db, sessions, cfg.SessionSecret)) // Registration endpoint
	r.GET("/login", api.LoginFormHandler())                                  // Login form
	r.POST("/login", api.LoginHandler(db, sessions, cfg.SessionSecret))      // Login endpoint
	r.GET("/logout", api.LogoutHandler(sessions, cfg.SessionSecret))         // Logout endpoint

	// Anything else is a 404 page
	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"status":  http.StatusNotFound,
			"message": "Page Not Found",
		})
	})

	log.Println("Server running on " + cfg.AppPort) // Log server start
	// HTML forms reach PUT/DELETE through the _method override wrapper
	if err := http.ListenAndServe(":"+cfg.AppPort, middleware.MethodOverride(r)); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
