package main

import (
	"context"
	"encoding/gob"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizdrop/internal/api"
	"quizdrop/internal/api/handlers"
	"quizdrop/internal/groq"
	"quizdrop/internal/ratelimit"

	sessions "github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	googleOauthConfig *oauth2.Config
	sessionSecretKey  []byte

	storeName = "quizdrop_session"
)

func init() {
	// Load environment variables FIRST
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("FATAL: SESSION_SECRET must be set.")
	}
	sessionSecretKey = []byte(secret)

	// The profile is stored in the session cookie, so gob needs the concrete type.
	gob.Register(handlers.UserProfile{})

	// --- Google OAuth Configuration ---
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		log.Fatal("FATAL: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REDIRECT_URL environment variables must be set.")
	}

	googleOauthConfig = &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

func main() {
	// A missing Groq credential is not fatal: it surfaces per-request as a
	// service-configuration error so operators can tell it apart from
	// transient upstream failures.
	if os.Getenv("GROQ_API_KEY") == "" {
		log.Println("WARN: GROQ_API_KEY is not set; quiz generation requests will fail until it is configured.")
	}
	groqClient := groq.NewClient()

	// Rate-limit store: in-process by default, SQLite-backed when a path is
	// configured.
	var store ratelimit.Store
	if dbPath := os.Getenv("RATE_LIMIT_DB"); dbPath != "" {
		sqliteStore, err := ratelimit.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatalf("Failed to open rate limit store: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("INFO: Using SQLite rate limit store at %s", dbPath)
	} else {
		store = ratelimit.NewMemoryStore()
		log.Println("INFO: Using in-memory rate limit store (quotas reset on restart)")
	}
	limiter := ratelimit.NewLimiter(store)

	// Set up Gin router
	router := gin.Default()

	sessionStore := cookie.NewStore(sessionSecretKey)
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		Secure:   false,     // TODO: Set Secure=true in production (requires HTTPS)
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, sessionStore))

	// Set up API handlers
	handler := handlers.NewHandler(googleOauthConfig, storeName, groqClient, limiter)
	api.SetupRoutes(router, handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
