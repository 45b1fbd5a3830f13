package api

import (
	"quizdrop/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.Use(CORSMiddleware())

	// --- Public Auth Routes ---
	router.GET("/login", handler.HandleGoogleLogin)
	router.GET("/auth/google/callback", handler.HandleGoogleCallback)

	// --- API Routes ---
	api := router.Group("/api")
	{
		api.GET("/auth/status", handler.HandleAuthStatus)

		// Protected API routes - Apply AuthRequired middleware
		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			authorized.GET("/user/profile", handler.HandleUserProfile)
			authorized.POST("/logout", handler.HandleLogout)

			authorized.POST("/quizzes/generate", handler.HandleGenerateQuiz)
		}
	}
}
