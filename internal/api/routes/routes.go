// server/internal/api/routes/routes.go
package routes

import (
	"slices"
	"time"

	"edc-panorama-api-server/config"
	"edc-panorama-api-server/internal/api/handlers"
	"edc-panorama-api-server/internal/api/middleware"
	"edc-panorama-api-server/internal/auth"
	"edc-panorama-api-server/internal/database"
	"edc-panorama-api-server/internal/models"
	"edc-panorama-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services shared by the handlers.
type Dependencies struct {
	Config    config.Config
	Store     database.Store
	Hub       *socket.Hub
	Tokens    *auth.TokenIssuer
	Throttle  *auth.Throttle
	Uploader  handlers.PhotoUploader
	Assistant handlers.Asker
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// SetupRouter wires every handler under /api/v1.
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(deps.Config.Server.AllowedOrigins)))

	authHandler := &handlers.AuthHandler{Store: deps.Store, Tokens: deps.Tokens, Throttle: deps.Throttle}
	userHandler := &handlers.UserHandler{Store: deps.Store, Hub: deps.Hub, BcryptCost: deps.Config.Auth.BcryptCost}
	assetHandler := &handlers.AssetHandler{Store: deps.Store, Hub: deps.Hub, Uploader: deps.Uploader}
	adminHandler := &handlers.AdminHandler{Store: deps.Store, Hub: deps.Hub}
	configHandler := &handlers.ConfigHandler{Store: deps.Store, Hub: deps.Hub}
	dashboardHandler := &handlers.DashboardHandler{Store: deps.Store}
	assistantHandler := &handlers.AssistantHandler{Store: deps.Store, Assistant: deps.Assistant}
	webSocketHandler := &handlers.WebSocketHandler{
		Hub:            deps.Hub,
		Tokens:         deps.Tokens,
		Users:          deps.Store,
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
	}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
		}

		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(deps.Tokens, deps.Store))
		{
			protected.GET("/me", userHandler.Me)
			protected.PUT("/me/theme", userHandler.SetTheme)
			protected.GET("/config", configHandler.GetConfig)

			dashboard := protected.Group("/dashboard")
			dashboard.Use(middleware.RequirePermission(models.PermViewDashboard))
			{
				dashboard.GET("", dashboardHandler.Stats)
				dashboard.GET("/chart", dashboardHandler.Chart)
			}

			assets := protected.Group("/assets")
			{
				assets.GET("", middleware.RequirePermission(models.PermReadList), assetHandler.ListAssets)
				assets.GET("/next-code", middleware.RequirePermission(models.PermCreate), assetHandler.NextCode)
				assets.GET("/export", middleware.RequirePermission(models.PermExport), assetHandler.ExportAssets)
				assets.GET("/:id", middleware.RequirePermission(models.PermReadList), assetHandler.GetAsset)
				assets.POST("", middleware.RequirePermission(models.PermCreate), assetHandler.CreateAsset)
				assets.PUT("/:id", middleware.RequirePermission(models.PermUpdate), assetHandler.UpdateAsset)
				assets.DELETE("/:id", middleware.RequirePermission(models.PermDelete), assetHandler.ArchiveAsset)
				assets.POST("/:id/photo", middleware.RequirePermission(models.PermUpdate), assetHandler.UploadPhoto)
			}

			ai := protected.Group("/assistant")
			{
				ai.GET("/greeting", assistantHandler.Greeting)
				ai.POST("/messages", assistantHandler.Ask)
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.RequirePermission(models.PermAdmin))
			{
				users := admin.Group("/users")
				{
					users.GET("", userHandler.ListUsers)
					users.POST("", userHandler.CreateUser)
					users.PUT("/:id", userHandler.UpdateUser)
					users.DELETE("/:id", userHandler.DeleteUser)
				}

				admin.GET("/logs", adminHandler.ListLogs)
				admin.PUT("/config", configHandler.UpdateConfig)
				admin.DELETE("/trash", adminHandler.EmptyTrash)

				adminAssets := admin.Group("/assets")
				{
					adminAssets.GET("/archived", adminHandler.ListArchived)
					adminAssets.GET("/import-template", adminHandler.ImportTemplate)
					adminAssets.POST("/import", adminHandler.ImportAssets)
					adminAssets.POST("/:id/restore", adminHandler.RestoreAsset)
					adminAssets.DELETE("/:id", adminHandler.PurgeAsset)
				}
			}
		}
	}

	return router
}
