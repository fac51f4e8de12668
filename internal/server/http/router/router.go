package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ravenlane/compo/internal/server/http/handlers"
	"github.com/ravenlane/compo/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware. adminToken
// guards the admin group; empty disables it.
func Setup(facade handlers.CompoFacade, adminToken string, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	competitionHandler := handlers.NewCompetitionHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)
	webhookHandler := handlers.NewWebhookHandler(facade)
	accountHandler := handlers.NewAccountHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	api := engine.Group("/api")

	api.POST("/user/register", authHandler.Register)
	api.POST("/user/login", authHandler.Login)

	api.GET("/competitions", competitionHandler.List)
	api.GET("/competitions/:id", competitionHandler.Get)

	// Checkout and confirmation work for guests; a valid session links
	// the order to the account.
	public := api.Group("")
	public.Use(middleware.AuthOptional(facade))
	public.POST("/checkout", checkoutHandler.Checkout)
	public.GET("/orders/:ref", checkoutHandler.Get)
	public.POST("/orders/:ref/confirm", checkoutHandler.Confirm)

	api.POST("/webhooks/:provider", webhookHandler.Receive)

	userAuth := api.Group("/user")
	userAuth.Use(middleware.AuthRequired(facade))
	userAuth.GET("/orders", accountHandler.Orders)
	userAuth.GET("/tickets", accountHandler.Tickets)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(adminToken))
	admin.POST("/competitions", adminHandler.CreateCompetition)
	admin.POST("/feed/bust", adminHandler.BustHomeFeed)

	return engine
}
