package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/ravenlane/compo/internal/app"
	"github.com/ravenlane/compo/internal/config"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(setup)

type params struct {
	fx.In

	Facade *app.CompoFacade
	Config *config.Config
	Logger *slog.Logger
}

func setup(p params) *gin.Engine {
	return Setup(p.Facade, p.Config.AdminToken, p.Logger)
}
