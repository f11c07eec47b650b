package router

import (
	"second-chance/internal/cache"
	"second-chance/internal/database"
	"second-chance/internal/handler"
	"second-chance/internal/handler/auth"
	"second-chance/internal/handler/items"
	"second-chance/internal/logging"
	"second-chance/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB       database.DB
	Cache    cache.Cache // nil when REDIS_ADDR is unset
	Accounts auth.AccountService
	Tokens   middleware.TokenVerifier
	Items    *items.Handler
	Log      logging.Logger
}

// Setup registers every route and its middleware on e.
func Setup(e *echo.Echo, d Deps) {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	api := e.Group("/api")

	api.GET("/ping", handler.PingHandler(d.DB, d.Cache))

	apiAuth := api.Group("/auth")
	apiAuth.POST("/register", auth.RegisterHandler(d.Accounts, d.Log))
	apiAuth.POST("/login", auth.LoginHandler(d.Accounts, d.Log))
	apiAuth.PUT("/update", auth.UpdateHandler(d.Accounts, d.Log), middleware.RequireAuth(d.Tokens))

	apiItems := api.Group("/secondchance/items")
	apiItems.GET("", d.Items.List)
	apiItems.POST("", d.Items.Create)
	apiItems.GET("/:id", d.Items.Get)
	apiItems.PUT("/:id", d.Items.Update)
	apiItems.DELETE("/:id", d.Items.Delete)

	api.GET("/secondchance/search", d.Items.Search)
}
