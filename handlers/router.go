package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"wallet-server/apierr"
	"wallet-server/metrics"
	"wallet-server/middleware"
)

// NewRouter assembles the HTTP surface. /health and /metrics sit outside the
// /api group; the auth gate covers /api and /metrics and lets public routes through.
func NewRouter(d Deps) *gin.Engine {
	h := New(d)

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		h.log.WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.RequestID(),
		middleware.Logger(h.log),
		middleware.Metrics(),
		gin.CustomRecovery(func(c *gin.Context, rec any) {
			apierr.Abort(c, fmt.Errorf("panic: %v", rec))
		}),
	)
	r.NoRoute(func(c *gin.Context) {
		apierr.Abort(c, apierr.NotFound("route not found"))
	})

	r.GET("/health", h.Health)
	r.GET("/health/ready", h.Ready)
	gate := middleware.RequireAuth(d.RequireAuth, d.Issuer)
	r.GET("/metrics", gate, gin.WrapH(metrics.Handler()))

	api := r.Group("/api", gate)
	{
		limited := d.AuthLimiter.Handler()
		api.POST("/auth/login", limited, h.Login)
		api.POST("/auth/refresh", limited, h.Refresh)
		api.POST("/auth/logout", h.Logout)

		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)
		api.PATCH("/users/:id", h.UpdateUser)
		api.DELETE("/users/:id", h.DeleteUser)

		api.POST("/accounts", h.CreateAccount)
		api.GET("/accounts", h.ListAccounts)
		api.GET("/accounts/:id", h.GetAccount)
		api.PATCH("/accounts/:id", h.UpdateAccount)
		api.DELETE("/accounts/:id", h.DeleteAccount)

		api.POST("/transactions", h.CreateTransaction)
		api.GET("/transactions", h.ListTransactions)
		api.GET("/transactions/:id", h.GetTransaction)
		api.PATCH("/transactions/:id", h.UpdateTransaction)
		api.DELETE("/transactions/:id", h.DeleteTransaction)

		api.POST("/assets", h.CreateAsset)
		api.GET("/assets", h.ListAssets)
		api.GET("/assets/:id", h.GetAsset)
		api.PATCH("/assets/:id", h.UpdateAsset)
		api.DELETE("/assets/:id", h.DeleteAsset)

		api.GET("/prices/:symbol", h.GetPrice)
		api.PUT("/prices/:symbol", h.PutPrice)
		api.POST("/prices", h.BatchPrices)

		api.GET("/portfolio", h.GetPortfolio)
	}
	return r
}
