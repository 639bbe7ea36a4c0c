package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"deforest-api/internal/core/auth"
	"deforest-api/internal/transport/http/handler"
	mdw "deforest-api/internal/transport/http/middleware"
)

type Options struct {
	Logger      *zap.Logger
	JWTer       *auth.JWTer
	Auth        *handler.AuthHandler
	Admin       *handler.AdminHandler
	Predict     *handler.PredictHandler
	CORSOrigins []string
}

func NewAPIEngine(o Options) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(60*time.Second),
		// outer recovery logs stacks for panics raised below; the inner one
		// close to the handlers answers with the JSON envelope
		ginzap.RecoveryWithZap(o.Logger, true),
		mdw.Metrics(),
		mdw.AccessLog(o.Logger),
		mdw.Recovery(o.Logger),
	)

	if len(o.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     o.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// public auth surface; per-IP limit slows credential stuffing
	authGroup := api.Group("/auth")
	authGroup.Use(mdw.RateLimitPerIP(10, 30))
	{
		authGroup.POST("/signup", o.Auth.Signup)
		authGroup.POST("/login", o.Auth.Login)
		authGroup.GET("/google", o.Auth.GoogleLogin)
		authGroup.GET("/google/callback", o.Auth.GoogleCallback)
		authGroup.GET("/logout", o.Auth.Logout)
		authGroup.GET("/me", o.Auth.Me)
	}

	// authenticated surface
	protected := api.Group("")
	protected.Use(mdw.Session(o.JWTer))
	{
		protected.GET("/dashboard", o.Predict.Dashboard)
		protected.POST("/predict", o.Predict.Predict)
		protected.GET("/model-status", o.Predict.ModelStatus)
	}

	// admin surface: session + role gate
	admin := api.Group("/admin")
	admin.Use(mdw.Session(o.JWTer), mdw.RequireAdmin())
	{
		admin.GET("/users", o.Admin.ListUsers)
		admin.DELETE("/users/:userId", o.Admin.DeleteUser)
		admin.PATCH("/users/:userId/promote", o.Admin.PromoteUser)
		admin.GET("/stats", o.Admin.Stats)
	}

	return r
}
