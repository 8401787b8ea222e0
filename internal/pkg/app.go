package pkg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"renovation/internal/app/config"
	"renovation/internal/app/handler"
	"renovation/internal/app/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 15 * time.Second

type Application struct {
	Config     *config.Config
	Router     *gin.Engine
	APIHandler *handler.APIHandler
	Handler    *handler.Handler
	Auth       *middleware.AuthMiddleware
}

func NewApp(c *config.Config, r *gin.Engine, api *handler.APIHandler, h *handler.Handler, auth *middleware.AuthMiddleware) *Application {
	return &Application{
		Config:     c,
		Router:     r,
		APIHandler: api,
		Handler:    h,
		Auth:       auth,
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Async-Key"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Setup installs middleware, templates and every route on the router.
func (a *Application) Setup() error {
	a.Router.Use(cors.New(corsConfig(a.Config.CORS.AllowOrigins)))

	if err := a.Handler.RegisterTemplates(a.Router); err != nil {
		return fmt.Errorf("failed to load print templates: %w", err)
	}
	a.Handler.RegisterRoutes(a.Router)
	a.APIHandler.RegisterAPIRoutes(a.Router, a.Auth)

	a.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return nil
}

// RunApp serves until ctx is cancelled, then drains in-flight requests.
func (a *Application) RunApp(ctx context.Context) {
	logrus.Info("Server start up")

	if err := a.Setup(); err != nil {
		logrus.Fatal(err)
	}

	serverAddress := fmt.Sprintf("%s:%d", a.Config.ServiceHost, a.Config.ServicePort)
	srv := &http.Server{Addr: serverAddress, Handler: a.Router}

	go func() {
		logrus.Infof("Starting server on %s", serverAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Error("Server forced to shutdown: ", err)
	}

	logrus.Info("Server down")
}
