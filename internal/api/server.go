package api

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"renovation/internal/app/config"
	"renovation/internal/app/document"
	"renovation/internal/app/dsn"
	"renovation/internal/app/handler"
	"renovation/internal/app/mailer"
	"renovation/internal/app/middleware"
	"renovation/internal/app/pricing"
	"renovation/internal/app/redis"
	"renovation/internal/app/repository"
	"renovation/internal/app/storage"
	"renovation/internal/app/validation"
	"renovation/internal/app/wizard"
	"renovation/internal/app/ws"
	"renovation/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func StartServer() {
	log.Println("Starting server")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal("Error loading config: ", err)
	}
	validation.Register()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		logrus.Fatal("DSN string is empty. Check DB_HOST in your .env file")
	}
	repo, err := repository.New(dsnStr, pricing.Rates{GST: cfg.Tax.GSTRate, QST: cfg.Tax.QSTRate}, cfg.Tax.DefaultMarkup)
	if err != nil {
		logrus.Fatal("Error initializing repository: ", err)
	}

	// Redis backs logout, wizard sessions and send locks. Without it the
	// wizard and the locks live in memory of this one instance.
	var (
		blacklist middleware.Blacklist
		sendLocks handler.SendLocker
		wizards   wizard.Store = wizard.NewMemoryStore()
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			logrus.Fatal("Error connecting to redis: ", err)
		}
		defer redisClient.Close()
		blacklist, sendLocks, wizards = redisClient, redisClient, redisClient
	} else {
		logrus.Warn("Redis is not configured: logout cannot revoke tokens, wizard sessions and locks are kept in memory")
	}

	fileStorage, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logrus.Fatal("Error initializing file storage: ", err)
	}

	var pdf document.PDFRenderer
	if cfg.PDF.Enabled {
		chrome := document.NewChromeRenderer(cfg.PDF)
		defer chrome.Close()
		pdf = chrome
	}
	docs, err := document.NewBuilder(cfg.StudioName)
	if err != nil {
		logrus.Fatal(err)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	authMiddleware := middleware.NewAuthMiddleware(blacklist, cfg)
	authHandler := handler.NewAuthHandler(repo, blacklist, authMiddleware, cfg)
	apiHandler := handler.NewAPIHandler(cfg, repo, fileStorage, mailer.NewSMTPSender(cfg.Mail),
		pdf, docs, hub, wizards, sendLocks, authHandler)
	printHandler := handler.NewHandler(repo, authMiddleware, cfg.StudioName)

	r := gin.Default()
	application := pkg.NewApp(cfg, r, apiHandler, printHandler, authMiddleware)
	application.RunApp(ctx)

	log.Println("Server down")
}
