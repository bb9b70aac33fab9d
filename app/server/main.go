package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hireloop/hireloop/config"
	"github.com/hireloop/hireloop/internal/api/handlers"
	"github.com/hireloop/hireloop/internal/api/middleware"
	"github.com/hireloop/hireloop/internal/api/routes"
	"github.com/hireloop/hireloop/internal/cache"
	"github.com/hireloop/hireloop/internal/capture"
	"github.com/hireloop/hireloop/internal/engine"
	"github.com/hireloop/hireloop/internal/logger"
	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/providers/avatar"
	"github.com/hireloop/hireloop/internal/providers/stt"
	"github.com/hireloop/hireloop/internal/providers/videoconf"
	mongorepo "github.com/hireloop/hireloop/internal/repositories/mongo"
	pgrepo "github.com/hireloop/hireloop/internal/repositories/postgres"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/storage"
	"github.com/hireloop/hireloop/internal/workers"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if err := config.InitMongo(); err != nil {
		log.WithError(err).Fatal("MongoDB init error")
	}
	log.Info("MongoDB connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.WithError(err).Fatal("MongoDB index error")
	}

	if err := config.InitPostgres(); err != nil {
		log.WithError(err).Fatal("PostgreSQL init error")
	}
	log.Info("PostgreSQL connected")

	if err := config.PostgresDB.AutoMigrate(
		&models.ResultRecord{},
		&models.AnswerRecording{},
		&models.Profile{},
	); err != nil {
		log.WithError(err).Fatal("PostgreSQL migrate error")
	}

	if err := config.InitRedis(); err != nil {
		log.WithError(err).Fatal("Redis init error")
	}
	log.Info("Redis connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Providers
	avatars := avatar.NewAvatarTalk(
		os.Getenv("AVATARTALK_BASE_URL"),
		os.Getenv("AVATARTALK_API_KEY"),
		0,
	)
	defer avatars.Close()

	rooms := videoconf.NewClient(
		os.Getenv("VIDEOSDK_BASE_URL"),
		os.Getenv("VIDEOSDK_API_KEY"),
		os.Getenv("VIDEOSDK_SECRET"),
	)

	var speech stt.Provider
	if sp, err := stt.NewGoogleSpeech(ctx); err != nil {
		// voice answers fall back to client-side recognition
		log.WithError(err).Warn("Google Speech unavailable, server-side transcription disabled")
	} else {
		speech = sp
		defer sp.Close()
	}

	var uploader storage.Uploader
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		up, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.WithError(err).Fatal("GCS init error")
		}
		uploader = up
		defer up.Close()
	}

	// Repositories
	db := config.MongoDatabase()
	interviewStore := mongorepo.NewInterviewStore(db)
	liveClasses := mongorepo.NewLiveClassRepo(db)
	resultHistory := pgrepo.NewResultRepo(config.PostgresDB)
	recordings := pgrepo.NewRecordingRepo(config.PostgresDB)
	profiles := pgrepo.NewProfileRepo(config.PostgresDB)
	users := pgrepo.NewUserRepo(config.PostgresDB)

	// Core
	eng := engine.New(engine.Config{Store: interviewStore, Logger: log})
	clips := cache.NewRedisCache(config.RedisClient)
	captures := capture.NewManager(log)

	// Services
	interviewSvc := services.NewInterviewService(eng, interviewStore, resultHistory, avatars, clips, log)
	resultSvc := services.NewResultService(interviewStore, resultHistory, log)
	liveClassSvc := services.NewLiveClassService(liveClasses, rooms, log)
	profileSvc := services.NewProfileService(profiles)
	userSvc := services.NewUserService(users)

	recordingSvc := services.NewRecordingService(recordings, interviewStore, uploader, log)

	// Workers
	if speech != nil {
		pool := &workers.TranscribeWorkerPool{
			Redis:  config.RedisClient,
			STT:    speech,
			Logger: log,
		}
		if err := pool.Start(ctx); err != nil {
			log.WithError(err).Fatal("worker pool start error")
		}
	}

	// HTTP
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(interviewSvc),
		Result:    handlers.NewResultHandler(resultSvc),
		LiveClass: handlers.NewLiveClassHandler(liveClassSvc),
		Profile:   handlers.NewProfileHandler(profileSvc, userSvc),
		Recording: handlers.NewRecordingHandler(recordingSvc),
		WS:        handlers.NewWSHandler(interviewSvc, captures, config.RedisClient, log),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		log.WithField("port", port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}
