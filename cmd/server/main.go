package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/skydentango/ping-social-app/internal/auth"
	"github.com/skydentango/ping-social-app/internal/cache"
	"github.com/skydentango/ping-social-app/internal/config"
	"github.com/skydentango/ping-social-app/internal/engine"
	"github.com/skydentango/ping-social-app/internal/events"
	"github.com/skydentango/ping-social-app/internal/groups"
	"github.com/skydentango/ping-social-app/internal/handlers"
	"github.com/skydentango/ping-social-app/internal/logger"
	"github.com/skydentango/ping-social-app/internal/middleware"
	"github.com/skydentango/ping-social-app/internal/notify"
	"github.com/skydentango/ping-social-app/internal/routes"
	mongostore "github.com/skydentango/ping-social-app/internal/store/mongo"
	"github.com/skydentango/ping-social-app/internal/users"
	"github.com/skydentango/ping-social-app/internal/ws"
)

// Server holds service dependencies.
type Server struct {
	Cfg      *config.Config
	App      *fiber.App
	Store    *mongostore.Store
	Redis    *cache.Client
	Producer *events.Producer
	Notifier *notify.Consumer
	Hub      *ws.Hub
	Log      *zap.SugaredLogger

	Ctx    context.Context
	Cancel context.CancelFunc
}

// NewServer builds the server and all dependencies. Errors if a required
// dependency fails.
func NewServer(cfg *config.Config, log *zap.SugaredLogger) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		cancel()
		return nil, err
	}

	redisClient, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPwd, cfg.RedisDB, log)
	if err != nil {
		log.Warnw("redis unavailable, caching and presence disabled", "error", err)
		redisClient = nil
	}

	var producer *events.Producer
	var consumer *notify.Consumer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaPingTopic)
		sender := notify.NewPushSender(cfg.PushEndpoint)
		consumer = notify.NewConsumer(cfg.KafkaBrokers, cfg.KafkaPingTopic, cfg.KafkaGroupID, st, sender, log)
	} else {
		log.Warn("no kafka brokers configured, push notifications disabled")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret)

	var enginePub engine.Publisher
	if producer != nil {
		enginePub = producer
	}
	eng := engine.New(st, enginePub, log)
	groupSvc := groups.NewService(st, log)
	userSvc := users.NewService(st, log)

	builder := handlers.NewFeedBuilder(st, st, redisClient)
	hub := ws.NewHub(st, builder, redisClient, jwtManager, log)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(middleware.ZapLogger(log))

	jwtMw := middleware.JWT(jwtManager, log)
	rateMw := middleware.RateLimit(redisClient, cfg.RateLimitPerMin, log)

	pingH := handlers.NewPingHandler(eng, st, hub, builder, log)
	groupH := handlers.NewGroupHandler(groupSvc)
	userH := handlers.NewUserHandler(userSvc, redisClient)

	routes.Register(app, jwtMw, rateMw, hub, pingH, groupH, userH)

	return &Server{
		Cfg:      cfg,
		App:      app,
		Store:    st,
		Redis:    redisClient,
		Producer: producer,
		Notifier: consumer,
		Hub:      hub,
		Log:      log,
		Ctx:      ctx,
		Cancel:   cancel,
	}, nil
}

// Start launches background workers and the HTTP server.
func (s *Server) Start() {
	go s.Hub.Run(s.Ctx)

	if s.Notifier != nil {
		go func() {
			if err := s.Notifier.Run(s.Ctx); err != nil && s.Ctx.Err() == nil {
				s.Log.Errorw("notifier stopped", "error", err)
			}
		}()
	}

	go func() {
		s.Log.Infof("starting pingboard server on :%s", s.Cfg.AppPort)
		if err := s.App.Listen(":" + s.Cfg.AppPort); err != nil {
			s.Log.Fatalw("fiber server exited unexpectedly", "error", err)
		}
	}()
}

// Shutdown stops background workers, closes clients and shuts down HTTP.
func (s *Server) Shutdown() {
	s.Log.Info("shutting down...")
	s.Cancel()
	time.Sleep(200 * time.Millisecond)

	if s.Notifier != nil {
		if err := s.Notifier.Close(); err != nil {
			s.Log.Errorw("failed to close kafka consumer", "error", err)
		}
	}
	if s.Producer != nil {
		if err := s.Producer.Close(); err != nil {
			s.Log.Errorw("failed to close kafka producer", "error", err)
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.Log.Errorw("failed to close redis", "error", err)
		}
	}
	if err := s.Store.Close(context.Background()); err != nil {
		s.Log.Errorw("failed to disconnect mongo", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Cfg.ShutdownTimeout)
	defer cancel()
	if err := s.App.ShutdownWithContext(ctx); err != nil {
		s.Log.Errorw("failed to shutdown fiber app", "error", err)
	}
	s.Log.Info("stopped gracefully")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{Development: cfg.AppEnv != "production"})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	server, err := NewServer(cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize server", "error", err)
	}

	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received signal %s, starting graceful shutdown", sig)

	server.Shutdown()
}
