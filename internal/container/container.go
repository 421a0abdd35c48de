package container

import (
	"fmt"

	"vx-landing/internal/config"
	"vx-landing/internal/ratelimit"
	"vx-landing/internal/repository"
	"vx-landing/internal/service"
	"vx-landing/internal/service/auth"
	"vx-landing/internal/service/telegram"
	"vx-landing/pkg/logger"
	"vx-landing/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	Store       *repository.FileStore
	RedisClient *redis.Client
	Services    *service.Services

	ContactLimiter *ratelimit.Limiter
	LoginLimiter   *ratelimit.Limiter
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	store, err := repository.NewFileStore(cfg.DataDir, logger.WithField("component", "filestore"))
	if err != nil {
		return nil, fmt.Errorf("init data store: %w", err)
	}

	// Rate-limit counters go to Redis when configured so that every instance
	// shares them; otherwise they stay in process memory.
	var redisClient *redis.Client
	var limitStore ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, rate limits stay in memory")
		} else {
			redisClient = client
			limitStore = ratelimit.NewRedisStore(client)
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, rate limits stay in memory")
	}

	var notifier service.Notifier
	if cfg.TelegramEnabled() {
		notifier = telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, logger.WithField("component", "telegram"))
	} else {
		logger.Warn("Development mode: Telegram notifications disabled")
		notifier = telegram.NewNoopNotifier(logger)
	}

	repos := repository.NewRepositories(store)
	analytics := service.NewAnalyticsService(repos.Analytics, nil, logger)

	services := &service.Services{
		Auth:      auth.NewService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, logger),
		Contact:   service.NewContactService(repos.Contacts, repos.Spam, notifier, nil, logger),
		Analytics: analytics,
		Admin:     service.NewAdminService(repos.Contacts, repos.Settings, analytics, nil, logger),
		Notifier:  notifier,
	}

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Store:          store,
		RedisClient:    redisClient,
		Services:       services,
		ContactLimiter: ratelimit.NewLimiter(limitStore, ratelimit.ContactPolicy),
		LoginLimiter:   ratelimit.NewLimiter(limitStore, ratelimit.LoginPolicy),
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
