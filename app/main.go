package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/mailservice"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	limiter     *rateLimiter
	metrics     *httpMetrics
}

// stores holds the backend chosen by STORE_DRIVER.
type stores struct {
	users userservice.Store
	blogs blogservice.Store
	close func()
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openStores(ctx context.Context, cfg *Config) (*stores, error) {
	switch cfg.StoreDriver {
	case driverMongo:
		db, err := common.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}

		users, err := userservice.NewMongoModel(ctx, db)
		if err != nil {
			common.CloseMongoDB(db)
			return nil, err
		}

		return &stores{
			users: users,
			blogs: blogservice.NewMongoModel(db),
			close: func() { common.CloseMongoDB(db) },
		}, nil

	default:
		db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
		if err != nil {
			return nil, err
		}

		dsn := common.PostgresURI(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		m, err := common.Migrate(cfg.MigrationsPath, dsn)
		if err != nil {
			common.CloseDB(db)
			return nil, err
		}
		m.Close()

		return &stores{
			users: userservice.NewUserModel(db),
			blogs: blogservice.NewBlogModel(db),
			close: func() { common.CloseDB(db) },
		}, nil
	}
}

func newApplication(cfg *Config, logger *slog.Logger, s *stores, broker *common.MessageBroker) *application {
	var producer common.MessageProducer
	if broker != nil {
		producer = broker
	}

	tokens := userservice.NewTokenManager(cfg.Secret, cfg.TokenTTL)
	cache := common.NewCache[*userservice.User](5*time.Minute, 10*time.Minute)

	return &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(s.users, producer, tokens, cache, logger),
		blogService: blogservice.NewBlogService(s.blogs),
		limiter:     newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		metrics:     newHTTPMetrics(),
	}
}

func main() {
	configPath := flag.String("config", ".env", "path to the env file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	s, err := openStores(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to connect to the store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer s.close()

	var broker *common.MessageBroker
	if cfg.brokerEnabled() {
		broker, err = common.NewMessageBroker(common.AMQPURI(cfg.MQHost, cfg.MQPort, cfg.MQUser, cfg.MQPassword))
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		err = common.SetupUserExchange(broker)
		if err != nil {
			logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	app := newApplication(cfg, logger, s, broker)
	defer app.limiter.stop()

	if broker != nil {
		app.mailService = mailservice.NewMailService(broker, mailservice.Config{
			Host:      cfg.MailHost,
			Port:      cfg.MailPort,
			Username:  cfg.MailUser,
			Password:  cfg.MailPassword,
			Sender:    cfg.MailSender,
			Recipient: cfg.MailRecipient,
		}, logger)

		err = app.mailService.SendWelcomeEmail()
		if err != nil {
			logger.Error("failed to start the welcome email consumer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer app.mailService.Close()
	}

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
