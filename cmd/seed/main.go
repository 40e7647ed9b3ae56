// Command seed creates a demo user owning the two demo blogs Prueba-1 and
// Prueba-2 in the store selected by STORE_DRIVER.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/sushihentaime/bloglist/internal/blogservice"
	"github.com/sushihentaime/bloglist/internal/common"
	"github.com/sushihentaime/bloglist/internal/userservice"
)

type config struct {
	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DBHost         string `mapstructure:"POSTGRES_HOST"`
	DBPort         string `mapstructure:"POSTGRES_PORT"`
	DBUser         string `mapstructure:"POSTGRES_USER"`
	DBPassword     string `mapstructure:"POSTGRES_PASSWORD"`
	DBName         string `mapstructure:"POSTGRES_DB"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	MongoURI       string `mapstructure:"MONGO_URI"`
	MongoDB        string `mapstructure:"MONGO_DB"`
	Secret         string `mapstructure:"SECRET"`
}

func loadConfig(path string) (*config, error) {
	v := viper.New()
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DB", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "bloglist")
	v.SetDefault("SECRET", "")
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Secret == "" {
		return nil, errors.New("SECRET must be set")
	}

	return &cfg, nil
}

func openStores(ctx context.Context, cfg *config) (userservice.Store, blogservice.Store, func(), error) {
	if cfg.StoreDriver == "mongo" {
		db, err := common.NewMongoDB(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, nil, err
		}

		users, err := userservice.NewMongoModel(ctx, db)
		if err != nil {
			common.CloseMongoDB(db)
			return nil, nil, nil, err
		}

		return users, blogservice.NewMongoModel(db), func() { common.CloseMongoDB(db) }, nil
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 2, 2, time.Minute)
	if err != nil {
		return nil, nil, nil, err
	}

	m, err := common.Migrate(cfg.MigrationsPath, common.PostgresURI(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName))
	if err != nil {
		common.CloseDB(db)
		return nil, nil, nil, err
	}
	m.Close()

	return userservice.NewUserModel(db), blogservice.NewBlogModel(db), func() { common.CloseDB(db) }, nil
}

// demoUser registers username, or logs in when it already exists, and returns
// the stored user.
func demoUser(ctx context.Context, us *userservice.UserService, username, name, password string) (*userservice.User, error) {
	u, err := us.CreateUser(ctx, username, name, password)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, userservice.ErrDuplicateUsername) {
		return nil, err
	}

	res, err := us.LoginUser(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("user %q exists with another password: %w", username, err)
	}

	return us.GetUserByToken(ctx, res.Token)
}

func run(ctx context.Context, cfg *config, username, name, password string, logger *slog.Logger) error {
	users, blogs, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	us := userservice.NewUserService(users, nil, userservice.NewTokenManager(cfg.Secret, userservice.DefaultTokenTTL), nil, logger)
	bs := blogservice.NewBlogService(blogs)

	u, err := demoUser(ctx, us, username, name, password)
	if err != nil {
		return err
	}

	owner := &blogservice.Owner{ID: u.ID, Username: u.Username, Name: u.Name}
	for _, title := range []string{"Prueba-1", "Prueba-2"} {
		b, err := bs.CreateBlog(ctx, &blogservice.CreateBlogRequest{
			Title:  title,
			Author: title,
			URL:    "/Prueba/" + title[len(title)-1:],
			User:   owner,
		})
		if err != nil {
			return err
		}
		logger.Info("created blog", slog.String("id", b.ID), slog.String("title", b.Title))
	}

	logger.Info("seeded store", slog.String("driver", cfg.StoreDriver), slog.String("username", u.Username))

	return nil
}

func main() {
	var (
		configPath = flag.String("config", ".env", "path to the env file")
		username   = flag.String("username", "root", "demo user name")
		name       = flag.String("name", "Superuser", "demo user display name")
		password   = flag.String("password", "sekret", "demo user password")
		quiet      = flag.Bool("quiet", false, "suppress progress output")
	)
	flag.Parse()

	var out io.Writer = os.Stdout
	if *quiet {
		out = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(out, nil))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg, *username, *name, *password, logger); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}
