package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/patrik-rangel/hvac-telemetry-api/internal/config"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/gateways"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/domain/services"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/httpapi"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/resources/configfile"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/resources/database/mongodb"
	"github.com/patrik-rangel/hvac-telemetry-api/internal/resources/s3"
)

// App holds the wired service and the resources that must be released on shutdown.
type App struct {
	Handler http.Handler
	Tokens  *services.TokenStore
	client  *mongo.Client
}

// Bootstrap loads .env and the environment and configures the default logger.
func Bootstrap() (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	SetupLogging(cfg.Debug)
	slog.Debug("variáveis de ambiente carregadas", "config", cfg)
	return cfg, nil
}

func SetupLogging(debug bool) {
	lvl := slog.LevelInfo
	if debug {
		lvl = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	client, err := mongodb.Connect(ctx, cfg.Mongo.ConnectionString())
	if err != nil {
		return nil, err
	}

	repo, err := tokenConfigRepository(ctx, cfg)
	if err != nil {
		_ = mongodb.Disconnect(context.Background(), client)
		return nil, err
	}

	tokens, err := services.LoadTokenStore(ctx, repo, services.NewTokenGenerator(services.AdminTokenBytes))
	if err != nil {
		_ = mongodb.Disconnect(context.Background(), client)
		return nil, err
	}

	auth := services.NewAuthenticator(tokens)
	sensors := mongodb.NewSensorRepository(client, cfg.Mongo.Database, cfg.Mongo.SensorCollection)
	commands := mongodb.NewCommandRepository(client, cfg.Mongo.Database, cfg.Mongo.ThermostatCollection)
	ingest := services.NewIngestionService(auth, services.NewPayloadCodec(), sensors, commands, cfg.SinkTimeout)
	admin := services.NewAdminService(auth, tokens, services.NewTokenGenerator(services.UserTokenBytes))

	return &App{
		Handler: httpapi.New(ingest, admin).Handler(),
		Tokens:  tokens,
		client:  client,
	}, nil
}

func tokenConfigRepository(ctx context.Context, cfg *config.Config) (gateways.TokenConfigRepository, error) {
	if cfg.S3Bucket != "" {
		slog.Info("configuração de tokens no S3", "bucket", cfg.S3Bucket, "key", cfg.S3Key)
		return s3.NewConfigRepository(ctx, cfg.S3Bucket, cfg.S3Key)
	}
	slog.Info("configuração de tokens em disco", "path", cfg.ConfigPath)
	return configfile.NewFileRepository(cfg.ConfigPath), nil
}

// Banner prints the admin key and the active endpoints, once per process.
func (a *App) Banner() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n\n###### ADMIN KEY ######\n%s\n#######################\n\n", a.Tokens.AdminToken())
	b.WriteString("Active endpoints:\n\n")
	b.WriteString("o " + httpapi.RouteRoot + "\n\tTo test the server availability\n\n")
	b.WriteString("o /upload/API_key=<api_key>/dev=<device_id>/data=<encoded_json>\n\tTo upload new data to the database\n\n")
	b.WriteString("o /add_token/API_key=<api_key>\n\tTo issue a random application API. Requires the admin API\n\n")
	b.WriteString("o " + httpapi.RouteMetrics + "\n\tPrometheus metrics\n")
	return b.String()
}

func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return mongodb.Disconnect(ctx, a.client)
}
