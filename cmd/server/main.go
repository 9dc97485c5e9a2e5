package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/LeeinUITk17/fwserver/pkg/blob"
	"github.com/LeeinUITk17/fwserver/pkg/capture"
	"github.com/LeeinUITk17/fwserver/pkg/common"
	"github.com/LeeinUITk17/fwserver/pkg/db"
	"github.com/LeeinUITk17/fwserver/pkg/firewatch"
	fwHttp "github.com/LeeinUITk17/fwserver/pkg/http"
	"github.com/LeeinUITk17/fwserver/pkg/inference"
	"github.com/LeeinUITk17/fwserver/pkg/mail"
	"github.com/LeeinUITk17/fwserver/pkg/weather"
	"github.com/LeeinUITk17/fwserver/pkg/ws"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	var dbInstance *db.DB
	fwDbType := os.Getenv(common.EnvKeyFWDBType)
	switch fwDbType {
	case "file":
		dbInstance = db.GetInstance(db.UseSqliteDialector())
	case "memory":
		dbInstance = db.GetInstance(db.UseMemorySqliteDialector())
	default:
		log.Fatal("Unknown FW_DB_TYPE: " + fwDbType)
	}

	cfg, err := firewatch.LoadConfigFromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger := common.GetLogger()

	if cfg.WeatherAPIKey == "" {
		logger.Warn("Weather API key not set, sensor simulation passes will be skipped")
	}

	hub := ws.NewHub()
	go hub.Run()

	fw := firewatch.Firewatch{
		Db:        *dbInstance,
		Cfg:       cfg,
		Weather:   weather.New(cfg.WeatherAPIBaseURL, cfg.WeatherAPIKey, cfg.CallTimeout),
		Capture:   capture.New(os.Getenv(common.EnvKeyFFmpegPath)),
		Inference: inference.New(cfg.AIServiceURL, cfg.CallTimeout),
		Blob:      setupBlobStore(logger),
		Mailer:    setupMailer(logger),
		Broadcast: hub,
	}
	fw.WithServices(firewatch.ServiceOpts{
		Alert:      fw.GetIAlert(),
		Simulation: fw.GetISimulation(),
		Detection:  fw.GetIDetection(),
		Notify:     fw.GetINotify(),
		Registry:   fw.GetIRegistry(),
	})

	// the scheduler runs until process exit; Run below never returns
	scheduler := fw.NewScheduler()
	scheduler.Start()

	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyFWHttpHostPort))
	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":1080"
	}

	rs := &fwHttp.RestfulServer{
		Server:           gin.Default(),
		Fw:               &fw,
		Hub:              hub,
		RateLimiterStore: setupRateLimiterStore(),
	}
	rs.Setup()

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}

func setupBlobStore(logger *zap.Logger) firewatch.BlobStore {
	cloudinaryURL := os.Getenv(common.EnvKeyCloudinaryURL)
	if cloudinaryURL == "" {
		logger.Warn("Cloudinary URL not set, alerts will be created without snapshots")
		return nil
	}

	store, err := blob.New(cloudinaryURL)
	if err != nil {
		log.Fatal("Invalid CLOUDINARY_URL: ", err)
	}
	return store
}

func setupMailer(logger *zap.Logger) firewatch.Mailer {
	host := os.Getenv(common.EnvKeySMTPHost)
	if host == "" {
		logger.Warn("SMTP host not set, alert mail delivery is disabled")
		return nil
	}

	port, err := strconv.Atoi(os.Getenv(common.EnvKeySMTPPort))
	if err != nil {
		log.Fatal("Invalid SMTP_PORT, should be an int value")
	}

	from := os.Getenv(common.EnvKeySMTPFrom)
	if from == "" {
		from = os.Getenv(common.EnvKeySMTPUser)
	}

	return mail.New(host, port,
		os.Getenv(common.EnvKeySMTPUser),
		os.Getenv(common.EnvKeySMTPPass),
		from)
}

func setupRateLimiterStore() *firewatch.RateLimiterStore {
	var err error
	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyFWDefaultRate), 64); err != nil {
		log.Fatal("Invalid FW_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}
	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyFWDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid FW_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	return firewatch.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst))
}
