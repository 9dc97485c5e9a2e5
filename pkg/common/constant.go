package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyFWDBType string = "FW_DB_TYPE"
	EnvKeyFWDbPath string = "FW_DB_PATH"

	EnvKeyFWHttpHostPort string = "FW_HTTP_HOST_PORT"

	EnvKeyFWScanInterval       string = "FW_SCAN_INTERVAL"
	EnvKeyFWDetectionThreshold string = "FW_DETECTION_THRESHOLD"
	EnvKeyFWBreachChance       string = "FW_BREACH_CHANCE"
	EnvKeyFWCallTimeout        string = "FW_CALL_TIMEOUT"
	EnvKeyFWCaptureTimeout     string = "FW_CAPTURE_TIMEOUT"

	EnvKeyWeatherAPIKey     string = "WEATHERAPI_API_KEY"
	EnvKeyWeatherAPIBaseURL string = "WEATHERAPI_BASE_URL"
	EnvKeyAIServiceURL      string = "AI_SERVICE_URL"
	EnvKeyCloudinaryURL     string = "CLOUDINARY_URL"
	EnvKeyFFmpegPath        string = "FFMPEG_PATH"

	EnvKeySMTPHost string = "SMTP_HOST"
	EnvKeySMTPPort string = "SMTP_PORT"
	EnvKeySMTPUser string = "SMTP_USER"
	EnvKeySMTPPass string = "SMTP_PASS"
	EnvKeySMTPFrom string = "SMTP_FROM"

	EnvKeyFWDefaultRate  string = "FW_DEFAULT_RATE"
	EnvKeyFWDefaultBurst string = "FW_DEFAULT_BURST"

	LoggerNameFirewatchCore string = "firewatch_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameWsHub         string = "ws_hub"

	LoggerFieldCategory string = "category"

	LoggerCategoryAlert      string = "alert"
	LoggerCategorySimulation string = "simulation"
	LoggerCategoryDetection  string = "detection"
	LoggerCategoryNotify     string = "notify"
	LoggerCategoryScheduler  string = "scheduler"
	LoggerCategoryRegistry   string = "registry"
)
