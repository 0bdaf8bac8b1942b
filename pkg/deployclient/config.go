package deployclient

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/serverless/platform-client/pkg/platform"
)

type Config struct {
	AccessKey                 string
	Actions                   bool
	APIURL                    string
	AppName                   string
	AppUID                    string
	Archived                  bool
	DashboardURL              string
	DryRun                    bool
	Error                     string
	LogsRoleArn               string
	OpenTelemetryCollectorURL string
	PlatformStage             string
	PrintPayload              bool
	PushgatewayURL            string
	Quiet                     bool
	RegionName                string
	ServerlessFile            string
	ServiceName               string
	StageName                 string
	Status                    string
	TenantName                string
	TenantUID                 string
	Timeout                   time.Duration
	Variables                 []string
	VariablesFile             string
	VersionEnterprisePlugin   string
	VersionFramework          string
}

func InitConfig(cfg *Config) {
	flag.StringVar(&cfg.AccessKey, "access-key", os.Getenv("SERVERLESS_ACCESS_KEY"), "Platform access key. Looked up in ~/.serverlessrc if empty. (env SERVERLESS_ACCESS_KEY)")
	flag.BoolVar(&cfg.Actions, "actions", getEnvBool("ACTIONS", false), "Use GitHub Actions compatible error and warning messages. (env ACTIONS)")
	flag.StringVar(&cfg.APIURL, "api-url", os.Getenv("API_URL"), "Override the dashboard API base URL. (env API_URL)")
	flag.StringVar(&cfg.AppName, "app", os.Getenv("APP"), "Application name. Auto-detected from serverless.yml if possible. (env APP)")
	flag.StringVar(&cfg.AppUID, "app-uid", os.Getenv("APP_UID"), "Application UID. (env APP_UID)")
	flag.BoolVar(&cfg.Archived, "archived", getEnvBool("ARCHIVED", false), "Mark the deployment as archived, i.e. the service was removed. (env ARCHIVED)")
	flag.StringVar(&cfg.DashboardURL, "dashboard-url", os.Getenv("DASHBOARD_URL"), "Override the dashboard UI base URL. (env DASHBOARD_URL)")
	flag.BoolVar(&cfg.DryRun, "dry-run", getEnvBool("DRY_RUN", false), "Assemble the deployment, but don't actually make any requests. (env DRY_RUN)")
	flag.StringVar(&cfg.Error, "error", os.Getenv("ERROR"), "Error message of a failed deployment. (env ERROR)")
	flag.StringVar(&cfg.LogsRoleArn, "logs-role-arn", os.Getenv("LOGS_ROLE_ARN"), "ARN of the role used to ship logs. (env LOGS_ROLE_ARN)")
	flag.StringVar(&cfg.OpenTelemetryCollectorURL, "otel-collector-endpoint", os.Getenv("OTEL_COLLECTOR_ENDPOINT"), "OpenTelemetry collector endpoint. Tracing is disabled if empty. (env OTEL_COLLECTOR_ENDPOINT)")
	flag.StringVar(&cfg.PlatformStage, "platform-stage", getEnv(platform.EnvPlatformStage, platform.StageProd), "Platform stage, either 'prod' or 'dev'. (env SERVERLESS_PLATFORM_STAGE)")
	flag.BoolVar(&cfg.PrintPayload, "print-payload", getEnvBool("PRINT_PAYLOAD", false), "Print the deployment record to standard output. (env PRINT_PAYLOAD)")
	flag.StringVar(&cfg.PushgatewayURL, "pushgateway-url", os.Getenv("PUSHGATEWAY_URL"), "Prometheus Pushgateway to send request metrics to before exiting. Disabled if empty. (env PUSHGATEWAY_URL)")
	flag.BoolVar(&cfg.Quiet, "quiet", getEnvBool("QUIET", false), "Suppress printing of informational messages except errors. (env QUIET)")
	flag.StringVar(&cfg.RegionName, "region", os.Getenv("REGION"), "Region deployed into. Auto-detected from serverless.yml if possible. (env REGION)")
	flag.StringVar(&cfg.ServerlessFile, "serverless-file", os.Getenv("SERVERLESS_FILE"), "Path to serverless.yml describing the service. (env SERVERLESS_FILE)")
	flag.StringVar(&cfg.ServiceName, "service", os.Getenv("SERVICE"), "Service name. Auto-detected from serverless.yml if possible. (env SERVICE)")
	flag.StringVar(&cfg.StageName, "stage", os.Getenv("STAGE"), "Stage deployed into. Auto-detected from serverless.yml if possible. (env STAGE)")
	flag.StringVar(&cfg.Status, "status", getEnv("STATUS", DefaultStatus), "Deployment status. (env STATUS)")
	flag.StringVar(&cfg.TenantName, "tenant", os.Getenv("TENANT"), "Tenant name. Auto-detected from serverless.yml if possible. (env TENANT)")
	flag.StringVar(&cfg.TenantUID, "tenant-uid", os.Getenv("TENANT_UID"), "Tenant UID. (env TENANT_UID)")
	flag.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("TIMEOUT", DefaultTimeout), "Time to wait for the platform to accept the deployment. (env TIMEOUT)")
	flag.StringSliceVar(&cfg.Variables, "var", getEnvStringSlice("VAR"), "Template variable in the form KEY=VALUE. Can be specified multiple times. (env VAR)")
	flag.StringVar(&cfg.VariablesFile, "vars", os.Getenv("VARS"), "File containing template variables. (env VARS)")
	flag.StringVar(&cfg.VersionEnterprisePlugin, "version-enterprise-plugin", os.Getenv("VERSION_ENTERPRISE_PLUGIN"), "Version of the enterprise plugin. (env VERSION_ENTERPRISE_PLUGIN)")
	flag.StringVar(&cfg.VersionFramework, "version-framework", os.Getenv("VERSION_FRAMEWORK"), "Version of the serverless framework. (env VERSION_FRAMEWORK)")

	flag.Parse()
}

// config return user input and default values as Config.
// Values will be resolved with the following precedence: flags > environment variables > default values.
func NewConfig() *Config {
	return &Config{
		PlatformStage: platform.StageProd,
		Status:        DefaultStatus,
		Timeout:       DefaultTimeout,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		duration, err := time.ParseDuration(value)
		if err == nil {
			return duration
		}
	}
	return fallback
}

func getEnvStringSlice(key string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}

	return []string{}
}

func getEnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}

	return b
}

func (cfg *Config) Validate() error {
	if _, err := platform.DefaultEndpoints(cfg.PlatformStage); err != nil {
		return err
	}

	if cfg.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if len(cfg.ServerlessFile) == 0 && len(cfg.VariablesFile)+len(cfg.Variables) > 0 {
		return ErrVariablesWithoutFile
	}

	return nil
}

// Endpoints resolves the platform stage and applies URL overrides.
func (cfg *Config) Endpoints() (platform.Endpoints, error) {
	endpoints, err := platform.DefaultEndpoints(cfg.PlatformStage)
	if err != nil {
		return platform.Endpoints{}, fmt.Errorf("resolve endpoints: %w", err)
	}
	return endpoints.Override(platform.Endpoints{
		APIURL:       cfg.APIURL,
		DashboardURL: cfg.DashboardURL,
	}), nil
}
