package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/serverless/platform-client/pkg/conftools"
	"github.com/serverless/platform-client/pkg/platform"
)

type Config struct {
	AccessKey                 string `json:"access-key"`
	AccountID                 string `json:"account-id"`
	AppUID                    string `json:"app-uid"`
	LogDestinationURL         string `json:"log-destination-url"`
	LogFormat                 string `json:"log-format"`
	LogLevel                  string `json:"log-level"`
	OpenTelemetryCollectorURL string `json:"otel-collector-endpoint"`
	PlatformStage             string `json:"platform-stage"`
	PushgatewayURL            string `json:"pushgateway-url"`
	RegionName                string `json:"region"`
	ServiceName               string `json:"service"`
	StageName                 string `json:"stage"`
	TenantUID                 string `json:"tenant-uid"`
}

const (
	AccessKey                 = "access-key"
	AccountID                 = "account-id"
	AppUID                    = "app-uid"
	LogDestinationURL         = "log-destination-url"
	LogFormat                 = "log-format"
	LogLevel                  = "log-level"
	OpenTelemetryCollectorURL = "otel-collector-endpoint"
	PlatformStage             = "platform-stage"
	PushgatewayURL            = "pushgateway-url"
	RegionName                = "region"
	ServiceName               = "service"
	StageName                 = "stage"
	TenantUID                 = "tenant-uid"
)

var help = `
log-destination asks the Serverless platform to create a CloudWatch Logs destination
that an AWS account can subscribe its log groups to.
`

func initialize() *Config {
	flag.ErrHelp = fmt.Errorf("%s", help)

	conftools.Initialize("log-destination")
	viper.BindEnv(AccessKey, "SERVERLESS_ACCESS_KEY")
	viper.BindEnv(PlatformStage, platform.EnvPlatformStage)

	// Provide command-line flags
	flag.String(AccessKey, "", "Platform access key, sent as bearer token.")
	flag.String(AccountID, "", "AWS account ID that will subscribe to the destination.")
	flag.String(AppUID, "", "Application UID.")
	flag.String(LogDestinationURL, "", "Override the log destination service base URL. Must end with a slash.")
	flag.String(LogFormat, "text", "Log format, either 'json' or 'text'.")
	flag.String(LogLevel, "info", "Logging verbosity level.")
	flag.String(OpenTelemetryCollectorURL, "", "OpenTelemetry collector endpoint. Tracing is disabled if empty.")
	flag.String(PlatformStage, platform.StageProd, "Platform stage, either 'prod' or 'dev'.")
	flag.String(PushgatewayURL, "", "Prometheus Pushgateway to send request metrics to before exiting. Disabled if empty.")
	flag.String(RegionName, "", "Region of the service.")
	flag.String(ServiceName, "", "Service name.")
	flag.String(StageName, "", "Stage of the service.")
	flag.String(TenantUID, "", "Tenant UID.")

	return &Config{}
}

func (cfg *Config) validate() error {
	required := map[string]string{
		AccessKey:   cfg.AccessKey,
		AccountID:   cfg.AccountID,
		AppUID:      cfg.AppUID,
		RegionName:  cfg.RegionName,
		ServiceName: cfg.ServiceName,
		StageName:   cfg.StageName,
		TenantUID:   cfg.TenantUID,
	}
	for _, key := range []string{AccessKey, AccountID, AppUID, RegionName, ServiceName, StageName, TenantUID} {
		if len(required[key]) == 0 {
			return fmt.Errorf("configuration option '%s' is required", key)
		}
	}
	return nil
}

func (cfg *Config) endpoints() (platform.Endpoints, error) {
	endpoints, err := platform.DefaultEndpoints(cfg.PlatformStage)
	if err != nil {
		return platform.Endpoints{}, err
	}
	return endpoints.Override(platform.Endpoints{
		LogDestinationURL: cfg.LogDestinationURL,
	}), nil
}
