package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/serverless/platform-client/pkg/conftools"
	"github.com/serverless/platform-client/pkg/logdestination"
	"github.com/serverless/platform-client/pkg/logging"
	"github.com/serverless/platform-client/pkg/metrics"
	"github.com/serverless/platform-client/pkg/platform"
	"github.com/serverless/platform-client/pkg/telemetry"
	"github.com/serverless/platform-client/pkg/version"
)

var maskedConfig = []string{
	AccessKey,
}

const pushTimeout = 10 * time.Second

func pushMetrics(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	err := metrics.Push(ctx, url, "log-destination")
	if err != nil {
		log.Warn(err)
	}
}

func run() error {
	cfg := initialize()
	err := conftools.Load(cfg)
	if err != nil {
		return err
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	log.SetOutput(os.Stderr)

	log.Infof("log-destination %s", version.Version())
	for _, line := range conftools.Format(maskedConfig) {
		log.Debug(line)
	}

	err = cfg.validate()
	if err != nil {
		return err
	}

	endpoints, err := cfg.endpoints()
	if err != nil {
		return err
	}

	ctx := context.Background()

	if len(cfg.OpenTelemetryCollectorURL) > 0 {
		tracerProvider, err := telemetry.New(ctx, "log-destination", cfg.OpenTelemetryCollectorURL)
		if err != nil {
			return fmt.Errorf("set up tracing: %w", err)
		}
		defer func() {
			err := tracerProvider.Shutdown(context.Background())
			if err != nil {
				log.Error(err)
			}
		}()
	}

	if len(cfg.PushgatewayURL) > 0 {
		defer pushMetrics(cfg.PushgatewayURL)
	}

	// The access key is passed explicitly; no tenant lookup is involved.
	client := platform.NewClient(endpoints, nil)

	response, err := logdestination.Get(ctx, client, logdestination.Options{
		TenantUID:   cfg.TenantUID,
		AppUID:      cfg.AppUID,
		ServiceName: cfg.ServiceName,
		RegionName:  cfg.RegionName,
		StageName:   cfg.StageName,
		AccountID:   cfg.AccountID,
		AccessKey:   cfg.AccessKey,
	})
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))

	return nil
}

func main() {
	err := run()
	if err != nil {
		log.Errorf("fatal: %s", err)
		os.Exit(1)
	}
}
