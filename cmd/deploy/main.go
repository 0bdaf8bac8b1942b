package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/serverless/platform-client/pkg/deployclient"
	"github.com/serverless/platform-client/pkg/metrics"
	"github.com/serverless/platform-client/pkg/telemetry"
	"github.com/serverless/platform-client/pkg/version"
)

func main() {
	err := run()
	if err == nil {
		return
	}
	code := deployclient.ErrorExitCode(err)
	if code == deployclient.ExitInvocationFailure {
		flag.Usage()
	}
	log.Errorf("fatal: %s", err)
	os.Exit(int(code))
}

const pushTimeout = 10 * time.Second

func pushMetrics(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	err := metrics.Push(ctx, url, "platform-deploy")
	if err != nil {
		log.Warn(err)
	}
}

func run() error {
	// Configuration and context
	cfg := deployclient.NewConfig()
	deployclient.InitConfig(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Logging
	deployclient.SetupLogging(*cfg)

	// Welcome
	log.Infof("Serverless platform deploy %s", version.Version())
	ts, err := version.BuildTime()
	if err == nil {
		log.Infof("This version was built %s", ts.Local())
	}

	if len(cfg.OpenTelemetryCollectorURL) > 0 {
		tracerProvider, err := telemetry.New(ctx, "platform-deploy", cfg.OpenTelemetryCollectorURL)
		if err != nil {
			return deployclient.ErrorWrap(deployclient.ExitInvocationFailure, fmt.Errorf("set up tracing: %w", err))
		}
		defer func() {
			err := tracerProvider.Shutdown(context.Background())
			if err != nil {
				log.Error(err)
			}
		}()
	}

	// Assemble deployment
	d, err := deployclient.Prepare(cfg)
	if err != nil {
		return err
	}

	if cfg.PrintPayload {
		payload, err := d.JSON()
		if err != nil {
			return deployclient.ErrorWrap(deployclient.ExitInternalError, err)
		}
		fmt.Println(string(payload))
	}

	if cfg.DryRun {
		return nil
	}

	deployer, err := deployclient.NewDeployer(cfg)
	if err != nil {
		return err
	}

	if len(cfg.PushgatewayURL) > 0 {
		defer pushMetrics(cfg.PushgatewayURL)
	}

	_, err = deployer.Save(ctx, d)
	return err
}
