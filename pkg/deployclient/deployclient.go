package deployclient

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/serverless/platform-client/pkg/deployment"
	"github.com/serverless/platform-client/pkg/serverlessfile"
)

const (
	DefaultStatus  = "success"
	DefaultTimeout = time.Minute

	TargetRequiredMsg       = "tenant, app, service, stage and region are required; specify them as flags or in serverless.yml"
	InvalidTimeoutMsg       = "timeout must be a positive duration"
	VariablesWithoutFileMsg = "template variables given, but no serverless file to apply them to"
)

var (
	ErrTargetRequired       = errors.New(TargetRequiredMsg)
	ErrInvalidTimeout       = errors.New(InvalidTimeoutMsg)
	ErrVariablesWithoutFile = errors.New(VariablesWithoutFileMsg)
)

// Prepare assembles a deployment record from serverless.yml and the command line.
// Command line values take precedence over the serverless file.
func Prepare(cfg *Config) (*deployment.Deployment, error) {
	err := cfg.Validate()
	if err != nil {
		if !cfg.DryRun {
			return nil, ErrorWrap(ExitInvocationFailure, err)
		}

		log.Warnf("Config did not pass validation: %s", err)
	}

	d := deployment.New()

	if len(cfg.ServerlessFile) > 0 {
		manifest, err := loadManifest(cfg)
		if err != nil {
			return nil, err
		}
		log.Infof("Read service '%s' with %d function(s) from %s", manifest.Service, len(manifest.Functions), cfg.ServerlessFile)
		manifest.OverrideTarget(cfg.StageName, cfg.RegionName)
		manifest.Apply(d)
	}

	d.Set(cfg.patch())

	missing := missingTarget(d.Get())
	if len(missing) > 0 {
		err = fmt.Errorf("%w (missing: %s)", ErrTargetRequired, strings.Join(missing, ", "))
		if !cfg.DryRun {
			return nil, ErrorWrap(ExitInvocationFailure, err)
		}
		log.Warnf("%s", err)
	}

	return d, nil
}

func loadManifest(cfg *Config) (*serverlessfile.Manifest, error) {
	var err error
	templateVariables := make(serverlessfile.TemplateVariables)

	if len(cfg.VariablesFile) > 0 {
		templateVariables, err = serverlessfile.VariablesFromFile(cfg.VariablesFile)
		if err != nil {
			return nil, Errorf(ExitInvocationFailure, "load template variables: %s", err)
		}
	}

	if len(cfg.Variables) > 0 {
		templateOverrides := serverlessfile.VariablesFromSlice(cfg.Variables)
		for key, val := range templateOverrides {
			if oldval, ok := templateVariables[key]; ok {
				log.Warnf("Overwriting template variable '%s'; previous value was '%v'", key, oldval)
			}
			log.Infof("Setting template variable '%s' to '%v'", key, val)
			templateVariables[key] = val
		}
	}

	manifest, err := serverlessfile.Load(cfg.ServerlessFile, templateVariables)
	if err != nil {
		if cfg.PrintPayload {
			printErrorContext(cfg.ServerlessFile, err)
		}
		return nil, ErrorWrap(ExitTemplateError, err)
	}

	return manifest, nil
}

func (cfg *Config) patch() deployment.Patch {
	optional := func(s string) *string {
		if len(s) == 0 {
			return nil
		}
		return deployment.String(s)
	}

	patch := deployment.Patch{
		VersionFramework:        optional(cfg.VersionFramework),
		VersionEnterprisePlugin: optional(cfg.VersionEnterprisePlugin),
		TenantUID:               optional(cfg.TenantUID),
		AppUID:                  optional(cfg.AppUID),
		TenantName:              optional(cfg.TenantName),
		AppName:                 optional(cfg.AppName),
		ServiceName:             optional(cfg.ServiceName),
		StageName:               optional(cfg.StageName),
		RegionName:              optional(cfg.RegionName),
		LogsRoleArn:             optional(cfg.LogsRoleArn),
		Status:                  optional(cfg.Status),
		Error:                   optional(cfg.Error),
	}
	if cfg.Archived {
		patch.Archived = deployment.Bool(true)
	}

	return patch
}

func missingTarget(data *deployment.Data) []string {
	missing := make([]string, 0)
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"tenant", data.TenantName},
		{"app", data.AppName},
		{"service", data.ServiceName},
		{"stage", data.StageName},
		{"region", data.RegionName},
	} {
		if field.value == nil || len(*field.value) == 0 {
			missing = append(missing, field.name)
		}
	}
	return missing
}
