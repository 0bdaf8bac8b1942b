package deployclient

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/serverless/platform-client/pkg/accesskeys"
	"github.com/serverless/platform-client/pkg/deployment"
	"github.com/serverless/platform-client/pkg/platform"
)

type Deployer struct {
	Client *platform.Client
}

// NewDeployer builds a platform client from configuration. Access keys are taken
// from the command line, then the environment, then ~/.serverlessrc.
func NewDeployer(cfg *Config) (*Deployer, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, ErrorWrap(ExitInvocationFailure, err)
	}

	keys := accesskeys.Chain{
		accesskeys.Static(cfg.AccessKey),
		accesskeys.EnvProvider{},
		accesskeys.NewFileProvider(),
	}

	return &Deployer{
		Client: platform.NewClient(endpoints, keys),
	}, nil
}

// Save submits the deployment and reports where it can be inspected.
func (dp *Deployer) Save(ctx context.Context, d *deployment.Deployment) (*deployment.SaveResult, error) {
	log.Infof("Sending deployment to the Serverless platform at %s...", dp.Client.Endpoints.APIURL)

	result, err := d.Save(ctx, dp.Client)
	if err != nil {
		e := classify(ctx, err)
		if e.Code == ExitUnauthenticated {
			log.Warnf("hint: run `serverless login` or set SERVERLESS_ACCESS_KEY for tenant %q", stringValue(d.Get().TenantName))
		}
		return nil, e
	}

	data := d.Get()
	log.Infof("Deployment accepted by the Serverless platform.")
	log.Infof("Deployment information:")
	log.Infof("---")
	log.Infof("service......: %s", stringValue(data.ServiceName))
	log.Infof("stage........: %s", stringValue(data.StageName))
	log.Infof("region.......: %s", stringValue(data.RegionName))
	log.Infof("functions....: %d", len(data.Functions))
	log.Infof("dashboard....: %s", result.DashboardURL)
	log.Infof("---")

	return result, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
