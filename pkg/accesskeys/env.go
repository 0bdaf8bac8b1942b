package accesskeys

import (
	"context"
	"os"
)

const EnvAccessKey = "SERVERLESS_ACCESS_KEY"

var _ Provider = EnvProvider{}

// EnvProvider uses the access key in SERVERLESS_ACCESS_KEY for every tenant.
type EnvProvider struct{}

func (EnvProvider) AccessKeyForTenant(ctx context.Context, tenant string) (string, error) {
	return Static(os.Getenv(EnvAccessKey)).AccessKeyForTenant(ctx, tenant)
}
