package accesskeys

import (
	"context"
	"errors"
)

// Lookup of bearer tokens for the platform backends.

var ErrNoAccessKey = errors.New("no access key found for tenant")

type Provider interface {
	AccessKeyForTenant(ctx context.Context, tenant string) (string, error)
}

// Static returns the same key for every tenant.
type Static string

func (s Static) AccessKeyForTenant(_ context.Context, _ string) (string, error) {
	if len(s) == 0 {
		return "", ErrNoAccessKey
	}
	return string(s), nil
}

// Chain asks each provider in turn. ErrNoAccessKey moves on to the next
// provider, any other error is returned immediately.
type Chain []Provider

func (c Chain) AccessKeyForTenant(ctx context.Context, tenant string) (string, error) {
	for _, provider := range c {
		key, err := provider.AccessKeyForTenant(ctx, tenant)
		if errors.Is(err, ErrNoAccessKey) {
			continue
		}
		if err != nil {
			return "", err
		}
		return key, nil
	}
	return "", ErrNoAccessKey
}
