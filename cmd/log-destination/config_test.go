package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func completeConfig() *Config {
	return &Config{
		AccessKey:     "accessKey",
		AccountID:     "ACCOUNT_ID",
		AppUID:        "app123",
		PlatformStage: "prod",
		RegionName:    "region",
		ServiceName:   "serviceName",
		StageName:     "stage",
		TenantUID:     "tenant123",
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, completeConfig().validate())

	cfg := completeConfig()
	cfg.AccessKey = ""
	assert.EqualError(t, cfg.validate(), "configuration option 'access-key' is required")

	cfg = completeConfig()
	cfg.TenantUID = ""
	assert.EqualError(t, cfg.validate(), "configuration option 'tenant-uid' is required")
}

func TestEndpoints(t *testing.T) {
	cfg := completeConfig()
	endpoints, err := cfg.endpoints()
	assert.NoError(t, err)
	assert.Equal(t, "https://api.serverless.com/logs/", endpoints.LogDestinationURL)

	cfg.LogDestinationURL = "http://localhost:8080/"
	endpoints, err = cfg.endpoints()
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/", endpoints.LogDestinationURL)

	cfg.PlatformStage = "nope"
	_, err = cfg.endpoints()
	assert.Error(t, err)
}
