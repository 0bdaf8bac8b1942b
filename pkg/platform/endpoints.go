package platform

import (
	"fmt"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	EnvPlatformStage = "SERVERLESS_PLATFORM_STAGE"
)

// Endpoints holds the base URLs of the platform backends.
// LogDestinationURL must end with a slash; paths are appended to it verbatim.
type Endpoints struct {
	APIURL            string `json:"api-url"`
	DashboardURL      string `json:"dashboard-url"`
	LogDestinationURL string `json:"log-destination-url"`
}

var endpoints = map[string]Endpoints{
	StageProd: {
		APIURL:            "https://api.serverless.com/core",
		DashboardURL:      "https://dashboard.serverless.com",
		LogDestinationURL: "https://api.serverless.com/logs/",
	},
	StageDev: {
		APIURL:            "https://api.serverless-dev.com/core",
		DashboardURL:      "https://dashboard.serverless-dev.com",
		LogDestinationURL: "https://api.serverless-dev.com/logs/",
	},
}

// DefaultEndpoints returns the backend URLs for a platform stage.
// An empty stage means production.
func DefaultEndpoints(stage string) (Endpoints, error) {
	if len(stage) == 0 {
		stage = StageProd
	}
	e, ok := endpoints[stage]
	if !ok {
		return Endpoints{}, fmt.Errorf("unknown platform stage '%s'; expected '%s' or '%s'", stage, StageProd, StageDev)
	}
	return e, nil
}

// Override replaces every endpoint that is set in other.
func (e Endpoints) Override(other Endpoints) Endpoints {
	if len(other.APIURL) > 0 {
		e.APIURL = other.APIURL
	}
	if len(other.DashboardURL) > 0 {
		e.DashboardURL = other.DashboardURL
	}
	if len(other.LogDestinationURL) > 0 {
		e.LogDestinationURL = other.LogDestinationURL
	}
	return e
}
