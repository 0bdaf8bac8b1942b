package logdestination

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/serverless/platform-client/pkg/platform"
)

const createOperation = "logdestination.create"

type Options struct {
	TenantUID   string
	AppUID      string
	ServiceName string
	RegionName  string
	StageName   string
	AccountID   string
	AccessKey   string
}

// Payload is the request body. The access key is only ever sent as a header.
type Payload struct {
	TenantUID   string `json:"tenantUid"`
	AppUID      string `json:"appUid"`
	ServiceName string `json:"serviceName"`
	StageName   string `json:"stageName"`
	RegionName  string `json:"regionName"`
	AccountID   string `json:"accountId"`
}

func NewPayload(opts Options) Payload {
	return Payload{
		TenantUID:   opts.TenantUID,
		AppUID:      opts.AppUID,
		ServiceName: opts.ServiceName,
		StageName:   opts.StageName,
		RegionName:  opts.RegionName,
		AccountID:   opts.AccountID,
	}
}

// URL of the create endpoint. The base URL is expected to end with a slash.
func URL(baseURL string) string {
	return baseURL + "destinations/create"
}

// Get asks the logging backend to create a log destination and returns the decoded
// response body as is, whatever JSON value it holds.
func Get(ctx context.Context, client *platform.Client, opts Options) (any, error) {
	body, err := json.Marshal(NewPayload(opts))
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"Authorization": platform.Bearer(opts.AccessKey),
		"Content-Type":  "application/json",
	}

	log.WithFields(log.Fields{
		"tenantUid": opts.TenantUID,
		"appUid":    opts.AppUID,
		"service":   opts.ServiceName,
		"stage":     opts.StageName,
		"region":    opts.RegionName,
	}).Debugf("Creating log destination for account %s", opts.AccountID)

	var response any
	err = client.PostJSON(ctx, createOperation, URL(client.Endpoints.LogDestinationURL), headers, body, &response)
	if err != nil {
		return nil, fmt.Errorf("create log destination: %w", err)
	}

	return response, nil
}
