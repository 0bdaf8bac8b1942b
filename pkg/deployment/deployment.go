package deployment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	ocodes "go.opentelemetry.io/otel/codes"

	"github.com/serverless/platform-client/pkg/platform"
	"github.com/serverless/platform-client/pkg/telemetry"
)

const saveOperation = "deployment.save"

// Deployment accumulates the description of a single deployment attempt.
// It is not safe for concurrent use.
type Deployment struct {
	data *Data
}

type FunctionInput struct {
	Name        string
	Description string
	Timeout     *int
	Custom      map[string]any
}

type SubscriptionInput struct {
	Type     string
	Function string
	Custom   map[string]any
}

type SaveResult struct {
	Deployment   any    `json:"deployment"`
	DashboardURL string `json:"dashboardUrl"`
}

func New() *Deployment {
	return &Deployment{
		data: defaultData(),
	}
}

// Get returns the live record. Mutations through the returned pointer are visible to Save.
func (d *Deployment) Get() *Data {
	return d.data
}

// Set overwrites every top-level field that is non-nil in patch.
func (d *Deployment) Set(patch Patch) {
	data := d.data
	setString := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}

	setString(&data.VersionFramework, patch.VersionFramework)
	setString(&data.VersionEnterprisePlugin, patch.VersionEnterprisePlugin)
	setString(&data.VersionSDK, patch.VersionSDK)
	setString(&data.ServerlessFile, patch.ServerlessFile)
	setString(&data.ServerlessFileName, patch.ServerlessFileName)
	setString(&data.TenantUID, patch.TenantUID)
	setString(&data.AppUID, patch.AppUID)
	setString(&data.TenantName, patch.TenantName)
	setString(&data.AppName, patch.AppName)
	setString(&data.ServiceName, patch.ServiceName)
	setString(&data.StageName, patch.StageName)
	setString(&data.RegionName, patch.RegionName)
	setString(&data.LogsRoleArn, patch.LogsRoleArn)
	setString(&data.Status, patch.Status)
	setString(&data.Error, patch.Error)

	if patch.Archived != nil {
		data.Archived = *patch.Archived
	}
	if patch.Provider != nil {
		data.Provider = *patch.Provider
	}
	if patch.Functions != nil {
		data.Functions = *patch.Functions
	}
	if patch.Subscriptions != nil {
		data.Subscriptions = *patch.Subscriptions
	}
	if patch.Resources != nil {
		data.Resources = *patch.Resources
	}
	if patch.Layers != nil {
		data.Layers = *patch.Layers
	}
	if patch.Plugins != nil {
		data.Plugins = *patch.Plugins
	}
	if patch.Safeguards != nil {
		data.Safeguards = *patch.Safeguards
	}
	if patch.Secrets != nil {
		data.Secrets = *patch.Secrets
	}
	if patch.Outputs != nil {
		data.Outputs = *patch.Outputs
	}
	if patch.Custom != nil {
		data.Custom = *patch.Custom
	}
}

// SetMap applies a patch keyed by JSON field names, e.g. {"tenantName": "acme"}.
// Unknown keys are rejected and leave the record untouched.
func (d *Deployment) SetMap(fields map[string]any) error {
	patch := Patch{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &patch,
	})
	if err != nil {
		return err
	}

	err = decoder.Decode(fields)
	if err != nil {
		return fmt.Errorf("decode deployment patch: %w", err)
	}

	d.Set(patch)
	return nil
}

// SetFunction stores a function under its name, replacing any previous function with that name.
func (d *Deployment) SetFunction(fn FunctionInput) {
	d.data.Functions[fn.Name] = Function{
		Name:        fn.Name,
		Description: fn.Description,
		Type:        FunctionTypeAWSLambda,
		Timeout:     fn.Timeout,
		Custom:      mergeCustom(functionCustomDefaults(), fn.Custom),
	}
}

// SetSubscription appends a subscription. The function reference is not checked.
func (d *Deployment) SetSubscription(sub SubscriptionInput) {
	d.data.Subscriptions = append(d.data.Subscriptions, Subscription{
		Type:     sub.Type,
		Function: sub.Function,
		Custom:   mergeCustom(subscriptionCustomDefaults(), sub.Custom),
	})
}

// JSON returns the serialized record, as sent by Save.
func (d *Deployment) JSON() ([]byte, error) {
	return json.Marshal(d.data)
}

// Save submits the record to the dashboard backend.
func (d *Deployment) Save(ctx context.Context, client *platform.Client) (*SaveResult, error) {
	tenant := deref(d.data.TenantName)
	app := deref(d.data.AppName)
	service := deref(d.data.ServiceName)
	stage := deref(d.data.StageName)
	region := deref(d.data.RegionName)

	ctx, span := telemetry.Tracer().Start(ctx, "Save deployment")
	defer span.End()
	span.SetAttributes(telemetry.TargetAttributes(tenant, app, service, stage, region)...)

	fail := func(err error) (*SaveResult, error) {
		span.SetStatus(ocodes.Error, err.Error())
		return nil, err
	}

	token, err := client.AccessKeys.AccessKeyForTenant(ctx, tenant)
	if err != nil {
		return fail(fmt.Errorf("access key for tenant '%s': %w", tenant, err))
	}

	body, err := d.JSON()
	if err != nil {
		return fail(err)
	}

	logger := log.WithFields(log.Fields{
		"tenant":  tenant,
		"app":     app,
		"service": service,
		"stage":   stage,
		"region":  region,
	})
	logger.Debugf("Saving deployment")

	headers := map[string]string{
		"Authorization": platform.Bearer(token),
	}

	var parsed any
	err = client.PostJSON(ctx, saveOperation, SaveURL(client.Endpoints.APIURL, tenant, app, service, stage, region), headers, body, &parsed)
	if err != nil {
		return fail(fmt.Errorf("save deployment: %w", err))
	}

	dashboardURL := DashboardURL(client.Endpoints.DashboardURL, tenant, app, service, stage, region)
	logger.Debugf("Deployment saved; dashboard at %s", dashboardURL)

	return &SaveResult{
		Deployment:   parsed,
		DashboardURL: dashboardURL,
	}, nil
}

// SaveURL is the backend endpoint receiving deployments for a target.
func SaveURL(apiURL, tenant, app, service, stage, region string) string {
	return fmt.Sprintf("%s/tenants/%s/applications/%s/services/%s/stages/%s/regions/%s/deployments",
		apiURL,
		url.PathEscape(tenant),
		url.PathEscape(app),
		url.PathEscape(service),
		url.PathEscape(stage),
		url.PathEscape(region),
	)
}

// DashboardURL is where users can inspect deployments for a target.
func DashboardURL(dashboardURL, tenant, app, service, stage, region string) string {
	return fmt.Sprintf("%s/tenants/%s/applications/%s/services/%s/stage/%s/region/%s",
		dashboardURL,
		url.PathEscape(tenant),
		url.PathEscape(app),
		url.PathEscape(service),
		url.PathEscape(stage),
		url.PathEscape(region),
	)
}
