package deployment_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/serverless/platform-client/pkg/accesskeys"
	"github.com/serverless/platform-client/pkg/deployment"
	"github.com/serverless/platform-client/pkg/platform"
	"github.com/serverless/platform-client/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func defaultJSON(overrides string) string {
	return fmt.Sprintf(`{
		"versionFramework": null,
		"versionEnterprisePlugin": null,
		"versionSDK": %q,
		"serverlessFile": null,
		"serverlessFileName": null,
		"tenantUid": null,
		"appUid": null,
		%s
		"logsRoleArn": null,
		"status": null,
		"error": null,
		"archived": false,
		"provider": {"type": "aws"},
		"functions": {},
		"subscriptions": [],
		"resources": {},
		"layers": {},
		"plugins": [],
		"safeguards": [],
		"secrets": [],
		"outputs": {},
		"custom": {}
	}`, version.Version(), overrides)
}

const nullTarget = `
		"tenantName": null,
		"appName": null,
		"serviceName": null,
		"stageName": null,
		"regionName": null,`

func mustJSON(t *testing.T, d *deployment.Deployment) string {
	data, err := d.JSON()
	require.NoError(t, err)
	return string(data)
}

func TestDefaults(t *testing.T) {
	d := deployment.New()
	assert.JSONEq(t, defaultJSON(nullTarget), mustJSON(t, d))
	assert.Equal(t, version.Version(), *d.Get().VersionSDK)
}

func TestDefaultsAreNotShared(t *testing.T) {
	a := deployment.New()
	b := deployment.New()

	a.Get().Provider["name"] = "aws"
	a.Get().Custom["key"] = "value"
	a.SetFunction(deployment.FunctionInput{Name: "func"})
	a.Get().Functions["func"].Custom["vpc"].(map[string]any)["subnetIds"] = []any{"subnet-1"}
	a.SetFunction(deployment.FunctionInput{Name: "other"})

	assert.JSONEq(t, defaultJSON(nullTarget), mustJSON(t, b))
	assert.Equal(t, []any{}, a.Get().Functions["other"].Custom["vpc"].(map[string]any)["subnetIds"])
}

func TestGetReturnsLiveData(t *testing.T) {
	d := deployment.New()
	d.Get().Archived = true
	assert.True(t, d.Get().Archived)
}

func TestSet(t *testing.T) {
	d := deployment.New()
	d.Set(deployment.Patch{VersionEnterprisePlugin: deployment.String("1000000")})
	assert.Equal(t, "1000000", *d.Get().VersionEnterprisePlugin)

	t.Run("only patched keys change", func(t *testing.T) {
		d := deployment.New()
		d.Set(deployment.Patch{
			TenantName:  deployment.String("tenant"),
			AppName:     deployment.String("app"),
			ServiceName: deployment.String("service"),
			StageName:   deployment.String("stage"),
			RegionName:  deployment.String("region"),
		})
		assert.JSONEq(t, defaultJSON(`
			"tenantName": "tenant",
			"appName": "app",
			"serviceName": "service",
			"stageName": "stage",
			"regionName": "region",`), mustJSON(t, d))
	})

	t.Run("nested objects are replaced, not merged", func(t *testing.T) {
		d := deployment.New()
		d.Set(deployment.Patch{Provider: &map[string]any{"name": "aws", "runtime": "nodejs20.x"}})
		assert.Equal(t, map[string]any{"name": "aws", "runtime": "nodejs20.x"}, d.Get().Provider)
	})

	t.Run("archived can be toggled both ways", func(t *testing.T) {
		d := deployment.New()
		d.Set(deployment.Patch{Archived: deployment.Bool(true)})
		assert.True(t, d.Get().Archived)
		d.Set(deployment.Patch{Archived: deployment.Bool(false)})
		assert.False(t, d.Get().Archived)
	})
}

func TestSetMap(t *testing.T) {
	d := deployment.New()
	err := d.SetMap(map[string]any{
		"versionFramework": "3.38.0",
		"status":           "success",
		"plugins":          []any{"serverless-offline"},
		"secrets":          []any{},
	})
	assert.NoError(t, err)
	assert.Equal(t, "3.38.0", *d.Get().VersionFramework)
	assert.Equal(t, "success", *d.Get().Status)
	assert.Equal(t, []any{"serverless-offline"}, d.Get().Plugins)

	t.Run("unknown keys are rejected", func(t *testing.T) {
		d := deployment.New()
		err := d.SetMap(map[string]any{
			"status":  "success",
			"unknown": true,
		})
		assert.ErrorContains(t, err, "unknown")
		assert.Nil(t, d.Get().Status)
	})
}

func TestSetFunction(t *testing.T) {
	d := deployment.New()
	d.SetFunction(deployment.FunctionInput{
		Name:        "func",
		Description: "desc",
		Custom: map[string]any{
			"handler": "handler.hello",
		},
	})

	functions, err := json.Marshal(d.Get().Functions)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"func": {
			"name": "func",
			"description": "desc",
			"type": "awsLambda",
			"timeout": null,
			"custom": {
				"handler": "handler.hello",
				"memorySize": null,
				"runtime": null,
				"role": null,
				"onError": null,
				"awsKmsKeyArn": null,
				"tags": {},
				"vpc": {"securityGroupIds": [], "subnetIds": []},
				"layers": []
			}
		}
	}`, string(functions))

	t.Run("same name overwrites", func(t *testing.T) {
		d.SetFunction(deployment.FunctionInput{
			Name:    "func",
			Timeout: deployment.Int(6),
			Custom: map[string]any{
				"vpc": map[string]any{"subnetIds": []any{"subnet-1"}},
			},
		})
		assert.Len(t, d.Get().Functions, 1)
		fn := d.Get().Functions["func"]
		assert.Equal(t, 6, *fn.Timeout)
		assert.Equal(t, "", fn.Description)
		assert.Nil(t, fn.Custom["handler"])
		// custom is merged one level deep only
		assert.Equal(t, map[string]any{"subnetIds": []any{"subnet-1"}}, fn.Custom["vpc"])
	})
}

func TestSetSubscription(t *testing.T) {
	d := deployment.New()
	input := deployment.SubscriptionInput{
		Type:     "aws.apigateway.http",
		Function: "func",
		Custom: map[string]any{
			"path":      "/",
			"method":    "get",
			"restApiId": "XYZ",
		},
	}
	d.SetSubscription(input)

	subscriptions, err := json.Marshal(d.Get().Subscriptions)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"type": "aws.apigateway.http",
		"function": "func",
		"custom": {"path": "/", "method": "get", "restApiId": "XYZ", "cors": false}
	}]`, string(subscriptions))

	t.Run("no deduplication", func(t *testing.T) {
		d.SetSubscription(input)
		assert.Len(t, d.Get().Subscriptions, 2)
		assert.Equal(t, d.Get().Subscriptions[0], d.Get().Subscriptions[1])
	})

	t.Run("caller may override cors", func(t *testing.T) {
		d.SetSubscription(deployment.SubscriptionInput{Type: "aws.apigateway.http", Function: "func", Custom: map[string]any{"cors": true}})
		assert.Equal(t, true, d.Get().Subscriptions[2].Custom["cors"])
	})
}

type recordedRequest struct {
	path    string
	headers http.Header
	body    []byte
}

func backend(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	requests := make([]recordedRequest, 0)
	router := chi.NewRouter()
	router.Post("/core/tenants/{tenant}/applications/{app}/services/{service}/stages/{stage}/regions/{region}/deployments", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		requests = append(requests, recordedRequest{
			path:    r.URL.Path,
			headers: r.Header.Clone(),
			body:    body,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, &requests
}

func unsavedDeployment() *deployment.Deployment {
	d := deployment.New()
	d.Set(deployment.Patch{
		TenantName:  deployment.String("tenant"),
		AppName:     deployment.String("app"),
		ServiceName: deployment.String("service"),
		StageName:   deployment.String("stage"),
		RegionName:  deployment.String("region"),
	})
	return d
}

func testClient(server *httptest.Server, keys accesskeys.Provider) *platform.Client {
	return platform.NewClient(platform.Endpoints{
		APIURL:       server.URL + "/core",
		DashboardURL: "https://dashboard.serverless.com",
	}, keys)
}

func TestSave(t *testing.T) {
	server, requests := backend(t, http.StatusOK, `"object"`)
	keys := &accesskeys.MockProvider{}
	keys.On("AccessKeyForTenant", mock.Anything, "tenant").Return("access-key", nil).Once()

	d := unsavedDeployment()
	result, err := d.Save(context.Background(), testClient(server, keys))
	require.NoError(t, err)

	assert.Equal(t, "object", result.Deployment)
	assert.Equal(t, "https://dashboard.serverless.com/tenants/tenant/applications/app/services/service/stage/stage/region/region", result.DashboardURL)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, "/core/tenants/tenant/applications/app/services/service/stages/stage/regions/region/deployments", req.path)
	assert.Equal(t, "bearer access-key", req.headers.Get("Authorization"))
	assert.Empty(t, req.headers.Get("Content-Type"))
	assert.JSONEq(t, defaultJSON(`
		"tenantName": "tenant",
		"appName": "app",
		"serviceName": "service",
		"stageName": "stage",
		"regionName": "region",`), string(req.body))

	keys.AssertExpectations(t)
}

func TestSaveReturnsObjectResponse(t *testing.T) {
	server, _ := backend(t, http.StatusCreated, `{"deploymentUid":"abc"}`)
	result, err := unsavedDeployment().Save(context.Background(), testClient(server, accesskeys.Static("access-key")))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"deploymentUid": "abc"}, result.Deployment)
}

func TestSaveWithoutTarget(t *testing.T) {
	var path string
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		path = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	keys := &accesskeys.MockProvider{}
	keys.On("AccessKeyForTenant", mock.Anything, "").Return("access-key", nil).Once()

	result, err := deployment.New().Save(context.Background(), testClient(server, keys))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "/core/tenants//applications//services//stages//regions//deployments", path)
	assert.Equal(t, "https://dashboard.serverless.com/tenants//applications//services//stage//region/", result.DashboardURL)
	keys.AssertExpectations(t)
}

func TestSaveFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("access key lookup failure", func(t *testing.T) {
		server, requests := backend(t, http.StatusOK, `{}`)
		keys := &accesskeys.MockProvider{}
		broken := errors.New("not logged in")
		keys.On("AccessKeyForTenant", mock.Anything, "tenant").Return("", broken)

		result, err := unsavedDeployment().Save(ctx, testClient(server, keys))
		assert.ErrorIs(t, err, broken)
		assert.Nil(t, result)
		assert.Empty(t, *requests)
	})

	t.Run("backend error", func(t *testing.T) {
		server, _ := backend(t, http.StatusUnauthorized, `{"message":"bad key"}`)
		result, err := unsavedDeployment().Save(ctx, testClient(server, accesskeys.Static("access-key")))
		respErr := &platform.ResponseError{}
		assert.ErrorAs(t, err, &respErr)
		assert.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
		assert.Nil(t, result)
	})

	t.Run("unparseable response", func(t *testing.T) {
		server, _ := backend(t, http.StatusOK, `not json`)
		result, err := unsavedDeployment().Save(ctx, testClient(server, accesskeys.Static("access-key")))
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestURLs(t *testing.T) {
	assert.Equal(t,
		"https://api.serverless.com/core/tenants/t/applications/a/services/s/stages/st/regions/r/deployments",
		deployment.SaveURL("https://api.serverless.com/core", "t", "a", "s", "st", "r"),
	)
	assert.Equal(t,
		"https://dashboard.serverless.com/tenants/t/applications/a/services/s/stage/st/region/r",
		deployment.DashboardURL("https://dashboard.serverless.com", "t", "a", "s", "st", "r"),
	)
	assert.Equal(t,
		"https://api.serverless.com/core/tenants/a%2Fb/applications/my%20app/services/s/stages/st/regions/r/deployments",
		deployment.SaveURL("https://api.serverless.com/core", "a/b", "my app", "s", "st", "r"),
	)
	assert.Equal(t,
		"https://dashboard.serverless.com/tenants/a%2Fb/applications/a/services/s/stage/st/region/r",
		deployment.DashboardURL("https://dashboard.serverless.com", "a/b", "a", "s", "st", "r"),
	)
}
