package deployment

import (
	"github.com/serverless/platform-client/pkg/version"
)

const (
	FunctionTypeAWSLambda = "awsLambda"
	ProviderTypeAWS       = "aws"
)

// Data is the deployment record submitted to the dashboard backend.
// Nullable fields are pointers and serialize as JSON null when unset.
type Data struct {
	VersionFramework        *string             `json:"versionFramework"`
	VersionEnterprisePlugin *string             `json:"versionEnterprisePlugin"`
	VersionSDK              *string             `json:"versionSDK"`
	ServerlessFile          *string             `json:"serverlessFile"`
	ServerlessFileName      *string             `json:"serverlessFileName"`
	TenantUID               *string             `json:"tenantUid"`
	AppUID                  *string             `json:"appUid"`
	TenantName              *string             `json:"tenantName"`
	AppName                 *string             `json:"appName"`
	ServiceName             *string             `json:"serviceName"`
	StageName               *string             `json:"stageName"`
	RegionName              *string             `json:"regionName"`
	LogsRoleArn             *string             `json:"logsRoleArn"`
	Status                  *string             `json:"status"`
	Error                   *string             `json:"error"`
	Archived                bool                `json:"archived"`
	Provider                map[string]any      `json:"provider"`
	Functions               map[string]Function `json:"functions"`
	Subscriptions           []Subscription      `json:"subscriptions"`
	Resources               map[string]any      `json:"resources"`
	Layers                  map[string]any      `json:"layers"`
	Plugins                 []any               `json:"plugins"`
	Safeguards              []any               `json:"safeguards"`
	Secrets                 []any               `json:"secrets"`
	Outputs                 map[string]any      `json:"outputs"`
	Custom                  map[string]any      `json:"custom"`
}

type Function struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Timeout     *int           `json:"timeout"`
	Custom      map[string]any `json:"custom"`
}

type Subscription struct {
	Type     string         `json:"type"`
	Function string         `json:"function"`
	Custom   map[string]any `json:"custom"`
}

// Patch holds top-level fields for Set. Nil fields are left untouched.
type Patch struct {
	VersionFramework        *string              `json:"versionFramework"`
	VersionEnterprisePlugin *string              `json:"versionEnterprisePlugin"`
	VersionSDK              *string              `json:"versionSDK"`
	ServerlessFile          *string              `json:"serverlessFile"`
	ServerlessFileName      *string              `json:"serverlessFileName"`
	TenantUID               *string              `json:"tenantUid"`
	AppUID                  *string              `json:"appUid"`
	TenantName              *string              `json:"tenantName"`
	AppName                 *string              `json:"appName"`
	ServiceName             *string              `json:"serviceName"`
	StageName               *string              `json:"stageName"`
	RegionName              *string              `json:"regionName"`
	LogsRoleArn             *string              `json:"logsRoleArn"`
	Status                  *string              `json:"status"`
	Error                   *string              `json:"error"`
	Archived                *bool                `json:"archived"`
	Provider                *map[string]any      `json:"provider"`
	Functions               *map[string]Function `json:"functions"`
	Subscriptions           *[]Subscription      `json:"subscriptions"`
	Resources               *map[string]any      `json:"resources"`
	Layers                  *map[string]any      `json:"layers"`
	Plugins                 *[]any               `json:"plugins"`
	Safeguards              *[]any               `json:"safeguards"`
	Secrets                 *[]any               `json:"secrets"`
	Outputs                 *map[string]any      `json:"outputs"`
	Custom                  *map[string]any      `json:"custom"`
}

// String returns a pointer to s, for use in a Patch.
func String(s string) *string {
	return &s
}

// Bool returns a pointer to b, for use in a Patch.
func Bool(b bool) *bool {
	return &b
}

// Int returns a pointer to i, for use as a function timeout.
func Int(i int) *int {
	return &i
}

func defaultData() *Data {
	return &Data{
		VersionSDK: String(version.Version()),
		Archived:   false,
		Provider: map[string]any{
			"type": ProviderTypeAWS,
		},
		Functions:     make(map[string]Function),
		Subscriptions: make([]Subscription, 0),
		Resources:     make(map[string]any),
		Layers:        make(map[string]any),
		Plugins:       make([]any, 0),
		Safeguards:    make([]any, 0),
		Secrets:       make([]any, 0),
		Outputs:       make(map[string]any),
		Custom:        make(map[string]any),
	}
}

func functionCustomDefaults() map[string]any {
	return map[string]any{
		"handler":      nil,
		"memorySize":   nil,
		"runtime":      nil,
		"role":         nil,
		"onError":      nil,
		"awsKmsKeyArn": nil,
		"tags":         map[string]any{},
		"vpc": map[string]any{
			"securityGroupIds": []any{},
			"subnetIds":        []any{},
		},
		"layers": []any{},
	}
}

func subscriptionCustomDefaults() map[string]any {
	return map[string]any{
		"cors": false,
	}
}

// Shallow merge of overrides into defaults.
func mergeCustom(defaults, overrides map[string]any) map[string]any {
	for key, value := range overrides {
		defaults[key] = value
	}
	return defaults
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
