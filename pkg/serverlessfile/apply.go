package serverlessfile

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/serverless/platform-client/pkg/deployment"
)

const SubscriptionTypeHTTP = "aws.apigateway.http"

// Apply copies the manifest into a deployment record.
// Target fields are only set when the manifest has a value for them.
func (m *Manifest) Apply(d *deployment.Deployment) {
	patch := deployment.Patch{}
	optional := func(s string) *string {
		if len(s) == 0 {
			return nil
		}
		return deployment.String(s)
	}

	patch.ServiceName = optional(string(m.Service))
	patch.AppName = optional(m.App)
	patch.TenantName = optional(m.TenantName())
	patch.StageName = optional(m.Stage())
	patch.RegionName = optional(m.Region())
	patch.ServerlessFile = optional(m.Raw)
	patch.ServerlessFileName = optional(m.FileName)

	if m.Provider != nil {
		provider := make(map[string]any, len(m.Provider)+1)
		for key, value := range m.Provider {
			provider[key] = value
		}
		if _, ok := provider["type"]; !ok {
			provider["type"] = deployment.ProviderTypeAWS
		}
		patch.Provider = &provider
	}
	if m.Resources != nil {
		patch.Resources = &m.Resources
	}
	if m.Plugins != nil {
		patch.Plugins = &m.Plugins
	}
	if m.Custom != nil {
		patch.Custom = &m.Custom
	}
	if m.Outputs != nil {
		patch.Outputs = &m.Outputs
	}

	d.Set(patch)

	// Sorted for a stable subscription order.
	keys := make([]string, 0, len(m.Functions))
	for key := range m.Functions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fn := m.Functions[key]
		name := m.functionName(key, fn)
		d.SetFunction(deployment.FunctionInput{
			Name:        name,
			Description: fn.Description,
			Timeout:     fn.Timeout,
			Custom:      fn.custom(),
		})
		for i, event := range fn.Events {
			sub, err := subscription(name, event)
			if err != nil {
				log.Warnf("Skipping event %d of function %q: %s", i, key, err)
				continue
			}
			d.SetSubscription(sub)
		}
	}
}

// Deployed Lambda name: explicit name, or {service}-{stage}-{key} like the framework does.
func (m *Manifest) functionName(key string, fn Function) string {
	if len(fn.Name) > 0 {
		return fn.Name
	}
	if len(m.Service) == 0 || len(m.Stage()) == 0 {
		return key
	}
	return fmt.Sprintf("%s-%s-%s", m.Service, m.Stage(), key)
}

func (fn Function) custom() map[string]any {
	custom := make(map[string]any)
	set := func(key, value string) {
		if len(value) > 0 {
			custom[key] = value
		}
	}

	set("handler", fn.Handler)
	set("runtime", fn.Runtime)
	set("role", fn.Role)
	set("onError", fn.OnError)
	set("awsKmsKeyArn", fn.AwsKmsKeyArn)

	if fn.MemorySize != nil {
		custom["memorySize"] = *fn.MemorySize
	}
	if fn.Tags != nil {
		custom["tags"] = fn.Tags
	}
	if fn.Vpc != nil {
		custom["vpc"] = fn.Vpc
	}
	if fn.Layers != nil {
		custom["layers"] = fn.Layers
	}

	return custom
}

func subscription(function string, event map[string]any) (deployment.SubscriptionInput, error) {
	if len(event) != 1 {
		return deployment.SubscriptionInput{}, fmt.Errorf("expected exactly one event type, found %d", len(event))
	}

	// single entry
	var kind string
	var body any
	for kind, body = range event {
	}

	if kind == "http" {
		custom, err := httpEvent(body)
		if err != nil {
			return deployment.SubscriptionInput{}, err
		}
		return deployment.SubscriptionInput{
			Type:     SubscriptionTypeHTTP,
			Function: function,
			Custom:   custom,
		}, nil
	}

	custom, ok := body.(map[string]any)
	if !ok {
		custom = map[string]any{"value": body}
	}
	return deployment.SubscriptionInput{
		Type:     "aws." + kind,
		Function: function,
		Custom:   custom,
	}, nil
}

// Both `http: GET path` and `http: {method: get, path: path}` are accepted.
func httpEvent(body any) (map[string]any, error) {
	switch event := body.(type) {
	case string:
		tokens := strings.Fields(event)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("http event %q must be in the form 'METHOD path'", event)
		}
		return map[string]any{
			"method": strings.ToLower(tokens[0]),
			"path":   tokens[1],
		}, nil
	case map[string]any:
		custom := make(map[string]any, len(event))
		for key, value := range event {
			custom[key] = value
		}
		if method, ok := custom["method"].(string); ok {
			custom["method"] = strings.ToLower(method)
		}
		return custom, nil
	default:
		return nil, fmt.Errorf("http event has unexpected type %T", body)
	}
}
