package serverlessfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	yamlv2 "gopkg.in/yaml.v2"
)

var ErrMultipleDocuments = errors.New("serverless file must contain exactly one YAML document")

// Manifest is the part of serverless.yml that describes a deployment.
type Manifest struct {
	Service   Service             `json:"service"`
	App       string              `json:"app"`
	Tenant    string              `json:"tenant"`
	Org       string              `json:"org"`
	Provider  map[string]any      `json:"provider"`
	Functions map[string]Function `json:"functions"`
	Resources map[string]any      `json:"resources"`
	Plugins   []any               `json:"plugins"`
	Custom    map[string]any      `json:"custom"`
	Outputs   map[string]any      `json:"outputs"`

	// Templated file contents and base name, as submitted with the deployment.
	Raw      string `json:"-"`
	FileName string `json:"-"`
}

// Service is either `service: name` or `service: {name: name}`.
type Service string

func (s *Service) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = Service(name)
		return nil
	}
	obj := struct {
		Name string `json:"name"`
	}{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("service must be a string or an object with a name: %w", err)
	}
	*s = Service(obj.Name)
	return nil
}

type Function struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Handler      string           `json:"handler"`
	Runtime      string           `json:"runtime"`
	Role         string           `json:"role"`
	OnError      string           `json:"onError"`
	AwsKmsKeyArn string           `json:"awsKmsKeyArn"`
	MemorySize   *int             `json:"memorySize"`
	Timeout      *int             `json:"timeout"`
	Tags         map[string]any   `json:"tags"`
	Vpc          map[string]any   `json:"vpc"`
	Layers       []any            `json:"layers"`
	Events       []map[string]any `json:"events"`
}

// Load reads, templates and parses a serverless.yml file.
func Load(path string, vars TemplateVariables) (*Manifest, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: open file: %w", path, err)
	}

	manifest, err := Parse(file, vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	manifest.FileName = filepath.Base(path)

	return manifest, nil
}

// Parse templates and parses the contents of a serverless.yml file.
func Parse(data []byte, vars TemplateVariables) (*Manifest, error) {
	templated, err := templatedFile(data, vars)
	if err != nil {
		return nil, errors.New(strings.ReplaceAll(err.Error(), "\n", ": "))
	}

	err = singleDocument(templated)
	if err != nil {
		return nil, err
	}

	content, err := yaml.YAMLToJSON(templated)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{}
	err = json.Unmarshal(content, manifest)
	if err != nil {
		return nil, err
	}
	manifest.Raw = string(templated)

	return manifest, nil
}

func singleDocument(data []byte) error {
	var content any
	decoder := yamlv2.NewDecoder(bytes.NewReader(data))

	err := decoder.Decode(&content)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return err
	}

	err = decoder.Decode(&content)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return err
	}

	return ErrMultipleDocuments
}

// Stage returns provider.stage, if it is a string.
func (m *Manifest) Stage() string {
	return stringField(m.Provider, "stage")
}

// Region returns provider.region, if it is a string.
func (m *Manifest) Region() string {
	return stringField(m.Provider, "region")
}

// OverrideTarget replaces provider.stage and provider.region where a value is given,
// so that function names and the provider object follow the deployed stage.
func (m *Manifest) OverrideTarget(stage, region string) {
	if len(stage) == 0 && len(region) == 0 {
		return
	}
	if m.Provider == nil {
		m.Provider = make(map[string]any)
	}
	if len(stage) > 0 {
		m.Provider["stage"] = stage
	}
	if len(region) > 0 {
		m.Provider["region"] = region
	}
}

// TenantName prefers `tenant` over the newer `org` key.
func (m *Manifest) TenantName() string {
	if len(m.Tenant) > 0 {
		return m.Tenant
	}
	return m.Org
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
