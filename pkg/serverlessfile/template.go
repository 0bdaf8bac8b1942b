package serverlessfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/ghodss/yaml"
)

type TemplateVariables map[string]any

func templatedFile(data []byte, ctx TemplateVariables) ([]byte, error) {
	if len(ctx) == 0 {
		return data, nil
	}
	template, err := raymond.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse template file: %w", err)
	}

	output, err := template.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	return []byte(output), nil
}

// VariablesFromFile reads template variables from a YAML or JSON file.
func VariablesFromFile(path string) (TemplateVariables, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: open file: %w", path, err)
	}

	vars := TemplateVariables{}
	err = yaml.Unmarshal(file, &vars)

	return vars, err
}

// VariablesFromSlice parses KEY=VALUE pairs. A bare KEY is set to true.
func VariablesFromSlice(vars []string) TemplateVariables {
	tv := TemplateVariables{}
	for _, keyval := range vars {
		tokens := strings.SplitN(keyval, "=", 2)
		switch len(tokens) {
		case 2: // KEY=VAL
			tv[tokens[0]] = tokens[1]
		case 1: // KEY
			tv[tokens[0]] = true
		default:
			continue
		}
	}

	return tv
}

// DetectErrorLine extracts the line number from a YAML syntax error message.
func DetectErrorLine(e string) (int, error) {
	var line int
	idx := strings.Index(e, "yaml: line ")
	if idx < 0 {
		return 0, fmt.Errorf("no line number in '%s'", e)
	}
	_, err := fmt.Sscanf(e[idx:], "yaml: line %d:", &line)
	return line, err
}

// ErrorContext numbers every line of content and marks the offending line.
func ErrorContext(content string, line int) []string {
	ctx := make([]string, 0)
	lines := strings.Split(content, "\n")
	format := "%03d: %s"
	for l := range lines {
		ctx = append(ctx, fmt.Sprintf(format, l+1, lines[l]))
		if l+1 == line {
			helper := "     " + strings.Repeat("^", len(lines[l])) + " <--- error near this line"
			ctx = append(ctx, helper)
		}
	}
	return ctx
}
