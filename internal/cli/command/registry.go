package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Registry returns all CLI commands keyed by "service action".
func Registry() map[string]Command {
	commands := []Command{
		{
			Service:      "judge",
			Action:       "submit",
			Method:       "POST",
			PathTemplate: "/api/v1/judge/submit",
			Fields: []Field{
				{Name: "language", Aliases: []string{"lang"}, Prompt: "language (c|cpp)", Type: FieldString, Required: true},
				{Name: "source_code", Prompt: "source_code", Type: FieldString, Required: true},
				{Name: "source_file", Prompt: "source_file", Type: FieldFile, Required: false},
				{Name: "case_json", Prompt: "case_json (JSON)", Type: FieldJSON, Required: true},
				{Name: "case_file", Prompt: "case_file", Type: FieldFile, Required: false},
				{Name: "compile_timeout", Prompt: "compile_timeout (seconds)", Type: FieldInt, Required: false},
				{Name: "execution_timeout", Prompt: "execution_timeout (seconds)", Type: FieldInt, Required: false},
				{Name: "show_logs", Prompt: "show_logs", Type: FieldBool, Required: false},
			},
		},
		{
			Service:      "judge",
			Action:       "batch",
			Method:       "POST",
			PathTemplate: "/api/v1/judge/batch",
			Fields: []Field{
				{Name: "submissions_json", Prompt: "submissions_json (JSON array)", Type: FieldJSON, Required: true},
				{Name: "submissions_file", Prompt: "submissions_file", Type: FieldFile, Required: false},
			},
		},
		{
			Service:      "judge",
			Action:       "optimized",
			Method:       "POST",
			PathTemplate: "/api/v1/judge/optimized-batch",
			Fields: []Field{
				{Name: "language", Aliases: []string{"lang"}, Prompt: "language (c|cpp)", Type: FieldString, Required: true},
				{Name: "source_code", Prompt: "source_code", Type: FieldString, Required: true},
				{Name: "source_file", Prompt: "source_file", Type: FieldFile, Required: false},
				{Name: "configs_json", Prompt: "configs_json (JSON array)", Type: FieldJSON, Required: true},
				{Name: "configs_file", Prompt: "configs_file", Type: FieldFile, Required: false},
				{Name: "compile_timeout", Prompt: "compile_timeout (seconds)", Type: FieldInt, Required: false},
				{Name: "execution_timeout", Prompt: "execution_timeout (seconds)", Type: FieldInt, Required: false},
			},
		},
		{
			Service:      "judge",
			Action:       "languages",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/languages",
		},
		{
			Service:      "judge",
			Action:       "limits",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/limits",
		},
		{
			Service:      "judge",
			Action:       "health",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/health",
			Fields: []Field{
				{Name: "deep", Prompt: "deep", Type: FieldBool, Required: false},
			},
		},
		{
			Service:      "judge",
			Action:       "example",
			Method:       "GET",
			PathTemplate: "/api/v1/judge/examples/:kind",
			Fields: []Field{
				{Name: "kind", Prompt: "kind (c|cpp|advanced|error)", Type: FieldString, Required: true},
			},
		},
	}

	result := make(map[string]Command, len(commands))
	for _, cmd := range commands {
		key := fmt.Sprintf("%s %s", cmd.Service, cmd.Action)
		result[key] = cmd
	}
	return result
}

// BuildRequest creates HTTP request spec based on command.
func BuildRequest(cmd Command, params Params) (RequestSpec, error) {
	params.Canonicalize(cmd.Fields)
	path, err := buildPath(cmd.PathTemplate, params)
	if err != nil {
		return RequestSpec{}, err
	}
	if cmd.Service == "judge" && cmd.Action == "health" && ParseBool(params.Get("deep")) {
		path += "?deep=true"
	}

	var body []byte
	if cmd.Method != "GET" && cmd.Method != "DELETE" {
		payload, err := buildPayload(cmd, params)
		if err != nil {
			return RequestSpec{}, err
		}
		if payload != nil {
			body, err = json.Marshal(payload)
			if err != nil {
				return RequestSpec{}, fmt.Errorf("marshal request body failed: %w", err)
			}
		}
	}

	return RequestSpec{
		Method: cmd.Method,
		Path:   path,
		Body:   body,
	}, nil
}

func buildPath(template string, params Params) (string, error) {
	path := template
	for _, key := range []string{"kind"} {
		placeholder := ":" + key
		if strings.Contains(path, placeholder) {
			value := params.Get(key)
			if value == "" {
				return "", fmt.Errorf("missing path parameter: %s", key)
			}
			path = strings.ReplaceAll(path, placeholder, value)
		}
	}
	return path, nil
}

func buildPayload(cmd Command, params Params) (interface{}, error) {
	if cmd.Service != "judge" {
		return nil, nil
	}
	switch cmd.Action {
	case "submit":
		return buildSubmitPayload(params)
	case "batch":
		submissions, err := parseJSONOrFile(params, "submissions_json", "submissions_file")
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"submissions": submissions,
		}, nil
	case "optimized":
		return buildOptimizedPayload(params)
	}
	return nil, nil
}

func buildSubmitPayload(params Params) (interface{}, error) {
	source, err := sourceCode(params)
	if err != nil {
		return nil, err
	}
	caseJSON, err := parseJSONOrFile(params, "case_json", "case_file")
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"language":  params.Get("language"),
		"user_code": source,
		"case":      caseJSON,
	}
	limits, err := buildLimits(params)
	if err != nil {
		return nil, err
	}
	if limits != nil {
		payload["resource_limits"] = limits
	}
	if ParseBool(params.Get("show_logs")) {
		payload["show_logs"] = true
	}
	return payload, nil
}

func buildOptimizedPayload(params Params) (interface{}, error) {
	source, err := sourceCode(params)
	if err != nil {
		return nil, err
	}
	configsJSON, err := parseJSONOrFile(params, "configs_json", "configs_file")
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"language":  params.Get("language"),
		"user_code": source,
		"configs":   configsJSON,
	}
	limits, err := buildLimits(params)
	if err != nil {
		return nil, err
	}
	if limits != nil {
		payload["resource_limits"] = limits
	}
	return payload, nil
}

func buildLimits(params Params) (map[string]interface{}, error) {
	limits := map[string]interface{}{}
	for _, key := range []string{"compile_timeout", "execution_timeout"} {
		if params.Get(key) == "" {
			continue
		}
		n, err := ParseInt(params.Get(key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		limits[key] = n
	}
	if len(limits) == 0 {
		return nil, nil
	}
	return limits, nil
}

func sourceCode(params Params) (string, error) {
	source := params.Get("source_code")
	if (source == "" || source == "_file_") && params.Get("source_file") != "" {
		data, err := ReadFile(params.Get("source_file"))
		if err != nil {
			return "", err
		}
		source = data
	}
	if source == "" {
		return "", fmt.Errorf("source_code is required")
	}
	return source, nil
}

func parseJSONOrFile(params Params, key, fileKey string) (json.RawMessage, error) {
	value := params.Get(key)
	if (value == "" || value == "_file_") && params.Get(fileKey) != "" {
		data, err := ReadFile(params.Get(fileKey))
		if err != nil {
			return nil, err
		}
		value = data
	}
	if value == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	return ParseJSON(value)
}
