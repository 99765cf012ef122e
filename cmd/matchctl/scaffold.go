// cmd/matchctl/scaffold.go
package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"freelance-matcher/pkg/registry"
)

// field is one Input or Output struct field derived from a JSON schema property.
type field struct {
	Name string
	Type string
	Tag  string
}

type scaffoldData struct {
	Package       string
	TaskType      string
	DisplayName   string
	Description   string
	TimeoutMillis int64
	Input         []field
	Output        []field
}

var scaffoldTemplates = map[string]string{
	"config.go":  configTemplate,
	"models.go":  modelsTemplate,
	"handler.go": handlerTemplate,
}

// scaffold writes config.go, models.go and handler.go for an activity into
// dir/<task-type>. Existing files are kept unless force is set.
func scaffold(a *registry.Activity, dir string, force bool) ([]string, error) {
	timeout, err := a.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("%s: invalid timeout %q", a.TaskType, a.Timeout)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	data := scaffoldData{
		Package:       packageName(a.TaskType),
		TaskType:      a.TaskType,
		DisplayName:   a.DisplayName,
		Description:   a.Description,
		TimeoutMillis: timeout.Milliseconds(),
		Input:         schemaFields(a.InputSchema),
		Output:        schemaFields(a.OutputSchema),
	}

	target := filepath.Join(dir, a.TaskType)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(scaffoldTemplates))
	for name := range scaffoldTemplates {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		path := filepath.Join(target, name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		src, err := render(name, scaffoldTemplates[name], data)
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func render(name, text string, data scaffoldData) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return src, nil
}

// packageName drops the dashes of a task type: sync-match-embedding -> syncmatchembedding.
func packageName(taskType string) string {
	return strings.ReplaceAll(taskType, "-", "")
}

func schemaFields(schema map[string]interface{}) []field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	for _, name := range registry.RequiredProperties(schema) {
		required[name] = true
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field, 0, len(names))
	for _, name := range names {
		prop, _ := props[name].(map[string]interface{})
		tag := name
		if !required[name] {
			tag += ",omitempty"
		}
		fields = append(fields, field{
			Name: exportedName(name),
			Type: goType(prop),
			Tag:  fmt.Sprintf("`json:%q`", tag),
		})
	}
	return fields
}

func goType(prop map[string]interface{}) string {
	switch prop["type"] {
	case "string":
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		if items, ok := prop["items"].(map[string]interface{}); ok {
			if t := goType(items); t != "interface{}" {
				return "[]" + t
			}
		}
		return "[]interface{}"
	case "object":
		return "map[string]interface{}"
	}
	return "interface{}"
}

// exportedName turns projectId into ProjectID.
func exportedName(prop string) string {
	if prop == "" {
		return prop
	}
	name := strings.ToUpper(prop[:1]) + prop[1:]
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	return name
}

const configTemplate = `// internal/workers/matching/{{ .TaskType }}/config.go
package {{ .Package }}

import (
	"fmt"
	"time"

	"freelance-matcher/internal/common/config"
)

type Config struct {
	Enabled       bool          ` + "`mapstructure:\"enabled\"`" + `
	MaxJobsActive int           ` + "`mapstructure:\"max_jobs_active\"`" + `
	Timeout       time.Duration ` + "`mapstructure:\"timeout\"`" + `
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       {{ .TimeoutMillis }} * time.Millisecond,
	}
}

// ConfigFrom reads the workers.{{ .TaskType }} section.
func ConfigFrom(app *config.Config) *Config {
	if app == nil {
		return DefaultConfig()
	}
	wc := config.GetWorkerConfig(app, TaskType)
	return &Config{
		Enabled:       wc.Enabled,
		MaxJobsActive: wc.MaxJobsActive,
		Timeout:       config.GetDuration(wc.Timeout),
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
`

const modelsTemplate = `// internal/workers/matching/{{ .TaskType }}/models.go
package {{ .Package }}

type Input struct {
{{- range .Input }}
	{{ .Name }} {{ .Type }} {{ .Tag }}
{{- end }}
}

type Output struct {
{{- range .Output }}
	{{ .Name }} {{ .Type }} {{ .Tag }}
{{- end }}
}
`

const handlerTemplate = `// internal/workers/matching/{{ .TaskType }}/handler.go
package {{ .Package }}

import (
	"context"
	"fmt"

	"freelance-matcher/internal/common/config"
	"freelance-matcher/internal/common/logger"
	"freelance-matcher/internal/workers/matching/jobs"
	"freelance-matcher/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "{{ .TaskType }}"

{{ if .Description }}// Handler runs {{ .DisplayName }}: {{ .Description }}
{{ end -}}
type Handler struct {
	config *Config
	runner *jobs.Runner
	logger logger.Logger
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Registry     *registry.ActivityRegistry
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := opts.CustomConfig
	if workerConfig == nil {
		workerConfig = ConfigFrom(opts.AppConfig)
	}
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}

	runner, err := jobs.NewRunner(TaskType, opts.Registry, workerConfig.Timeout, loggerInstance)
	if err != nil {
		return nil, err
	}

	return &Handler{config: workerConfig, runner: runner, logger: runner.Logger()}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	return jobs.Run(h.runner, client, job, h.Execute)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return nil, fmt.Errorf("%s: not implemented", TaskType)
}
`
