package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	wetwire "github.com/lex00/wetwire-workspace-go"
	"github.com/lex00/wetwire-workspace-go/infra"
	"github.com/lex00/wetwire-workspace-go/internal/config"
	"github.com/lex00/wetwire-workspace-go/internal/template"
)

// configPath returns the --config value at run time.
type configPath func() string

// synthesize loads the configuration and builds the workspace template.
func synthesize(path string) (*config.Config, *wetwire.Template, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	ws, err := infra.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	tmpl, err := ws.Stack.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building template: %w", err)
	}
	log.Debug().Str("stack", cfg.StackName).Int("resources", len(tmpl.Resources)).Msg("synthesized workspace")
	return cfg, tmpl, nil
}

// encodeTemplate renders t as json or yaml.
func encodeTemplate(t *wetwire.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(t)
	case "yaml":
		return template.ToYAML(t)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// writeOutput writes data to outputFile, or to w when outputFile is empty.
func writeOutput(w io.Writer, data []byte, outputFile string) error {
	if outputFile == "" {
		_, err := fmt.Fprintln(w, string(data))
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}
