package app

import (
	"errors"
	"fmt"
)

// Commands the app can dispatch.
const (
	CommandRun      = "run"
	CommandValidate = "validate"
	CommandParse    = "parse"
	CommandAtoms    = "atoms"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string

	PipelinePath string // .dsl file or a directory of .dsl files
	Source       string // inline DSL, mutually exclusive with PipelinePath
	PipelineName string // selects one pipeline of a multi-pipeline source

	InputPath string            // JSON file seeding the initial value
	Vars      map[string]string // variable overrides as DSL literals
	Domain    string

	LogFormat string
	LogLevel  string
	Output    string // json or yaml
}

func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandRun, CommandValidate, CommandParse:
		if cfg.PipelinePath == "" && cfg.Source == "" {
			return nil, fmt.Errorf("command %q needs a pipeline path or inline source", cfg.Command)
		}
		if cfg.PipelinePath != "" && cfg.Source != "" {
			return nil, errors.New("pipeline path and inline source are mutually exclusive")
		}
	case CommandAtoms:
		// No pipeline input needed.
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.Output == "" {
		cfg.Output = "json"
	}
	if cfg.Output != "json" && cfg.Output != "yaml" {
		return nil, fmt.Errorf("unknown output format %q", cfg.Output)
	}

	return &cfg, nil
}
