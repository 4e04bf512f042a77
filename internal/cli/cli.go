package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/analytica/atomflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varFlags collects repeated -var name=literal flags.
type varFlags map[string]string

func (v varFlags) String() string {
	parts := make([]string, 0, len(v))
	for name, lit := range v {
		parts = append(parts, name+"="+lit)
	}
	return strings.Join(parts, ",")
}

func (v varFlags) Set(raw string) error {
	name, lit, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=literal, got %q", raw)
	}
	v[name] = lit
	return nil
}

// Parse processes command-line arguments. It returns a populated app
// config, a boolean indicating if the program should exit cleanly, or an
// ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("atomflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
atomflow - analytics pipeline DSL engine.

Usage:
  atomflow <command> [options] [PIPELINE_PATH]

Commands:
  run        Execute a pipeline and print the result.
  validate   Check pipeline sources without executing them.
  parse      Print the serialized AST of the loaded pipelines.
  atoms      List the registered atoms, grouped by type.

Arguments:
  PIPELINE_PATH
    Path to a single .dsl file or a directory containing .dsl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	vars := make(varFlags)
	pipelineFlag := flagSet.String("p", "", "Path to the pipeline file or directory.")
	sourceFlag := flagSet.String("e", "", "Inline DSL source instead of a path.")
	nameFlag := flagSet.String("name", "", "Pipeline to run when the source defines several.")
	inputFlag := flagSet.String("input", "", "JSON file seeding the pipeline's input value.")
	flagSet.Var(vars, "var", "Variable override as name=literal; repeatable.")
	domainFlag := flagSet.String("domain", "", "Tenant domain tag passed to the run.")
	outputFlag := flagSet.String("output", "json", "Result format. Options: 'json' or 'yaml'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	command := args[0]
	if command == "-h" || command == "--help" || command == "help" {
		flagSet.Usage()
		return nil, true, nil
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := *pipelineFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Command:      command,
		PipelinePath: path,
		Source:       *sourceFlag,
		PipelineName: *nameFlag,
		InputPath:    *inputFlag,
		Vars:         vars,
		Domain:       *domainFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Output:       strings.ToLower(*outputFlag),
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
