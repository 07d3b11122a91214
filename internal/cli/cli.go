package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/depends/internal/app"
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

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Flags given explicitly override the values of the configuration file.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("depends", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Depends - plans the commands needed to bring a node of a workflow up to date.

Usage:
  depends [options] [WORKFLOW]

Arguments:
  WORKFLOW
    Path to a saved workflow file.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a YAML configuration file.")
	workflowFlag := flagSet.String("workflow", "", "Path to the saved workflow file.")
	nodeFlag := flagSet.String("node", "", "Name of the node to plan. Defaults to every node nothing depends on.")
	destFlag := flagSet.String("dest", "", "Where the recipe writes its output.")
	runFlag := flagSet.Bool("run", false, "Ask the recipe to run the generated plan.")
	recipeFlag := flagSet.String("recipe", "print", "Recipe turning the plan into output. Options: 'print' or 'bash'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := app.DefaultConfig()
	if *configFlag != "" {
		loaded, err := app.LoadConfig(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["recipe"] {
		cfg.Recipe = *recipeFlag
	}
	if set["dest"] {
		cfg.Destination = *destFlag
	}
	if set["log-format"] {
		cfg.Log.Format = strings.ToLower(*logFormatFlag)
	}
	if set["log-level"] {
		cfg.Log.Level = strings.ToLower(*logLevelFlag)
	}
	cfg.Target = *nodeFlag
	cfg.RunNow = *runFlag

	cfg.WorkflowPath = *workflowFlag
	if cfg.WorkflowPath == "" && flagSet.NArg() > 0 {
		cfg.WorkflowPath = flagSet.Arg(0)
	}
	slog.Debug("Workflow path determined.", "path", cfg.WorkflowPath)

	if cfg.WorkflowPath == "" {
		slog.Debug("No workflow path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "workflow", cfg.WorkflowPath, "recipe", cfg.Recipe)
	return cfg, false, nil
}
