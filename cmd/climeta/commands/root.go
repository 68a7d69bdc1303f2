// Package commands implements the climeta command tree.
package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lhaig/climeta/internal/config"
	"github.com/lhaig/climeta/internal/logger"
)

// ExitError ends the process with Code after the command already reported
// the failure itself.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"lang":      "lang",
	"output":    "output",
	"log.level": "log-level",
	"log.json":  "log-json",
}

type app struct {
	configFile string
	cfg        *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "climeta",
		Short: "climeta - command line parser generator",
		Long: `climeta - generate command line argument parsers from a declarative specification.

A specification (TOML, YAML or JSON) lists the program and its arguments.
climeta checks it and emits parser source for Python argparse, bash,
C (cofyc/argparse), C++ (cxxopts) or JavaScript (command-line-args).

Examples:
  climeta generate args.toml                      # Python parser on stdout
  climeta generate -l c-argparse -o build/cli args.toml
  climeta generate -l all -o gen/cli args.toml    # every target
  climeta check args.toml
  climeta simulate args.toml input.txt --verbose`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: climeta.toml found upward from the working directory)")
	pf.String("log-level", "", "log level: debug, info, warn or error (default warn)")
	pf.Bool("log-json", false, "write logs as JSON")

	root.AddCommand(
		newGenerateCmd(a),
		newCheckCmd(),
		newLintCmd(),
		newFmtCmd(),
		newSimulateCmd(),
		newScenariosCmd(),
		newVerifyCmd(a),
		newTargetsCmd(),
	)
	return root
}

// setup resolves the configuration for the command about to run and
// initializes the logger from it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(config.Options{File: a.configFile})
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.Logger.Debugw("configuration", "lang", cfg.Lang, "output", cfg.Output, "config", v.ConfigFileUsed())
	a.cfg = cfg
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for key, name := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding --%s", name)
		}
	}
	return nil
}
