package commands

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lhaig/climeta/internal/compiler"
	"github.com/lhaig/climeta/internal/diagnostic"
	"github.com/lhaig/climeta/internal/formatter"
	"github.com/lhaig/climeta/internal/linter"
	"github.com/lhaig/climeta/internal/specfile"
)

func newCheckCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "check <spec>",
		Short: "Check a specification without generating code",
		Long: `Check a specification without generating code.

Without --lang only the rules shared by every target are applied. With
--lang the target's own limits are checked as well, e.g. reserved names
and repeated options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := specfile.Load(path)
			if err != nil {
				return err
			}

			var diag *diagnostic.Diagnostics
			if lang == "" {
				diag = compiler.Check(doc).Diagnostics
			} else if diag, err = compiler.CheckTarget(doc, lang); err != nil {
				return err
			}

			if diag.HasErrors() {
				printDiagnostics(cmd.ErrOrStderr(), path, diag)
				return errors.Newf("%d error(s) in %s", diag.ErrorCount(), path)
			}
			printDiagnostics(cmd.OutOrStdout(), path, diag)
			okColor.Fprintln(cmd.OutOrStdout(), "No errors found.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "also check the limits of a target ("+targetList()+")")
	return cmd
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <spec>",
		Short: "Report style problems in a specification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := specfile.Load(path)
			if err != nil {
				return err
			}

			diag := linter.Lint(doc)
			out := cmd.OutOrStdout()
			if diag.Count() == 0 {
				okColor.Fprintln(out, "No lint warnings.")
				return nil
			}
			printDiagnostics(out, path, diag)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%d warning(s) found.\n", diag.Count())
			return nil
		},
	}
}

func newFmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <spec>",
		Short: "Print a specification in canonical TOML",
		Long: `Print a specification in canonical TOML.

Keys appear in a fixed order, values that repeat a default are dropped and
choices are written as one comma separated string. Unknown keys are
removed. With --write a TOML file is rewritten in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := specfile.Load(path)
			if err != nil {
				return err
			}
			out, err := formatter.Format(doc)
			if err != nil {
				return err
			}
			if !write {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}

			if format, _ := specfile.FormatOf(path); format != specfile.TOML {
				return errors.WithHint(errors.Newf("cannot rewrite %s in place", path),
					"run without --write and redirect the output to a .toml file")
			}
			current, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			if string(current) == string(out) {
				return nil
			}
			if err := os.WriteFile(path, out, 0644); err != nil {
				return errors.Wrapf(err, "writing %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Formatted %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file instead of printing it")
	return cmd
}
