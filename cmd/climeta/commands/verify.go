package commands

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/lhaig/climeta/internal/backend"
	"github.com/lhaig/climeta/internal/compiler"
	"github.com/lhaig/climeta/internal/specfile"
	"github.com/lhaig/climeta/internal/verify"
)

func newVerifyCmd(a *app) *cobra.Command {
	var showDiff bool
	cmd := &cobra.Command{
		Use:   "verify <spec>",
		Short: "Check that generated files match their specification",
		Long: `Check that generated files match their specification.

The files named by --lang and --output are regenerated in memory and
compared with the files on disk. The command exits with status 1 when any
file is stale or missing.

Examples:
  climeta verify -l all -o gen/cli args.toml
  climeta verify -l python -o cli.py --diff args.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			base := compiler.OutputBase(a.cfg.Output)
			if base == "" {
				return errors.WithHint(errors.New("verify needs the generated file names"),
					"set --output to the base name used with generate")
			}
			doc, err := specfile.Load(path)
			if err != nil {
				return err
			}
			results, err := compiler.CompileAll(cmd.Context(), doc, a.cfg.Lang, base)
			if err != nil {
				return err
			}
			if diag := compiler.MergeDiagnostics(results); diag.HasErrors() {
				printDiagnostics(cmd.ErrOrStderr(), path, diag)
				return errors.Newf("%d error(s) in %s", diag.ErrorCount(), path)
			}

			report := &verify.Report{}
			for _, res := range results {
				vr, err := verify.Verify(res.Target, res.Artifacts, base)
				if err != nil {
					return err
				}
				report.Add(vr...)
			}
			fmt.Fprint(cmd.OutOrStdout(), report.Format(showDiff))
			if !report.AllUpToDate() {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().StringP("lang", "l", "", "target: "+targetList()+" (default python)")
	cmd.Flags().StringP("output", "o", "", "output base name used with generate")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "show a unified diff for stale files")
	return cmd
}

func newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the target languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, be := range backend.All() {
				caps := be.Capabilities()
				repeated := "yes"
				if !caps.Multiple {
					repeated = "no"
				}
				fmt.Fprintf(out, "%-12s %-10s repeated options: %s\n", be.Name(), strings.Join(caps.Extensions, " "), repeated)
			}
			return nil
		},
	}
}

func targetList() string {
	return strings.Join(append(compiler.TargetNames(), compiler.AllTargets), ", ")
}
