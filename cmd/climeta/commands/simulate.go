package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/lhaig/climeta/internal/argspec"
	"github.com/lhaig/climeta/internal/compiler"
	"github.com/lhaig/climeta/internal/simulate"
	"github.com/lhaig/climeta/internal/specfile"
	"github.com/lhaig/climeta/internal/testgen"
)

// checkedSpec loads path and returns its normalized specification, printing
// the diagnostics when the document is rejected.
func checkedSpec(cmd *cobra.Command, path string) (*argspec.Spec, error) {
	doc, err := specfile.Load(path)
	if err != nil {
		return nil, err
	}
	res := compiler.Check(doc)
	if res.Spec == nil {
		printDiagnostics(cmd.ErrOrStderr(), path, res.Diagnostics)
		return nil, errors.Newf("%d error(s) in %s", res.Diagnostics.ErrorCount(), path)
	}
	return res.Spec, nil
}

func newSimulateCmd() *cobra.Command {
	var line string
	cmd := &cobra.Command{
		Use:   "simulate <spec> [args...]",
		Short: "Show what a generated parser does with a command line",
		Long: `Show what a generated parser does with a command line.

Everything after <spec> is the simulated command line, including options
and "--". Alternatively pass the whole line as one string with --line,
which is split with shell quoting rules.

On success the parsed values are printed one per line, in declaration
order. Help output and errors are printed the way the generated program
prints them, and the exit status is the one it would exit with.

Examples:
  climeta simulate args.toml input.txt --output out.txt -v
  climeta simulate --line 'input.txt --output "my file"' args.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			argv := args[1:]
			if cmd.Flags().Changed("line") {
				if len(argv) > 0 {
					return errors.New("pass the command line either with --line or as arguments, not both")
				}
				var err error
				if argv, err = shellquote.Split(line); err != nil {
					return errors.Wrap(err, "splitting --line")
				}
			}

			spec, err := checkedSpec(cmd, args[0])
			if err != nil {
				return err
			}
			out := simulate.Run(spec, argv)
			fmt.Fprint(cmd.OutOrStdout(), out.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), out.Stderr)
			if out.Failed() {
				return &ExitError{Code: out.Exit}
			}
			if !out.Help {
				printValues(cmd.OutOrStdout(), spec, out)
			}
			return nil
		},
	}
	// Flags after <spec> belong to the simulated command line.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&line, "line", "", "simulated command line as a single shell-quoted string")
	return cmd
}

func printValues(w io.Writer, spec *argspec.Spec, out *simulate.Outcome) {
	for _, d := range spec.Args {
		values := out.Values[d.Dest]
		words := make([]string, len(values))
		for i, v := range values {
			words[i] = v.String()
		}
		fmt.Fprintf(w, "%s = %s\n", d.Dest, shellquote.Join(words...))
	}
	if len(out.Remaining) > 0 {
		fmt.Fprintf(w, "remaining = %s\n", shellquote.Join(out.Remaining...))
	}
}

func newScenariosCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "scenarios <spec>",
		Short: "Write command line test scenarios as YAML",
		Long: `Write command line test scenarios as YAML.

Each scenario is a command line with the exit status, failure kind and
values a generated parser must produce for it. Run the scenarios against
every generated target to check that they agree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := checkedSpec(cmd, args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return testgen.Encode(cmd.OutOrStdout(), spec)
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "failed to create scenario file")
			}
			if err := testgen.Encode(f, spec); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrapf(err, "writing %s", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `scenario file, "-" for stdout`)
	return cmd
}
