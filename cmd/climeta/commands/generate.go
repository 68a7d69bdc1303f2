package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lhaig/climeta/internal/compiler"
	"github.com/lhaig/climeta/internal/logger"
	"github.com/lhaig/climeta/internal/specfile"
	"github.com/lhaig/climeta/internal/watch"
)

func newGenerateCmd(a *app) *cobra.Command {
	var watchMode bool
	cmd := &cobra.Command{
		Use:   "generate <spec>",
		Short: "Generate parser source for a target language",
		Long: `Generate parser source for a target language.

The --output value names the generated files: its extension is dropped and
each target adds its own (.py, .sh, .c and .h, .cpp and .hpp, .mjs).
Without --output, or with "-", the source is written to stdout.

Examples:
  climeta generate args.toml
  climeta generate -l bash -o bin/tool.sh args.toml
  climeta generate -l all -o gen/cli --watch args.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watchMode {
				return a.watch(cmd, args[0])
			}
			return a.generate(cmd, args[0])
		},
	}
	cmd.Flags().StringP("lang", "l", "", "target: "+targetList()+" (default python)")
	cmd.Flags().StringP("output", "o", "", `output base name, "-" for stdout (default "-")`)
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "regenerate whenever the specification file changes")
	return cmd
}

func (a *app) generate(cmd *cobra.Command, path string) error {
	doc, err := specfile.Load(path)
	if err != nil {
		return err
	}
	base := compiler.OutputBase(a.cfg.Output)
	results, err := compiler.CompileAll(cmd.Context(), doc, a.cfg.Lang, base)
	if err != nil {
		return err
	}
	printDiagnostics(cmd.ErrOrStderr(), path, compiler.MergeDiagnostics(results))

	paths, err := compiler.EmitResults(results, base, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
	}
	return nil
}

// watch generates once, then again after every change until interrupted.
// Failed runs are reported and do not end the loop.
func (a *app) watch(cmd *cobra.Command, path string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := func() error { return a.generate(cmd, path) }
	if err := regenerate(); err != nil {
		logger.Logger.Errorw("generation failed", "file", path, "error", err)
	}

	w := watch.New(path, regenerate)
	w.Debounce = a.cfg.Watch.Debounce()
	okColor.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl-C to stop)\n", path)
	return w.Run(ctx)
}
