package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"

	"github.com/lhaig/climeta/cmd/climeta/commands"
	"github.com/lhaig/climeta/internal/logger"
)

func main() {
	err := commands.NewRootCmd().ExecuteContext(context.Background())
	logger.Sync()
	if err == nil {
		return
	}

	var exit *commands.ExitError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "Error: ")
	fmt.Fprintln(os.Stderr, err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "  hint: %s\n", hint)
	}
	os.Exit(1)
}
