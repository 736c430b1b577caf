package main

import (
	"context"
	"fmt"
	"os"

	"github.com/EdvardGK/reduzer-summary/internal/cli"
	"github.com/EdvardGK/reduzer-summary/internal/common"
)

var version = "dev"

func main() {
	handler := cli.NewInterruptHandler(os.Stderr)
	ctx := handler.HandleInterrupts(context.Background(), "Unsaved edits are discarded; saved projects are unaffected.")

	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		if common.IsUserError(err) {
			fmt.Fprintln(os.Stderr, cli.SubtleStyle.Render("Run 'reduzer help' for usage."))
		}
		os.Exit(1)
	}
}
