// Command ultralight runs a small blog built on the framework: articles with
// revisions and covers, RSS and Atom feeds, an iCalendar of events and a
// color playground. It also ships the maintenance commands around it.
//
//	ultralight serve --migrate
//	ultralight migrate status
//	ultralight check
//	ultralight routes
//	ultralight diff --mode lines old.txt new.txt
//	ultralight color --shades 5 teal
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ultralight",
		Short:         "UltraLight blog server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCheckCmd(),
		newRoutesCmd(),
		newDiffCmd(),
		newColorCmd(),
	)
	return root
}
