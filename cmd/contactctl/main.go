// Command contactctl is the operator tool of the FNA Concept site: it checks
// phone numbers, sends test submissions and lists archived inquiries.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fnaconcept/site/internal"
)

// errFailed makes the command exit with status 1 after it has already
// printed why.
var errFailed = errors.New("failed")

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "contactctl",
		Short: "Operate the FNA Concept contact form",
		Long: `contactctl runs the contact form logic of the FNA Concept site from the
command line: French phone validation, test submissions to a form endpoint
and the inquiry archive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	logger := func() *slog.Logger {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return internal.NewLogger(errOut, "development", level)
	}

	rootCmd.AddCommand(
		validatePhoneCmd(),
		submitCmd(logger),
		inquiriesCmd(logger),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}
