package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnaconcept/site/internal/contact"
)

func validatePhoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-phone <number>...",
		Short: "Check French phone numbers",
		Long: `Check each argument with the contact form's French phone rule and print
"valid" or "invalid" for it. Exits with status 1 if any number is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := false
			for _, number := range args {
				if perr := contact.FrenchPhone(number); perr != nil {
					failed = true
					fmt.Fprintf(out, "invalid\t%q\t%s\n", number, perr.Message)
					continue
				}
				fmt.Fprintf(out, "valid\t%q\n", number)
			}
			if failed {
				return errFailed
			}
			return nil
		},
	}
}
