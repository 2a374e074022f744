package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fnaconcept/site/internal/contact"
	"github.com/fnaconcept/site/internal/domain"
	"github.com/fnaconcept/site/internal/submission"
)

func submitCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
	)
	values := make(map[string]*string, len(domain.Fields))

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send a contact form submission",
		Long: `Fill in the contact form from flags and submit it exactly as the site does:
the form is validated first, then posted to the form endpoint.`,
		Example: `  contactctl submit --endpoint https://fnaconcept.fr \
    --nom Dupont --prenom Jean --email jean@example.com \
    --telephone "06 12 34 56 78" --service devis \
    --message "Rénovation d'une salle de bain"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			client, err := submission.New(submission.Config{Endpoint: endpoint, Timeout: timeout}, log)
			if err != nil {
				return err
			}

			form := contact.NewContactForm()
			for _, name := range domain.Fields {
				form.SetValue(name, *values[name])
			}

			ctrl := contact.NewController(form, client, log)
			ctrl.OnSubmit(cmd.Context())

			out := cmd.OutOrStdout()
			state := ctrl.State()
			switch {
			case state.SubmitSuccess:
				fmt.Fprintf(out, "Envoyé à %s\n", client.URL())
				return nil
			case state.SubmitError:
				fmt.Fprintln(out, state.ErrorMessage)
				return errFailed
			default:
				for _, name := range domain.Fields {
					if msg := ctrl.FieldError(name); msg != "" {
						fmt.Fprintf(out, "%s: %s\n", name, msg)
					}
				}
				return errFailed
			}
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "http://localhost:8080", "Form-processing endpoint base URL")
	cmd.Flags().DurationVar(&timeout, "timeout", submission.DefaultTimeout, "Submission timeout")
	for _, name := range domain.Fields {
		values[name] = cmd.Flags().String(name, "", "Value of the "+name+" field")
	}

	return cmd
}
