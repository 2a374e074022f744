package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fnaconcept/site/internal"
	"github.com/fnaconcept/site/internal/storage"
)

func inquiriesCmd(logger func() *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inquiries",
		Short: "Browse archived inquiries",
	}
	cmd.AddCommand(inquiriesListCmd(logger), inquiriesPurgeCmd(logger))
	return cmd
}

// openArchive opens the inquiry archive configured in the environment, like
// the server does (STORAGE_PROVIDER, LOCAL_STORAGE_PATH, R2_*).
func openArchive(logger *slog.Logger) (*storage.Archive, error) {
	cfg, err := internal.NewConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.New(cfg.StorageProvider,
		storage.LocalConfig{BasePath: cfg.LocalStoragePath},
		storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			Endpoint:        cfg.R2Endpoint,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}
	return storage.NewArchive(store), nil
}

func inquiriesListCmd(logger func() *slog.Logger) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the inquiries received on a day",
		Long: `List the inquiries archived on a day (UTC). Storage settings are read from
the environment, like the server does (STORAGE_PROVIDER, LOCAL_STORAGE_PATH,
R2_*).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now().UTC()
			if date != "" {
				var err error
				day, err = time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", date)
				}
			}

			archive, err := openArchive(logger())
			if err != nil {
				return err
			}
			return listInquiries(cmd, archive, day)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to list, YYYY-MM-DD (default today)")
	return cmd
}

func listInquiries(cmd *cobra.Command, archive *storage.Archive, day time.Time) error {
	ctx := cmd.Context()
	keys, err := archive.ListDay(ctx, day)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tID\tNAME\tEMAIL\tSERVICE")
	for _, key := range keys {
		inq, err := archive.Load(ctx, key)
		if err != nil {
			return fmt.Errorf("load %s: %w", key, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			inq.ReceivedAt.Format("15:04:05"),
			inq.ID,
			inq.FullName(),
			inq.Data.Email,
			inq.ServiceLabel(),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d inquiries on %s\n", len(keys), day.Format(time.DateOnly))
	return nil
}

func inquiriesPurgeCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		before string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete the inquiries received before a day",
		Long: `Delete the archived inquiries received before a day (UTC), for data
retention. The day itself is kept. Use --dry-run to see what would go.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse(time.DateOnly, before)
			if err != nil {
				return fmt.Errorf("invalid --before %q, want YYYY-MM-DD", before)
			}

			archive, err := openArchive(logger())
			if err != nil {
				return err
			}

			keys, err := archive.Purge(cmd.Context(), day, dryRun)
			for _, key := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			if err != nil {
				return fmt.Errorf("purge stopped after %d inquiries: %w", len(keys), err)
			}

			verb := "deleted"
			if dryRun {
				verb = "would be deleted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d inquiries %s before %s\n", len(keys), verb, day.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "First day to keep, YYYY-MM-DD")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the inquiries without deleting them")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}
