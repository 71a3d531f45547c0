package main

import (
	"fmt"

	notificationapp "github.com/exportdesk/backend/internal/application/notification"
	"github.com/spf13/cobra"
)

var templatesFile string

// dbSetupCmd brings the schema up to date
var dbSetupCmd = &cobra.Command{
	Use:   "db-setup",
	Short: "Create missing tables, columns and indexes",
	Long:  `Apply the idempotent schema steps. Running it twice is safe: the second run skips every step.`,
	RunE:  runDBSetup,
}

// templatesCmd groups email template commands
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage email templates",
}

// templatesSeedCmd inserts the seed templates that are missing
var templatesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert missing email templates from the seed file",
	Long:  `Existing templates are left untouched, so edits made through the API survive.`,
	RunE:  runTemplatesSeed,
}

func init() {
	templatesSeedCmd.Flags().StringVarP(&templatesFile, "file", "f", "", "Seed file (default: smtp.templates_file from config)")
	templatesCmd.AddCommand(templatesSeedCmd)
}

func runDBSetup(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return withApp(ctx, func(a *app) error {
		report := a.setup.Run(ctx)
		if err := writeSteps(cmd.OutOrStdout(), report.Steps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d applied, %d skipped, %d failed\n", report.Applied, report.Skipped, report.Failed)
		if !report.OK() {
			return fmt.Errorf("%d schema steps failed", report.Failed)
		}
		return nil
	})
}

func runTemplatesSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return withApp(ctx, func(a *app) error {
		path := templatesFile
		if path == "" {
			path = a.cfg.SMTP.TemplatesFile
		}
		seeds, err := notificationapp.LoadTemplateSeedFile(path)
		if err != nil {
			return err
		}
		inserted, err := a.notifications.SeedTemplates(ctx, seeds)
		if err != nil {
			return err
		}
		if len(inserted) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All templates already exist.")
			return nil
		}
		rows := make([][]any, 0, len(inserted))
		for _, key := range inserted {
			rows = append(rows, []any{key})
		}
		return renderTable(cmd.OutOrStdout(), []any{"Inserted"}, rows)
	})
}
