package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"smart-task-manager/internal/logging"
)

func newClassifyCmd(configPath *string) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a task once and print the suggestion as JSON",
		Long: `classify sends one title and description through the configured
classification backend and prints the result. An empty object means the
backend was disabled, unreachable or returned nothing usable; the logs say which.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(title) == "" {
				return errors.New("--title is required")
			}
			_, cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			c := openCache(ctx, cfg.Cache, logging.Component("cache"))
			defer func() { _ = closeCache(c) }()

			result := newClassifier(ctx, cfg, c).Classify(ctx, title, description)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}
