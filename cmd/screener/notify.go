package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/screener/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Shares the sample analysis through the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stdout)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	n := setupNotifier(cfg, newHTTPClient(), logger)
	if err := notifier.SendTestMessage(context.Background(), n); err != nil {
		logger.Error("test notification failed", "error", err)
		return err
	}
	logger.Info("test notification sent successfully")
	return nil
}
