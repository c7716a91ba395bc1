package cmd

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zjrosen/tabdock/internal/config"
	"github.com/zjrosen/tabdock/internal/flags"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration file",
	Long:  "Write the default configuration file to path, or to ~/.config/tabdock/config.yaml when no path is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Change saved settings",
}

var setFlagCmd = &cobra.Command{
	Use:   "set-flag <name> <true|false>",
	Short: "Turn a feature flag on or off",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		known := flags.New(nil).Names()
		if !slices.Contains(known, name) {
			return fmt.Errorf("unknown flag %q (known: %v)", name, known)
		}
		enabled, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		path := configPath()
		if err := config.SaveFlag(path, name, enabled); err != nil {
			return err
		}
		cmd.Printf("Set %s=%t in %s\n", name, enabled, path)
		return nil
	},
}

var setWindowsCmd = &cobra.Command{
	Use:   "set-windows <count>",
	Short: "Set how many windows open at startup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid window count %q: %w", args[0], err)
		}
		path := configPath()
		if err := config.SaveWindows(path, n); err != nil {
			return err
		}
		cmd.Printf("Set windows=%d in %s\n", n, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(setFlagCmd)
	configCmd.AddCommand(setWindowsCmd)
}
