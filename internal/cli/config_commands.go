// Package cli provides configuration management commands.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ASL66/mirad-upload/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mirad configuration",
		Long: `Configuration management commands for mirad.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test the server connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for mirad.

The configuration is saved to ~/.config/mirad/config.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.DefaultPath()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				configPath = cfgFile
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", configPath)
					fmt.Println("Use --force to overwrite or run 'config show' to view it.")
					return nil
				}
			}

			fmt.Println("mirad configuration setup")
			reader := bufio.NewReader(os.Stdin)

			fmt.Print("Server URL (e.g. http://localhost:8080): ")
			url, err := reader.ReadString('\n')
			if err != nil {
				return err
			}

			cfg := config.DefaultConfig()
			cfg.ServerURL = strings.TrimSpace(url)

			fmt.Printf("Proxy mode [system/none] (default %s): ", cfg.ProxyMode)
			proxy, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			if p := strings.TrimSpace(proxy); p != "" {
				cfg.ProxyMode = p
			}

			fmt.Printf("Request timeout seconds (default %d): ", cfg.RequestTimeoutSeconds)
			timeout, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			if t := strings.TrimSpace(timeout); t != "" {
				n, err := strconv.Atoi(t)
				if err != nil {
					return fmt.Errorf("invalid timeout %q: %w", t, err)
				}
				cfg.RequestTimeoutSeconds = n
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Save(configPath); err != nil {
				return err
			}

			fmt.Printf("Configuration saved to: %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Println("Current configuration:")
			fmt.Printf("  Server URL:      %s\n", cfg.ServerURL)
			fmt.Printf("  Proxy mode:      %s\n", cfg.ProxyMode)
			fmt.Printf("  Request timeout: %ds\n", cfg.RequestTimeoutSeconds)
			return nil
		},
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the server connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getAPIClient()
			if err != nil {
				return err
			}

			status, err := client.CheckLogin(cmd.Context())
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}

			fmt.Println("Server reachable.")
			if status.LoggedIn {
				fmt.Printf("Logged in as %s\n", status.Username)
			} else {
				fmt.Println("Not logged in.")
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				fmt.Println(cfgFile)
				return nil
			}
			path, err := config.DefaultPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}
