package main

import (
	"fmt"
	"os"

	"github.com/fentz26/resortops/internal/config"
	"github.com/fentz26/resortops/internal/controlplane"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resortops",
	Short: "resortops - resort operations task board",
	Long: `resortops keeps one board for the work a resort runs on each shift:
housekeeping, meal service, shuttles, celebrations and staff help requests.`,
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configPath string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", "http://127.0.0.1:7466", "API server address")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(attentionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client and daemon versions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("resortops %s\n", controlplane.Version)
		health, err := CheckHealth()
		if health != nil && health.Version != "" {
			fmt.Printf("daemon    %s\n", health.Version)
		} else if err != nil {
			fmt.Println("daemon    not reachable")
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
