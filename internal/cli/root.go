// Package cli implements the folio command-line interface.
package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/HartBrook/folio/internal/errors"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Output helpers.
	successIcon = color.New(color.FgGreen).Sprint("✓")
	warningIcon = color.New(color.FgYellow).Sprint("⚠")
	errorIcon   = color.New(color.FgRed).Sprint("✗")

	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	info    = color.New(color.FgCyan).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath   string
	logLevel     string
	cacheBackend string
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "folio",
		Short: "GitHub activity for your portfolio",
		Long: `Folio gathers a GitHub account's repositories, organizations, and recent
contribution activity into one snapshot for a portfolio page.

Results are cached locally for an hour. Without a GitHub token the activity
calendar is generated so the page still renders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/folio/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&g.cacheBackend, "cache", "", "Cache backend: sqlite, file, memory")

	rootCmd.AddCommand(NewActivityCmd(g))
	rootCmd.AddCommand(NewCacheCmd(g))
	rootCmd.AddCommand(NewServeCmd(g))
	rootCmd.AddCommand(NewInitCmd(g))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "folio %s\n", Version)
		},
	}
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorIcon, err.Error())

		// Print hint if available
		var fe *errors.FolioError
		if stderrors.As(err, &fe) && fe.Hint != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", dim(fe.Hint))
		}
		return err
	}
	return nil
}

// printSuccess prints a success message.
func printSuccess(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", successIcon, fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", warningIcon, fmt.Sprintf(format, args...))
}

// printInfo prints an info line.
func printInfo(label, value string) {
	fmt.Printf("  %s: %s\n", dim(label), value)
}
