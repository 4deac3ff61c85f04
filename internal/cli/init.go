package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/HartBrook/folio/internal/config"
	"github.com/HartBrook/folio/internal/github"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the init command.
func NewInitCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init [account]",
		Short: "Create a folio configuration",
		Long: `Writes a config file with the default account and reports which GitHub
credential folio will use.

Without a credential folio still works, but the contribution calendar is
generated instead of fetched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(g, args)
		},
	}
}

func runInit(g *globalOptions, args []string) error {
	paths := config.NewPaths()
	path := paths.ConfigFile
	if g.configPath != "" {
		path = g.configPath
	}

	// Check if already configured
	if _, err := os.Stat(path); err == nil {
		fmt.Println("Folio is already configured.")
		fmt.Printf("Config file: %s\n\n", path)

		if !promptYesNo("Do you want to reconfigure?") {
			return nil
		}
		fmt.Println()
	}

	account := ""
	if len(args) > 0 {
		account = args[0]
	} else {
		account = promptString("GitHub account to show (e.g., octocat):")
	}
	account = strings.TrimPrefix(strings.TrimSpace(account), "@")
	if account == "" {
		return fmt.Errorf("account is required")
	}

	cfg := config.NewSimpleConfig(account)
	if orgs := promptString("Organizations whose repositories are all yours (comma-separated, optional):"); orgs != "" {
		cfg.TrustedOrgs = splitList(orgs)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	printSuccess("Config saved to %s", path)

	authMethod := github.AuthMethod(cfg.GitHub.Token)
	fmt.Println()
	if authMethod == "none" {
		printWarning("No GitHub credential found")
		fmt.Println("The contribution calendar will be generated until one is available:")
		fmt.Printf("  %s\n", info("gh auth login"))
		fmt.Printf("  or export %s=<token>\n", github.EnvGitHubToken)
	} else {
		fmt.Printf("Using authentication: %s\n", info(authMethod))
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  %s - show the snapshot\n", info("folio activity"))
	fmt.Printf("  %s    - serve it over HTTP\n", info("folio serve"))

	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// promptString prompts for a string input.
func promptString(prompt string) string {
	fmt.Printf("%s ", prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// promptYesNo prompts for a yes/no input.
func promptYesNo(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}
