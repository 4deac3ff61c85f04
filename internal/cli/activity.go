package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/HartBrook/folio/internal/activity"
	"github.com/HartBrook/folio/internal/github"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type activityOptions struct {
	json    bool
	refresh bool
	noAuth  bool
}

// NewActivityCmd creates the activity command.
func NewActivityCmd(g *globalOptions) *cobra.Command {
	opts := &activityOptions{}

	cmd := &cobra.Command{
		Use:   "activity [account]",
		Short: "Show a GitHub account's activity snapshot",
		Long: `Fetches (or reads from cache) repositories, organizations, counts and the
last 14 days of contributions for an account.

Categories that could not be fetched are listed as degraded; the rest of the
snapshot is still shown.`,
		Example: `  folio activity octocat
  folio activity --json
  folio activity octocat --refresh`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivity(cmd.Context(), g, opts, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Ignore cached entries")
	cmd.Flags().BoolVar(&opts.noAuth, "no-auth", false, "Ignore any configured GitHub credential")

	return cmd
}

func runActivity(ctx context.Context, g *globalOptions, opts *activityOptions, args []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(g, runtimeOptions{noAuth: opts.noAuth})
	if err != nil {
		return err
	}
	defer rt.Close()

	account, err := resolveAccount(args, rt.cfg)
	if err != nil {
		return err
	}

	agg := rt.aggregator(activity.WithForceRefresh(opts.refresh))
	result, refreshErr := agg.Refresh(ctx, account)

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		return refreshErr
	}

	renderActivity(w, result)
	if refreshErr != nil {
		return refreshErr
	}
	if rt.tokenSource == "none" {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningIcon, dim("No GitHub token; the activity calendar is generated."))
	}
	return nil
}

// renderActivity prints a human-readable snapshot.
func renderActivity(w io.Writer, r *activity.Result) {
	if r == nil {
		return
	}

	p := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	fmt.Fprintf(w, "%s %s\n", info(r.Account), dim("("+title.String(string(r.Origin))+")"))
	if r.Unavailable {
		fmt.Fprintf(w, "%s %s\n", errorIcon, warning("GitHub data is unavailable right now."))
		return
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, p.Sprintf("  %-22s %d", "Stars and forks", r.Stats.TotalContributions))
	fmt.Fprintln(w, p.Sprintf("  %-22s %d", "Pull requests", r.Stats.PullRequests))
	fmt.Fprintln(w, p.Sprintf("  %-22s %d", "Commits", r.Stats.Commits))
	fmt.Fprintln(w, p.Sprintf("  %-22s %d personal, %d organization", "Repositories",
		r.Stats.PersonalRepositories, r.Stats.OrganizationRepositories))

	renderRepos(w, p, "Personal repositories", r.PersonalRepos)
	renderRepos(w, p, "Organization repositories", r.OrgRepos)

	if len(r.Organizations) > 0 {
		fmt.Fprintf(w, "\n%s\n", success("Organizations"))
		for _, o := range r.Organizations {
			fmt.Fprintf(w, "  %s %s\n", o.Login, dim(o.URL))
		}
	}

	fmt.Fprintf(w, "\n%s\n", success(fmt.Sprintf("Last %d days", len(r.Activities))))
	for _, d := range r.Activities {
		fmt.Fprintf(w, "  %s %-20s %d\n", dim(d.Date), bar(d.Count), d.Count)
	}

	if len(r.Degraded) > 0 {
		names := make([]string, len(r.Degraded))
		for i, c := range r.Degraded {
			names[i] = string(c)
		}
		fmt.Fprintf(w, "\n%s degraded: %s\n", warningIcon, strings.Join(names, ", "))
	}
}

func renderRepos(w io.Writer, p *message.Printer, heading string, repos []github.Repository) {
	if len(repos) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", success(heading))
	for _, repo := range repos {
		name := repo.Name
		if repo.Organization != "" {
			name = repo.Organization + "/" + repo.Name
		}
		line := p.Sprintf("  %-30s ★ %d  ⑂ %d", name, repo.Stars, repo.Forks)
		if repo.Language != "" {
			line += "  " + dim(repo.Language)
		}
		fmt.Fprintln(w, line)
	}
}

func bar(n int) string {
	if n > 20 {
		n = 20
	}
	return strings.Repeat("■", n)
}
