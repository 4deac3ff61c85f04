package cli

import (
	"fmt"
	"io"

	"github.com/HartBrook/folio/internal/cache"
	"github.com/HartBrook/folio/internal/errors"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command and its subcommands.
func NewCacheCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached GitHub data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list [account]",
		Short: "List cached entries and their age",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(g, runtimeOptions{noAuth: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			account := ""
			if len(args) > 0 {
				account = args[0]
			}
			return listCache(cmd.OutOrStdout(), rt.store, account)
		},
	})

	var all bool
	clearCmd := &cobra.Command{
		Use:   "clear [account]",
		Short: "Delete cached entries for an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(g, runtimeOptions{noAuth: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			account := ""
			if !all {
				if account, err = resolveAccount(args, rt.cfg); err != nil {
					return err
				}
			}
			if rt.store == nil {
				return errors.CacheUnavailable(nil)
			}

			n, err := cache.ClearAccount(rt.store, account)
			if err != nil {
				return errors.CacheUnavailable(err)
			}
			if all {
				printSuccess("Removed %d cached entries", n)
			} else {
				printSuccess("Removed %d cached entries for %s", n, account)
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&all, "all", false, "Clear every account")
	cmd.AddCommand(clearCmd)

	return cmd
}

// listCache prints one line per stored entry.
func listCache(w io.Writer, store cache.Store, account string) error {
	listings, err := cache.Describe(store, cache.AccountPrefix(account))
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		fmt.Fprintln(w, dim("No cached entries"))
		return nil
	}

	for _, l := range listings {
		switch {
		case l.Corrupt:
			fmt.Fprintf(w, "  %s %-16s %-20s %s\n", errorIcon, l.Account, l.Category, warning("corrupt"))
		case l.Valid:
			fmt.Fprintf(w, "  %s %-16s %-20s %s\n", successIcon, l.Account, l.Category, dim(l.Age))
		default:
			fmt.Fprintf(w, "  %s %-16s %-20s %s\n", warningIcon, l.Account, l.Category, dim(l.Age+", expired"))
		}
	}
	return nil
}
