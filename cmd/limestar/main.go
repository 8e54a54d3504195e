package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/limestar/pkg/config"
)

type rootFlags struct {
	apiURL   string
	stateURL string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:          "limestar",
		Short:        "Browse and manage a LimeStar link collection",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.apiURL, "api", cfg.APIURL, "LimeStar API base URL")
	rootCmd.PersistentFlags().StringVar(&flags.stateURL, "state", cfg.StateURL, "session state store (file:, libsql://, redis://)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	open := func(cmd *cobra.Command) (*app, error) {
		c := *cfg
		c.APIURL = flags.apiURL
		c.StateURL = flags.stateURL
		return openApp(cmd.Context(), &c, flags.verbose, cmd.ErrOrStderr())
	}

	rootCmd.AddCommand(loginCmd(open))
	rootCmd.AddCommand(logoutCmd(open))
	rootCmd.AddCommand(statusCmd(open))
	rootCmd.AddCommand(listCmd(open))
	rootCmd.AddCommand(searchCmd(open))
	rootCmd.AddCommand(showCmd(open))
	rootCmd.AddCommand(addCmd(open))
	rootCmd.AddCommand(editCmd(open))
	rootCmd.AddCommand(deleteCmd(open))
	rootCmd.AddCommand(tagsCmd(open))
	rootCmd.AddCommand(tagCreateCmd(open))
	rootCmd.AddCommand(browseCmd(open))

	return rootCmd
}
