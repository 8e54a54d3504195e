package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func loginCmd(open opener) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "login [password]",
		Short: "Log in as the collection owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			switch {
			case fromStdin:
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			case len(args) == 1:
				password = args[0]
			default:
				return errors.New("password required, pass it as an argument or use --password-stdin")
			}

			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			res := a.session.Login(cmd.Context(), password)
			if !res.Success {
				return errors.New(res.Message)
			}
			msg := res.Message
			if msg == "" {
				msg = "Logged in."
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func logoutCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func statusCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API endpoint and whether the session is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api:   %s\n", a.cfg.APIURL)
			if a.session.IsAuthenticated() {
				fmt.Fprintln(out, "state: logged in")
			} else {
				fmt.Fprintln(out, "state: logged out")
			}
			return nil
		},
	}
}
