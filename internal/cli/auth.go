// Package cli provides session commands (login, register, logout, status).
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ASL66/mirad-upload/internal/session"
)

// readPassword prompts for a password without echoing when stdin is a
// terminal, falling back to a plain line read otherwise.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to the server",
		Long: `Log in and establish a session.

The session cookie is held in memory for this process only. Commands
that need a session report "session expired" once the server side
times out; log in again to continue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			pw := password
			if pw == "" {
				pw, err = readPassword("Password: ")
				if err != nil {
					return err
				}
			}

			gate := session.NewGate(client, nil, log)
			if err := gate.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

// newRegisterCmd creates the 'register' command.
func newRegisterCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			pw := password
			if pw == "" {
				pw, err = readPassword("Password: ")
				if err != nil {
					return err
				}
			}

			gate := session.NewGate(client, nil, log)
			if err := gate.Register(cmd.Context(), args[0], pw); err != nil {
				return err
			}

			fmt.Printf("Registered %s. Run 'mirad login %s' to sign in.\n", args[0], args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			gate := session.NewGate(client, nil, log)
			if err := gate.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// newStatusCmd creates the 'status' command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show login status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := GetLogger()

			client, err := getAPIClient()
			if err != nil {
				return err
			}

			gate := session.NewGate(client, nil, log)
			loggedIn, err := gate.Check(cmd.Context())
			if err != nil {
				return err
			}

			if loggedIn {
				_, name := gate.LoggedIn()
				fmt.Printf("Logged in as %s\n", name)
			} else {
				fmt.Println("Not logged in.")
			}
			return nil
		},
	}
}
