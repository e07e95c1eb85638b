package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the credential",
	Long: "Log in with email and password. The password is read from --password, " +
		"then STUDYHALL_PASSWORD, then the first line of stdin.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()

		email, _ := cmd.Flags().GetString("email")
		if strings.TrimSpace(email) == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := e.callCtx(cmd.Context())
		defer cancel()

		if register, _ := cmd.Flags().GetBool("register"); register {
			if _, err := e.client.Register(ctx, email, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created.")
		}
		cred, err := e.auth.SignIn(ctx, e.client, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s.\n", cred.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.requireLogin(); err != nil {
			return err
		}
		ctx, cancel := e.callCtx(cmd.Context())
		defer cancel()

		user, err := e.client.Me(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (id %s)\n", user.Email, user.ID)
		cred, _ := e.auth.Current()
		if exp, ok := auth.ExpiresAt(cred.AccessToken); ok {
			fmt.Fprintf(out, "Token expires %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	if p := os.Getenv("STUDYHALL_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")
	loginCmd.Flags().Bool("register", false, "Create the account before logging in")
}
