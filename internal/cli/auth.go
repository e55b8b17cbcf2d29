package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/brokerdesk/internal/brokerapi"
	"github.com/five82/brokerdesk/internal/config"
)

func newLoginCommand(r *runner) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. The session token is stored in the
session file so later commands and the console reuse it.`,
		Example: `  # Prompt for the password
  brokerdesk login --email admin@example.com

  # Read the password from a pipe
  printf '%s' "$PASSWORD" | brokerdesk login --email admin@example.com --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if r.env.Config.Token != "" {
				return fmt.Errorf("%s is set; unset it to sign in with a password", config.EnvToken)
			}
			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("--email is required")
			}
			password, err := readPassword(cmd, passwordStdin)
			if err != nil {
				return err
			}
			s, err := r.env.Loader.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %s", brokerapi.Message(err))
			}
			name := s.Name
			if name == "" {
				name = email
			}
			printf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", name, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// readPassword reads the password from stdin when asked to, otherwise
// prompts on the terminal with echo disabled.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	in := cmd.InOrStdin()
	if fromStdin {
		return readLine(in)
	}
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no terminal available for the password prompt (use --password-stdin)")
	}
	printf(cmd.ErrOrStderr(), "Password: ")
	data, err := term.ReadPassword(int(f.Fd()))
	printf(cmd.ErrOrStderr(), "\n")
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("password is empty")
	}
	return string(data), nil
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is empty")
	}
	return line, nil
}

func newLogoutCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !r.env.Session.Current().Valid() {
				printf(cmd.OutOrStdout(), "Not signed in\n")
				return nil
			}
			if err := r.env.Loader.Logout(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			printf(cmd.OutOrStdout(), "Signed out\n")
			return nil
		},
	}
}

func newWhoamiCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := r.env.Session.Current()
			if !s.Valid() {
				return errNotSignedIn
			}
			out := cmd.OutOrStdout()
			if s.Name != "" {
				printf(out, "Name:   %s\n", s.Name)
			}
			printf(out, "Role:   %s\n", s.Role)
			printf(out, "Server: %s\n", r.env.Client.BaseURL())
			switch {
			case r.env.Config.Token != "":
				printf(out, "Token:  from %s\n", config.EnvToken)
			case !s.IssuedAt.IsZero():
				printf(out, "Since:  %s\n", s.IssuedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}
