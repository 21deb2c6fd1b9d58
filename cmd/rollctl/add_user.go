package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/canvasstrack/voterroll/internal/auth"
	"github.com/canvasstrack/voterroll/internal/logging"
)

var errPasswordMismatch = errors.New("passwords do not match")

func newAddUserCmd(opts *rootOptions) *cobra.Command {
	var displayName string
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "add-user <username>",
		Short: "Create a canvasser or admin account",
		Long: `Create an account. On a terminal the password is prompted for twice
without echo; otherwise the first line of standard input is used.`,
		Example: `  rollctl add-user priya --display-name "Priya Kulkarni"
  echo "$ADMIN_PASSWORD" | rollctl add-user admin --admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddUser(cmd, opts, auth.NewUser{
				Username:    args[0],
				DisplayName: displayName,
				IsAdmin:     isAdmin,
			})
		},
	}

	cmd.Flags().StringVar(&displayName, "display-name", "", "Name shown in reports (defaults to the username)")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "Grant admin rights")
	return cmd
}

func runAddUser(cmd *cobra.Command, opts *rootOptions, in auth.NewUser) error {
	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	in.Password = password

	application, err := opts.openApp(cmd)
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(application, application.Logger, "application")

	user, err := application.Auth.CreateUser(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", in.Username, err)
	}

	role := "canvasser"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", role, user.Username, user.ID)
	return nil
}

// readPassword prompts on a terminal and reads one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return promptPassword(cmd.ErrOrStderr(), int(f.Fd()))
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptPassword(w io.Writer, fd int) (string, error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(w, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	password, err := read("Password: ")
	if err != nil {
		return "", err
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errPasswordMismatch
	}
	return password, nil
}
