package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"kjsb_flow_app_go/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newHashPasswordCommand(opts *RootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print the bcrypt hash for OFFICE_PASSWORD_HASH",
		Long: `Hash the shared office password. Without --password the password is
read from the terminal (hidden) or from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return &ExitError{Code: ExitCommandError, Message: "failed to read password", Err: err}
				}
			}
			if err := services.ValidatePassword(password); err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}

			hash, err := services.HashPassword(password)
			if err != nil {
				return &ExitError{Code: ExitCommandError, Message: "failed to hash password", Err: err}
			}
			return opts.output(cmd.OutOrStdout(), map[string]string{"office_password_hash": hash}, hash)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to hash (avoid: ends up in shell history)")
	return cmd
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
