package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
)

func newHashPasswordCmd() *cobra.Command {
	params := auth.DefaultHashParams()
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a stored credential for a password",
		Long: `Print the credential string the service would store for a password.
The password is read from the first line of stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, args)
			if err != nil {
				return err
			}
			if violations := auth.PasswordPolicyViolations(password); len(violations) > 0 {
				return errors.New(strings.Join(violations, "; "))
			}
			hasher, err := auth.NewScryptHasher(auth.HasherOptions{Params: params})
			if err != nil {
				return err
			}
			credential, err := hasher.Hash(cmd.Context(), password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), credential)
			return nil
		},
	}
	cmd.Flags().IntVar(&params.N, "n", params.N, "scrypt CPU/memory cost")
	cmd.Flags().IntVar(&params.R, "r", params.R, "scrypt block size")
	cmd.Flags().IntVar(&params.P, "p", params.P, "scrypt parallelism")
	cmd.Flags().IntVar(&params.KeyLen, "key-len", params.KeyLen, "derived key length in bytes")
	cmd.Flags().IntVar(&params.SaltLen, "salt-len", params.SaltLen, "salt length in bytes")
	return cmd
}

func readPassword(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", errors.New("no password given")
		}
		return "", errors.New("empty password")
	}
	return line, nil
}
