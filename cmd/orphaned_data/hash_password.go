package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonathan/orphaned-data/internal/config"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for an operator's password_hash",
	Long: `Reads a password from the first line of standard input and prints its bcrypt hash.
BCRYPT_COST and PASSWORD_PEPPER are honoured, so run it with the same environment as serve.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		passwords, err := config.NewPasswordConfig(os.Getenv)
		if err != nil {
			return err
		}
		return hashPassword(cmd.InOrStdin(), cmd.OutOrStdout(), passwords)
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func hashPassword(in io.Reader, out io.Writer, passwords *config.PasswordConfig) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("password is empty")
	}

	hash, err := passwords.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, hash)
	return err
}
