package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/russellromney/argon2bind/internal/config"
	"github.com/russellromney/argon2bind/internal/diag"
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Hash a password",
	Long: `Hash a password and print the PHC encoded hash.

A fresh random salt is used every time, so hashing the same password
twice prints two different hashes. If you don't pass --password or
--stdin, you'll be prompted (hidden input).

Examples:
  argon2bind hash --password "correct horse"
  argon2bind hash -a Argon2i --version 16 -m 19456 -t 2 -p 1 -l 32
  echo "correct horse" | argon2bind hash --stdin --pepper "s3cret"`,
	Args: cobra.NoArgs,
	RunE: runHash,
}

// errEmptyHash is reported when derivation failed and the hasher returned ""
var errEmptyHash = errors.New("hash derivation failed (run with --verbose for details)")

var hashFlags paramFlags

func init() {
	rootCmd.AddCommand(hashCmd)
	hashFlags.register(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	in, err := hashFlags.inputs(config.New())
	if err != nil {
		return err
	}

	password, err := hashFlags.readPassword(cmd)
	if err != nil {
		return err
	}

	return diag.Guard("hash", func() error {
		hash := newHasher().Hash(password, in)
		if hash == "" {
			return errEmptyHash
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	})
}
