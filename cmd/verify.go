package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/russellromney/argon2bind/internal/config"
	"github.com/russellromney/argon2bind/internal/diag"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <HASH>",
	Short: "Verify a password against a hash",
	Long: `Verify that a password matches a PHC encoded hash.

Algorithm, version and costs are read from the hash; the pepper must be
supplied again. Prints true or false and exits non-zero on a mismatch.
A malformed hash is a fatal error.

Examples:
  argon2bind verify '$argon2id$v=19$m=4096,t=3,p=1$...' --password "correct horse"
  argon2bind verify "$HASH" --pepper-keychain myapp`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

// errMismatch is reported when the password does not match
var errMismatch = errors.New("password does not match")

var verifyFlags paramFlags

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyFlags.register(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	in, err := verifyFlags.inputs(config.New())
	if err != nil {
		return err
	}

	password, err := verifyFlags.readPassword(cmd)
	if err != nil {
		return err
	}

	return diag.Guard("verify", func() error {
		match := newHasher().Verify(password, args[0], in)
		fmt.Fprintln(cmd.OutOrStdout(), match)
		if !match {
			return errMismatch
		}
		return nil
	})
}
