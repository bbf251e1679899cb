package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/russellromney/argon2bind/internal/hasher"
)

var rootCmd = &cobra.Command{
	Use:   "argon2bind",
	Short: "Argon2 password hashing for hosts that speak strings",
	Long: `argon2bind hashes and verifies passwords with Argon2.

Parameters are passed as plain strings and numbers and resolved into an
Argon2 configuration: unknown algorithm names fall back to Argon2id, while
unknown versions, out-of-range costs and malformed hashes are fatal.

Hashes use the PHC string format and carry everything needed to verify
them except the pepper.

Example workflow:
  argon2bind hash --password "correct horse"             # Argon2id, v19, m=4096, t=3, p=1
  argon2bind verify '$argon2id$v=19$...' --password "correct horse"
  argon2bind pepper set myapp                             # Store a pepper in the OS keychain
  argon2bind hash --pepper-keychain myapp --stdin < pw.txt
  argon2bind serve < requests.jsonl                       # JSON-lines host`,
	SilenceUsage: true,
}

var verbose bool

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log swallowed derivation failures to stderr")
}

// newHasher returns a Hasher that logs to stderr in verbose mode
func newHasher() *hasher.Hasher {
	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}
	return hasher.New(nil, log.New(w, "argon2bind: ", log.LstdFlags))
}
