package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/russellromney/argon2bind/internal/config"
	"github.com/russellromney/argon2bind/internal/keychain"
)

var pepperCmd = &cobra.Command{
	Use:   "pepper",
	Short: "Manage peppers stored in the OS keychain",
	Long: `Manage peppers stored in the OS keychain.

A stored pepper can be used by hash and verify with --pepper-keychain,
so it never appears on the command line.
(macOS Keychain, Windows Credential Manager, or Linux Secret Service)

Examples:
  argon2bind pepper set myapp
  argon2bind pepper status myapp
  argon2bind pepper delete myapp`,
}

var pepperSetCmd = &cobra.Command{
	Use:   "set <ACCOUNT>",
	Short: "Store a pepper",
	Long: `Store a pepper for an account, replacing any existing one.

You'll be prompted to enter it (hidden input) unless --stdin is given.

Examples:
  argon2bind pepper set myapp
  openssl rand -base64 32 | argon2bind pepper set myapp --stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runPepperSet,
}

var pepperDeleteCmd = &cobra.Command{
	Use:   "delete <ACCOUNT>",
	Short: "Delete a stored pepper",
	Args:  cobra.ExactArgs(1),
	RunE:  runPepperDelete,
}

var pepperStatusCmd = &cobra.Command{
	Use:   "status <ACCOUNT>",
	Short: "Show whether a pepper is stored",
	Args:  cobra.ExactArgs(1),
	RunE:  runPepperStatus,
}

var pepperStdin bool

func init() {
	rootCmd.AddCommand(pepperCmd)
	pepperCmd.AddCommand(pepperSetCmd)
	pepperCmd.AddCommand(pepperDeleteCmd)
	pepperCmd.AddCommand(pepperStatusCmd)
	pepperSetCmd.Flags().BoolVar(&pepperStdin, "stdin", false, "Read the pepper from stdin")
}

func pepperKeychain() (*keychain.Keychain, error) {
	k := keychain.New(config.New().KeychainService)
	if !k.Available() {
		return nil, fmt.Errorf("keychain not available on this system")
	}
	return k, nil
}

func runPepperSet(cmd *cobra.Command, args []string) error {
	k, err := pepperKeychain()
	if err != nil {
		return err
	}

	var pepper string
	if pepperStdin {
		pepper, err = readLine(cmd.InOrStdin())
	} else {
		pepper, err = prompt(cmd, "Enter pepper: ")
	}
	if err != nil {
		return err
	}

	if err := k.StorePepper(args[0], pepper); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pepper stored for %s\n", args[0])
	return nil
}

func runPepperDelete(cmd *cobra.Command, args []string) error {
	k, err := pepperKeychain()
	if err != nil {
		return err
	}
	if err := k.DeletePepper(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pepper deleted for %s\n", args[0])
	return nil
}

func runPepperStatus(cmd *cobra.Command, args []string) error {
	k, err := pepperKeychain()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pepper stored for %s: %v\n", args[0], k.HasPepper(args[0]))
	return nil
}
