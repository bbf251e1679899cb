package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/russellromney/argon2bind/internal/config"
	"github.com/russellromney/argon2bind/internal/keychain"
	"github.com/russellromney/argon2bind/internal/resolver"
)

// paramFlags are the Argon2 inputs shared by hash and verify
type paramFlags struct {
	opts           config.Options
	pepperKeychain string
	password       string
	stdin          bool
}

func (p *paramFlags) register(c *cobra.Command) {
	f := c.Flags()
	f.StringVarP(&p.opts.Algorithm, "algorithm", "a", "",
		fmt.Sprintf("Argon2i, Argon2d or Argon2id; anything else means Argon2id (default %s)", config.DefaultAlgorithm))
	f.Uint32Var(&p.opts.Version, "version", 0, fmt.Sprintf("Argon2 version, 16 or 19 (default %d)", config.DefaultVersion))
	f.StringVar(&p.opts.Pepper, "pepper", "", "Secret pepper (empty means none)")
	f.StringVar(&p.pepperKeychain, "pepper-keychain", "", "Read the pepper stored in the OS keychain for this account")
	f.Uint32VarP(&p.opts.MemoryCost, "memory", "m", 0, fmt.Sprintf("Memory cost in KiB (default %d)", config.DefaultMemoryCost))
	f.Uint32VarP(&p.opts.IterationCost, "iterations", "t", 0, fmt.Sprintf("Iteration cost (default %d)", config.DefaultIterationCost))
	f.Uint32VarP(&p.opts.Parallelism, "parallelism", "p", 0, fmt.Sprintf("Degree of parallelism (default %d)", config.DefaultParallelism))
	f.Uint32VarP(&p.opts.OutputLen, "length", "l", 0, fmt.Sprintf("Output length in bytes (default %d)", config.DefaultOutputLen))
	f.StringVar(&p.password, "password", "", "Password (non-interactive mode)")
	f.BoolVar(&p.stdin, "stdin", false, "Read the password from stdin")
	c.MarkFlagsMutuallyExclusive("pepper", "pepper-keychain")
	c.MarkFlagsMutuallyExclusive("password", "stdin")
}

// inputs applies the flags over the defaults, fetching the pepper from the
// keychain when asked to
func (p *paramFlags) inputs(cfg *config.Config) (resolver.Inputs, error) {
	opts := p.opts
	if p.pepperKeychain != "" {
		pepper, err := keychain.New(cfg.KeychainService).Pepper(p.pepperKeychain)
		if err != nil {
			return resolver.Inputs{}, err
		}
		opts.Pepper = pepper
	}
	return cfg.Inputs(opts), nil
}

// readPassword returns the password from the flag, stdin or a prompt
func (p *paramFlags) readPassword(cmd *cobra.Command) (string, error) {
	if p.password != "" {
		return p.password, nil
	}
	if p.stdin {
		return readLine(cmd.InOrStdin())
	}
	return prompt(cmd, "Password: ")
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt reads a line without echo from the terminal
func prompt(cmd *cobra.Command, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal: use --password or --stdin")
	}
	fmt.Fprint(cmd.ErrOrStderr(), label)
	value, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(value), nil
}
