package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/russellromney/argon2bind/internal/host"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Answer hash and verify requests on stdin",
	Long: `Read JSON requests from stdin, one per line, and write one JSON
response per line to stdout. Requests run in parallel; match responses
to requests by id. Requests without an id get a generated one.

A fatal failure (unknown version, bad costs, malformed hash) fails only
that request: its response carries an error and the diagnostic goes to
stderr.

Request:
  {"id":"1","op":"hash","password":"pw","algorithm":"Argon2id","version":19,
   "pepper":"","memory_cost":19456,"iteration_cost":2,"parallelism":1,"output_len":32}
  {"id":"2","op":"verify","password":"pw","hash":"$argon2id$...", ...same params}

Response:
  {"id":"1","hash":"$argon2id$v=19$..."}
  {"id":"2","match":true}
  {"id":"3","error":"hash: fatal: hash: unknown argon2 version: 18"}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveWorkers int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 0, "Number of worker goroutines (default one per CPU)")
}

func runServe(cmd *cobra.Command, args []string) error {
	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}
	s := host.NewServer(newHasher(), serveWorkers, log.New(w, "argon2bind: ", log.LstdFlags))
	return s.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
}
