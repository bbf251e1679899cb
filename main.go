package main

import (
	"fmt"
	"os"

	"github.com/russellromney/argon2bind/cmd"
	"github.com/russellromney/argon2bind/internal/diag"
)

func main() {
	// fatal failures inside a call are reported on stderr
	if err := diag.Install(os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cmd.Execute()
}
