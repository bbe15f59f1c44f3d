// Command raincore is a devtools CLI for exercising the terminal core
// outside of a GUI: spawning a shell session against the real TTY, or
// driving a tmux control-mode session and printing its events as NDJSON.
package main

import (
	"fmt"
	"os"

	"github.com/realAndi/Rain/internal/rainccmd"
)

func main() {
	if err := rainccmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
