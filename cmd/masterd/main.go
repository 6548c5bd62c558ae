// Command masterd is the master-side job execution coordinator daemon: it
// boots the dependency stack internal/master depends on, drives a job
// through the start protocol, and renders its status until completion.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
