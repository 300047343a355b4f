package main

import (
	"fmt"
	"os"

	"tumundo_admin/internal"
	"tumundo_admin/internal/cli"
)

func main() {
	if err := internal.Run(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Friendly(err))
		os.Exit(1)
	}
}
