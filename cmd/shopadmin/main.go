package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/patric-chuzhbe/shopadmin/internal/app"
)

func main() {
	exit(run())
}

func run() int {
	application, err := app.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "initialization error:", err)

		return 1
	}
	defer application.Close()

	// config.New consumed the global flags; the rest is the command.
	if err := application.Run(flag.Args()); err != nil {
		return 1
	}

	return 0
}

func exit(code int) {
	if code != 0 {
		os.Exit(code)
	}
}
