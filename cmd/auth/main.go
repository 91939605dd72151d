// Command auth runs the session authentication service.
package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/sessionauth/internal/auth/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "auth: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := app.LoadDotEnv(".env"); err != nil {
		return err
	}

	application, err := app.New(app.LoadConfig())
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	return application.Run()
}
