package main

import (
	"fmt"
	"os"

	"github.com/km-arc/go-beans/app"
	"github.com/km-arc/go-beans/framework/console"
	"github.com/km-arc/go-beans/framework/foundation"
)

func main() {
	root := console.New(func(envFiles []string) (*foundation.Application, error) {
		application, err := foundation.New(envFiles...) // loads .env when no files are given
		if err != nil {
			return nil, err
		}

		// ── Application providers ────────────────────────────────────────────
		if err := application.Register(&app.AppServiceProvider{}); err != nil {
			return nil, err
		}
		return application, nil
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
