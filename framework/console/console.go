// Package console provides the command-line entry point: serving HTTP and
// inspecting the bean graph.
package console

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/foundation"
)

const applicationName = "go-beans"

// Factory builds an unbooted application with every provider registered.
type Factory func(envFiles []string) (*foundation.Application, error)

// New returns the root command.
//
//	go-beans serve            boot and serve HTTP until SIGINT/SIGTERM
//	go-beans beans [--check]  list bean definitions, optionally validating the graph
//	go-beans routes           boot and list HTTP routes
func New(factory Factory) *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:           applicationName,
		Short:         "A dependency-injection container with singleton and request scopes",
		Version:       foundation.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	build := func() (*foundation.Application, error) { return factory(envFiles) }

	root.AddCommand(
		newServeCommand(build),
		newBeansCommand(build),
		newRoutesCommand(build),
	)
	return root
}

// ── serve ─────────────────────────────────────────────────────────────────────

func newServeCommand(build func() (*foundation.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Boot the application and serve HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx)
		},
	}
}

// ── beans ─────────────────────────────────────────────────────────────────────

type beanRow struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Scope        string   `json:"scope"`
	Dependencies []string `json:"dependencies"`
}

func newBeansCommand(build func() (*foundation.Application, error)) *cobra.Command {
	var (
		check  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "beans",
		Short: "List registered bean definitions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := build()
			if err != nil {
				return err
			}

			if err := renderBeans(cmd.OutOrStdout(), app.Definitions(), output); err != nil {
				return err
			}

			if !check {
				return nil
			}
			if err := app.Boot(cmd.Context()); err != nil {
				return errors.Wrap(err, "bean graph is invalid")
			}
			cmd.Println("bean graph OK")
			return app.Shutdown(context.Background())
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "start the container to validate the graph")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, json)")
	return cmd
}

func renderBeans(w io.Writer, defs []container.BeanDefinition, format string) error {
	rows := make([]beanRow, len(defs))
	for i, def := range defs {
		deps := make([]string, len(def.Dependencies))
		for j, dep := range def.Dependencies {
			deps[j] = dep.String()
		}
		rows[i] = beanRow{
			Name:         def.Name(),
			Type:         def.Key.Type.String(),
			Scope:        def.Scope.String(),
			Dependencies: deps,
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table", "":
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Name", "Type", "Scope", "Dependencies"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Name, r.Type, r.Scope, strings.Join(r.Dependencies, "\n")})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	default:
		return errors.Errorf("unknown output format %q", format)
	}
}

// ── routes ────────────────────────────────────────────────────────────────────

func newRoutesCommand(build func() (*foundation.Application, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Boot the application and list HTTP routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := build()
			if err != nil {
				return err
			}
			if err := app.Boot(cmd.Context()); err != nil {
				return err
			}
			defer app.Shutdown(context.Background())

			router, err := app.Router(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Method", "Pattern"})
			for _, r := range router.Routes() {
				t.AppendRow(table.Row{r.Method, r.Pattern})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
