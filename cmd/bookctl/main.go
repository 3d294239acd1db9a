// Package main provides bookctl, a maintenance tool that works directly on
// the bookshelf's JSON books file.
//
// Usage:
//
//	bookctl list --name dicoding --reading 1
//	bookctl show <bookId>
//	bookctl check
//	bookctl seed --count 10
//
// The books file is resolved like the server does it: --data-path, then
// DATA_PATH (environment or .env), then ./data/books.json.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/listenupapp/bookshelf-server/internal/config"
)

// app carries state shared by every subcommand.
type app struct {
	cfg *config.Config

	dataPath string
	lang     string
	verbose  bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "Inspect and maintain the bookshelf books file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.dataPath, "data-path", "", "Path to the books JSON file (default: ./data/books.json)")
	flags.StringVar(&a.lang, "lang", "", "Message language for validation errors (en, id)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log store activity to stderr")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newCheckCmd(a),
		newSeedCmd(a),
	)

	return root
}

// loadConfig resolves settings through the server's config layer so both
// binaries agree on where the books live.
func (a *app) loadConfig() error {
	var args []string
	if a.dataPath != "" {
		args = append(args, "-data-path", a.dataPath)
	}
	if a.lang != "" {
		args = append(args, "-lang", a.lang)
	}

	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
