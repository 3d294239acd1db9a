package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/i18n"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// errViolations makes check exit non-zero after printing its report.
var errViolations = errors.New("books file has invalid records")

func (a *app) logger(cmd *cobra.Command) *logger.Logger {
	if !a.verbose {
		return logger.Discard()
	}
	return logger.New(logger.Config{
		Writer:      cmd.ErrOrStderr(),
		Level:       logger.ParseLevel("debug"),
		Environment: a.cfg.App.Environment,
	})
}

func (a *app) openStore(cmd *cobra.Command) *store.Store {
	return store.Open(cmd.Context(), a.cfg.Storage.Path, a.logger(cmd).Logger)
}

func newListCmd(a *app) *cobra.Command {
	var name, reading, finished string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books as id, name and publisher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := domain.BookFilter{Name: name}
			if cmd.Flags().Changed("reading") {
				filter.Reading = domain.ParseFlag(reading)
			}
			if cmd.Flags().Changed("finished") {
				filter.Finished = domain.ParseFlag(finished)
			}

			books := a.openStore(cmd).List(cmd.Context(), filter)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPUBLISHER")
			for _, b := range books {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", b.ID, b.Name, b.Publisher)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d book(s)\n", len(books))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Case-insensitive substring of the book name")
	cmd.Flags().StringVar(&reading, "reading", "", "1 for books being read, any other value for the rest")
	cmd.Flags().StringVar(&finished, "finished", "", "1 for finished books, any other value for the rest")

	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <bookId>",
		Short: "Print one book as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := a.openStore(cmd).Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, store.ErrBookNotFound) {
					return fmt.Errorf("book %s not found", args[0])
				}
				return err
			}

			data, err := json.MarshalIndent(book, "", "  ")
			if err != nil {
				return fmt.Errorf("encode book: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report records that break the collection's rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := store.NewFileStore(a.cfg.Storage.Path).Load()
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			out := cmd.OutOrStdout()
			problems := checkBooks(books)
			for _, p := range problems {
				fmt.Fprintln(out, p)
			}
			if len(problems) > 0 {
				fmt.Fprintf(out, "%d problem(s) in %d book(s)\n", len(problems), len(books))
				return errViolations
			}

			fmt.Fprintf(out, "ok: %d book(s)\n", len(books))
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Append generated sample books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1, got %d", count)
			}

			messages, err := i18n.New(a.cfg.Messages.Language)
			if err != nil {
				return err
			}
			log := a.logger(cmd)
			books := service.NewBookService(a.openStore(cmd), validation.New(), messages, log.Logger)

			for n := 1; n <= count; n++ {
				book, err := books.CreateBook(cmd.Context(), sampleBook(n))
				if err != nil {
					return fmt.Errorf("seed book %d: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %q\n", book.ID, book.Name)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of books to create")

	return cmd
}

var (
	sampleTitles     = []string{"Kolase Kota", "Laut Bercerita", "Clean Services", "Distributed Notes", "Pagi di Bandung"}
	sampleAuthors    = []string{"Ayu Lestari", "R. Prasetyo", "Dina Hartono", "Michael Chen"}
	samplePublishers = []string{"Dicoding Indonesia", "Gramedia", "Mizan", "O'Reilly"}
)

// sampleBook returns a valid input. Roughly a third come out finished.
func sampleBook(n int) domain.BookInput {
	pageCount := 100 + rand.IntN(400)
	readPage := rand.IntN(pageCount + 1)
	if rand.IntN(3) == 0 {
		readPage = pageCount
	}

	return domain.BookInput{
		Name:      fmt.Sprintf("%s #%d", sampleTitles[rand.IntN(len(sampleTitles))], n),
		Author:    sampleAuthors[rand.IntN(len(sampleAuthors))],
		Summary:   "Generated by bookctl seed.",
		Publisher: samplePublishers[rand.IntN(len(samplePublishers))],
		Year:      1990 + rand.IntN(36),
		PageCount: pageCount,
		ReadPage:  readPage,
		Reading:   readPage > 0 && readPage < pageCount,
	}
}
