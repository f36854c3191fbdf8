package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/urfave/cli/v3"

	"github.com/kailas-cloud/facilitydex/internal/domain/document"
	"github.com/kailas-cloud/facilitydex/internal/domain/search/request"
	indexinguc "github.com/kailas-cloud/facilitydex/internal/usecase/indexing"
	"github.com/kailas-cloud/facilitydex/internal/version"
)

// IndexCommand creates the index command
func IndexCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Rebuild the index from a dataset file or s3://bucket/key",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dataset",
				Aliases:  []string{"d"},
				Usage:    "Dataset location (.json, .json.gz, .json.zst or s3://bucket/key)",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "List every skipped record and unresolved reference",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := open(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			ds, err := a.Datasets.Load(ctx, c.String("dataset"))
			if err != nil {
				return fmt.Errorf("loading dataset: %w", err)
			}
			report, err := a.Indexing.Run(ctx, ds)
			if err != nil {
				return fmt.Errorf("indexing: %w", err)
			}
			printReport(c.Root().Writer, report, c.Bool("verbose"))
			return nil
		},
	}
}

// DumpCommand creates the dump command
func DumpCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Export facilities matching a search as CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "q", Usage: "Free-text query"},
			&cli.IntFlag{Name: "s", Usage: "Category id"},
			&cli.IntFlag{Name: "t", Usage: "Facility type id"},
			&cli.IntFlag{Name: "l", Usage: "Location id"},
			&cli.IntFlag{Name: "o", Usage: "Ownership id"},
			&cli.FloatFlag{Name: "lat", Usage: "Latitude for distance ordering"},
			&cli.FloatFlag{Name: "lng", Usage: "Longitude for distance ordering"},
			&cli.StringFlag{Name: "sort", Usage: "Sort order (name, type)"},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"out"},
				Usage:   "Output file; a .gz suffix compresses it (default: stdout)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := request.New(dumpParams(c))
			if err != nil {
				return err
			}

			a, err := open(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			out := c.Root().Writer
			closeOut := func() error { return nil }
			if path := c.String("output"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating output: %w", err)
				}
				out, closeOut = wrapOutput(f, strings.HasSuffix(path, ".gz"))
			}

			rows, err := a.Dump.Dump(ctx, &req, out)
			cerr := closeOut()
			if err != nil {
				return fmt.Errorf("dump stopped after %d rows: %w", rows, err)
			}
			if cerr != nil {
				return fmt.Errorf("closing output: %w", cerr)
			}
			fmt.Fprintf(c.Root().ErrWriter, "%d rows written\n", rows)
			return nil
		},
	}
}

// ResetCommand creates the reset command
func ResetCommand(open opener) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Drop and recreate every index, leaving it empty",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := open(ctx, c)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Indexing.Reset(ctx); err != nil {
				return fmt.Errorf("resetting index: %w", err)
			}
			fmt.Fprintln(c.Root().Writer, "Index reset")
			return nil
		},
	}
}

// VersionCommand creates the version command
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Fprintln(c.Root().Writer, version.BuildVersion("facilityctl"))
			return nil
		},
	}
}

func dumpParams(c *cli.Command) request.Params {
	p := request.Params{
		Query:        c.String("q"),
		Category:     c.Int("s"),
		FacilityType: c.Int("t"),
		Location:     c.Int("l"),
		Ownership:    c.Int("o"),
		Sort:         c.String("sort"),
	}
	if c.IsSet("lat") {
		lat := c.Float("lat")
		p.Lat = &lat
	}
	if c.IsSet("lng") {
		lng := c.Float("lng")
		p.Lng = &lng
	}
	return p
}

func printReport(w io.Writer, r *indexinguc.Report, verbose bool) {
	fmt.Fprintf(w, "Run %s finished in %s\n", r.RunID, r.Duration)
	fmt.Fprintf(w, "Administrative depth: %d\n", r.AdministrativeDepth)

	types := make([]document.Type, 0, len(r.Indexed))
	for t := range r.Indexed {
		types = append(types, t)
	}
	slices.Sort(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-16s %d\n", t, r.Indexed[t])
	}

	fmt.Fprintf(w, "Skipped: %d, unresolved: %d\n", len(r.Skipped), len(r.Unresolved))
	if !verbose {
		return
	}
	for _, e := range r.Skipped {
		fmt.Fprintf(w, "  skipped %s %s: %s\n", e.Kind, e.SourceID, e.Reason)
	}
	for _, e := range r.Unresolved {
		fmt.Fprintf(w, "  unresolved %s %s: %s\n", e.Kind, e.SourceID, e.Reason)
	}
}

// wrapOutput optionally gzips f. The returned close writes the gzip trailer,
// then closes f, and reports the first error.
func wrapOutput(f io.WriteCloser, compress bool) (io.Writer, func() error) {
	if !compress {
		return f, f.Close
	}
	gz := gzip.NewWriter(f)
	return gz, func() error {
		err := gz.Close()
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}
}
