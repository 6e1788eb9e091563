package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/joacominatel/theseus/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// csvOptions controls how a CSV file is read into Arrow records.
type csvOptions struct {
	header    bool
	delimiter string
	chunk     int
	nulls     []string
}

// readCSV returns a record stream over r with column types inferred from
// the first chunk. The stream carries its schema before the first Next, so
// r is read twice: once to infer the types and once for the records. The
// caller releases the stream.
func readCSV(r io.ReadSeeker, opts csvOptions) (array.RecordReader, error) {
	comma, size := utf8.DecodeRuneInString(opts.delimiter)
	if size == 0 || size != len(opts.delimiter) {
		return nil, fmt.Errorf("delimiter must be a single character, got %q", opts.delimiter)
	}

	readOpts := []csv.Option{
		csv.WithAllocator(memory.DefaultAllocator),
		csv.WithHeader(opts.header),
		csv.WithComma(comma),
		csv.WithChunk(opts.chunk),
		csv.WithNullReader(true, opts.nulls...),
	}

	infer := csv.NewInferringReader(r, readOpts...)
	if !infer.Next() {
		err := infer.Err()
		infer.Release()
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return nil, errEmptyCSV
	}
	schema := infer.Schema()
	infer.Release()

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return csv.NewReader(r, schema, readOpts...), nil
}

var errEmptyCSV = errors.New("csv file has no rows")

func (c *cli) registerCmd() *cobra.Command {
	opts := csvOptions{}

	cmd := &cobra.Command{
		Use:   "register <name> <file.csv>",
		Short: "Load a CSV file as a table",
		Long:  "register streams a CSV file to the server as Arrow records and exposes it as a table called <name>.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := readCSV(f, opts)
			if err != nil {
				return err
			}
			defer records.Release()

			return c.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				if err := svc.Register(ctx, name, records); err != nil {
					return err
				}
				c.logger.Debug("registered csv", zap.String("table", name), zap.String("file", path))
				fmt.Fprintf(c.stdout, "registered %s from %s\n", name, path)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.header, "header", true, "first line holds column names")
	flags.StringVarP(&opts.delimiter, "delimiter", "d", ",", "field delimiter")
	flags.IntVar(&opts.chunk, "chunk", 1024, "rows per Arrow record")
	flags.StringSliceVar(&opts.nulls, "null", []string{""}, "values read as NULL")
	return cmd
}
