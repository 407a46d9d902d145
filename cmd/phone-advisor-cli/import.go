package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/app"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

// phoneColumns maps accepted CSV header names to Phone fields.
var phoneColumns = map[string]func(p *storage.Phone, v string){
	"model_name":   func(p *storage.Phone, v string) { p.ModelName = v },
	"release_date": func(p *storage.Phone, v string) { p.ReleaseDate = storage.StringPtr(v) },
	"display":      func(p *storage.Phone, v string) { p.Display = storage.StringPtr(v) },
	"battery":      func(p *storage.Phone, v string) { p.Battery = storage.StringPtr(v) },
	"camera":       func(p *storage.Phone, v string) { p.Camera = storage.StringPtr(v) },
	"ram":          func(p *storage.Phone, v string) { p.RAM = storage.StringPtr(v) },
	"storage":      func(p *storage.Phone, v string) { p.Storage = storage.StringPtr(v) },
	"price":        func(p *storage.Phone, v string) { p.Price = storage.StringPtr(v) },
}

// readPhonesCSV parses phone rows. The header row is required and must name a
// model_name column; unknown columns are ignored and empty cells become NULL.
func readPhonesCSV(r io.Reader) ([]*storage.Phone, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	setters := make([]func(*storage.Phone, string), len(header))
	hasName := false
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		setters[i] = phoneColumns[key]
		if key == "model_name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, fmt.Errorf("csv header must include model_name")
	}

	var phones []*storage.Phone
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		p := &storage.Phone{}
		for i, v := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](p, strings.TrimSpace(v))
			}
		}
		if p.ModelName == "" {
			return nil, fmt.Errorf("line %d: model_name is empty", line)
		}
		phones = append(phones, p)
	}

	return phones, nil
}

// newImportCmd creates the import subcommand.
func newImportCmd() *cobra.Command {
	var (
		input  string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import phones from CSV",
		Long: `Import upserts phone rows keyed by model_name.

The CSV header names the columns: model_name, release_date, display, battery,
camera, ram, storage, price. Only model_name is required.
Use --dry-run to validate without writing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input file: %w", err)
			}
			defer file.Close()

			phones, err := readPhonesCSV(file)
			if err != nil {
				return fmt.Errorf("parse %s: %w", input, err)
			}

			log := logger.WithOperation("import")
			log.Info().
				Str("input", input).
				Int("rows", len(phones)).
				Bool("dry_run", dryRun).
				Msg("Importing phones")

			if dryRun {
				if outputJSON {
					printJSON(map[string]any{"rows": len(phones), "dry_run": true})
					return nil
				}
				ui.Success("Validated %d rows from %s (dry run)", len(phones), input)
				return nil
			}

			ctx, cancel := commandContext(5 * time.Minute)
			defer cancel()

			svc, err := openServices(ctx, true)
			if err != nil {
				return err
			}
			defer svc.Close()

			bar := ui.ProgressBar("import", int64(len(phones)))
			for _, p := range phones {
				if err := svc.Phones.Upsert(ctx, p); err != nil {
					if bar != nil {
						bar.Abort(false)
					}
					ui.Close()
					return fmt.Errorf("upsert %q: %w", p.ModelName, err)
				}
				if bar != nil {
					bar.Increment()
				}
			}
			ui.Close()

			if err := app.InvalidateSharedAnswers(ctx, cfg); err != nil {
				log.Warn().Err(err).Msg("Answer cache invalidation failed")
				ui.Warning("Cached answers were not cleared: %v", err)
			}

			total, err := svc.Phones.Count(ctx)
			if err != nil {
				return err
			}

			if outputJSON {
				printJSON(map[string]any{"imported": len(phones), "total": total})
				return nil
			}
			ui.Success("Imported %d phones, catalog has %d", len(phones), total)
			ui.Info("Running API servers pick this up on POST /api/v1/catalog/reload")
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "csv", "", "CSV file to import (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without writing")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}
