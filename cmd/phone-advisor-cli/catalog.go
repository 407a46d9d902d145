package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/retrieval"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

// newCatalogCmd creates the catalog subcommand group.
func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the phone catalog",
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogShowCmd())
	return cmd
}

func newCatalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all phones in store order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(30 * time.Second)
			defer cancel()

			svc, err := openServices(ctx, true)
			if err != nil {
				return err
			}
			defer svc.Close()

			phones, err := svc.Phones.ListAll(ctx)
			if err != nil {
				return err
			}

			if outputJSON {
				printJSON(phones)
				return nil
			}

			if len(phones) == 0 {
				ui.Warning("Catalog is empty. Run 'phone-advisor-cli seed' or 'import --csv'.")
				return nil
			}

			rows := make([][]string, 0, len(phones))
			for _, p := range phones {
				rows = append(rows, []string{
					p.ModelName,
					valueOr(p.ReleaseDate),
					valueOr(p.Battery),
					valueOr(p.Price),
				})
			}
			ui.Table([]string{"Model", "Release", "Battery", "Price"}, rows)
			ui.Info("%d phones", len(phones))
			return nil
		},
	}
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <model name>",
		Short: "Show one phone by its exact model name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(30 * time.Second)
			defer cancel()

			svc, err := openServices(ctx, true)
			if err != nil {
				return err
			}
			defer svc.Close()

			phone, err := svc.Phones.GetByModelName(ctx, args[0])
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s: %s", args[0], retrieval.MsgModelNotFound)
			}
			if err != nil {
				return err
			}

			if outputJSON {
				printJSON(phone)
				return nil
			}
			fmt.Print(retrieval.FormatSpecs(phone))
			return nil
		},
	}
}

func valueOr(v *string) string {
	if v == nil {
		return retrieval.AbsentMarker
	}
	return *v
}
