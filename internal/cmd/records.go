package cmd

import (
	"github.com/spf13/cobra"
	"github.com/wolfeidau/cardstore"
)

func newCreateTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create-table",
		Short: "Create the table and its index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.table.CreateTableWithContext(cmd.Context())
		},
	}
}

func recordFlags(cmd *cobra.Command, rec *cardstore.Record) {
	flags := cmd.Flags()
	flags.StringVar(&rec.PackageID, "package-id", "", "Package id")
	flags.StringVar(&rec.BusinessName, "name", "", "Business name")
	flags.StringVar(&rec.Email, "email", "", "Email")
	flags.StringVar(&rec.Address, "address", "", "Address")
	flags.StringVar(&rec.TrackingID, "tracking-id", "", "Tracking id")
}

func newStoreCmd(a *app) *cobra.Command {
	rec := new(cardstore.Record)

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store a record unless one with the same name and received date exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.table.StoreWithContext(cmd.Context(), rec)
			if err != nil {
				return err
			}

			return writeJSON(cmd, map[string]interface{}{"stored": created, "package_id": rec.PackageID})
		},
	}

	recordFlags(cmd, rec)

	flags := cmd.Flags()
	flags.StringVar(&rec.ReceivedDate, "received-date", "", "Date the package was received")
	flags.StringVar(&rec.UserID, "user-id", "", "Owner of the record")
	flags.StringVar(&rec.Telephone, "telephone", "", "Telephone")
	flags.StringVar(&rec.Website, "website", "", "Website")

	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("received-date")

	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	rec := new(cardstore.Record)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the name, email, address and tracking id of a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := a.table.UpdateWithContext(cmd.Context(), rec)
			if err != nil {
				return err
			}

			return writeJSON(cmd, map[string]interface{}{"updated": updated, "package_id": rec.PackageID})
		},
	}

	recordFlags(cmd, rec)

	// every mutable field is written, a missing flag would blank it
	for _, name := range []string{"package-id", "name", "email", "address", "tracking-id"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "delete <package-id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := a.table.DeleteWithContext(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}

			return writeJSON(cmd, map[string]interface{}{"deleted": deleted, "package_id": args[0]})
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "Owner of the record")

	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <package-id>",
		Short: "Get a record by package id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.table.GetWithContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeJSON(cmd, rec)
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <package-id> <name> <email> <address> <tracking-id>",
		Short: "Write a record from positional fields, fewer than five fields does nothing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.table.SeedWithContext(cmd.Context(), args...)
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		userID     string
		filter     string
		page       int
		pageSize   int
		sortByName bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the records owned by a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []cardstore.SearchOption{
				cardstore.SearchWithFilter(filter),
				cardstore.SearchWithPage(page),
				cardstore.SearchWithPageSize(pageSize),
			}
			if sortByName {
				opts = append(opts, cardstore.SearchWithSortByName())
			}

			res, err := a.table.SearchWithContext(cmd.Context(), userID, opts...)
			if err != nil {
				return err
			}

			return writeJSON(cmd, res)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&userID, "user-id", "", "Owner of the records")
	flags.StringVar(&filter, "filter", "", "Text matched against name, email, telephone, website and address")
	flags.IntVar(&page, "page", cardstore.DefaultPage, "Page number")
	flags.IntVar(&pageSize, "page-size", cardstore.DefaultPageSize, "Page size")
	flags.BoolVar(&sortByName, "sort", false, "Sort by business name")

	return cmd
}
