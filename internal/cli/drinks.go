package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baely/caffeine/internal/catalog"
)

func newDrinksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drinks",
		Short: "List the drink catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			custom, err := db.ListDrinks(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range catalog.Merge(custom) {
				kind := ""
				if d.Custom {
					kind = " (custom)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s %6.0f mg/100ml  %4.0f mg per %dml%s\n",
					d.Name, d.MgPer100Ml, d.Dose(catalog.DefaultVolumeMl), catalog.DefaultVolumeMl, kind)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <mg-per-100ml>",
		Short: "Add a custom drink",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			per100, err := strconv.ParseFloat(args[len(args)-1], 64)
			if err != nil {
				return fmt.Errorf("caffeine per 100ml must be a number: %w", err)
			}
			drink := catalog.Drink{
				Name:       strings.Join(args[:len(args)-1], " "),
				MgPer100Ml: per100,
				Custom:     true,
			}

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.AddDrink(cmd.Context(), drink); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%v mg/100ml)\n", drink.Name, drink.MgPer100Ml)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a custom drink",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")

			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteDrink(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
			return nil
		},
	})

	return cmd
}
