package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/everytech/poptracker/services/tracker-service/internal/domain/catalog"
	"github.com/everytech/poptracker/services/tracker-service/internal/utils"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalog",
		Short:         "PopTracker marketplace catalog",
		Long:          "Справочник стран и площадок PopTracker с адресами магазинов для каждой страны.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "Print JSON instead of a table")

	root.AddCommand(newCountriesCmd(), newMarketplacesCmd(), newURLCmd())
	return root
}

func newCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			countries := catalog.SupportedCountries()
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), countries)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tCOUNTRY\tCURRENCY")
			for _, c := range countries {
				fmt.Fprintf(w, "%s\t%s %s\t%s\n", c.Code, c.Flag, c.DisplayName, c.Currency)
			}
			return w.Flush()
		},
	}
}

func newMarketplacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketplaces",
		Short: "List marketplaces available in a country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			country, _ := cmd.Flags().GetString("country")
			marketplaces := catalog.MarketplacesForCountry(country)

			type row struct {
				ID          string `json:"id"`
				DisplayName string `json:"display_name"`
				URL         string `json:"url"`
			}
			rows := make([]row, 0, len(marketplaces))
			for _, m := range marketplaces {
				rows = append(rows, row{ID: m.ID, DisplayName: m.DisplayName, URL: catalog.CountrySpecificURL(m, country)})
			}

			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Нет площадок для страны %q\n", country)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tURL")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.DisplayName, r.URL)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("country", "sg", "Country code (sg, my, ph, us)")
	return cmd
}

func newURLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url [marketplace]",
		Short: "Print the storefront URL of a marketplace for a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			country, _ := cmd.Flags().GetString("country")

			m, ok := catalog.MarketplaceByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", utils.ErrMarketplaceNotFound, args[0])
			}

			url := catalog.CountrySpecificURL(m, strings.ToLower(country))
			if asJSON(cmd) {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"marketplace": m.ID, "country": country, "url": url})
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().String("country", "sg", "Country code (sg, my, ph, us)")
	return cmd
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
