package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"weekly-planner/internal/app"
	"weekly-planner/internal/fuel"
)

func newFuelCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuel",
		Short: "Fuel cost calculators",
	}
	cmd.AddCommand(newCompareCmd(c), newTripCmd(c), newEconomyCmd(c))
	return cmd
}

func newCompareCmd(c *cli) *cobra.Command {
	var distance string
	var quotes []string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the cost per km of several fuels",
		Example: `  weekly-planner fuel compare --distance 100 \
    --quote gasolina=5,79@12 --quote etanol=3,59@8,5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := fuel.CompareInput{Distance: fuel.ParseNumber(distance)}
			for _, q := range quotes {
				quote, err := parseQuote(q)
				if err != nil {
					return err
				}
				in.Quotes = append(in.Quotes, quote)
			}
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), a.CompareFuels(cmd.Context(), c.user, in))
			return nil
		},
	}
	cmd.Flags().StringVar(&distance, "distance", "0", "distance in km")
	cmd.Flags().StringArrayVar(&quotes, "quote", nil, "fuel=price@km-per-liter, repeatable")
	cmd.MarkFlagRequired("quote")
	return cmd
}

// parseQuote reads "gasolina=5,79@12".
func parseQuote(s string) (fuel.Quote, error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok {
		return fuel.Quote{}, fmt.Errorf("invalid quote %q: want fuel=price@consumption", s)
	}
	t, err := fuel.ParseType(name)
	if err != nil {
		return fuel.Quote{}, err
	}
	price, consumption, ok := strings.Cut(rest, "@")
	if !ok {
		return fuel.Quote{}, fmt.Errorf("invalid quote %q: want fuel=price@consumption", s)
	}
	return fuel.Quote{Fuel: t, Price: fuel.ParseCurrency(price), Consumption: fuel.ParseNumber(consumption)}, nil
}

func newTripCmd(c *cli) *cobra.Command {
	var distance, consumption, price, fuelName string
	var roundTrip bool
	var passengers int
	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Compute the fuel cost of a trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := fuel.ParseType(fuelName)
			if err != nil {
				return err
			}
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			trip := a.Trip(cmd.Context(), c.user, t, fuel.TripInput{
				Distance:    fuel.ParseNumber(distance),
				Consumption: fuel.ParseNumber(consumption),
				Price:       fuel.ParseCurrency(price),
				RoundTrip:   roundTrip,
				Passengers:  passengers,
			})
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Distância: %s km\n", fuel.FormatNumber(trip.Distance, 1))
			fmt.Fprintf(w, "Litros: %s\n", fuel.FormatNumber(trip.Liters, 2))
			fmt.Fprintf(w, "Custo: %s\n", fuel.FormatCurrency(trip.Cost))
			fmt.Fprintf(w, "Por pessoa: %s\n", fuel.FormatCurrency(trip.CostPerPassenger))
			return nil
		},
	}
	cmd.Flags().StringVar(&distance, "distance", "0", "one-way distance in km")
	cmd.Flags().StringVar(&consumption, "consumption", "0", "km per liter")
	cmd.Flags().StringVar(&price, "price", "0", "price per liter")
	cmd.Flags().StringVar(&fuelName, "fuel", string(fuel.Gasoline), "fuel type")
	cmd.Flags().BoolVar(&roundTrip, "round-trip", false, "double the distance")
	cmd.Flags().IntVar(&passengers, "passengers", 1, "people sharing the cost")
	return cmd
}

func newEconomyCmd(c *cli) *cobra.Command {
	var distance, liters, price string
	cmd := &cobra.Command{
		Use:   "economy",
		Short: "Compute consumption from a measured tank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			e := a.Economy(cmd.Context(), c.user, fuel.EconomyInput{
				Distance: fuel.ParseNumber(distance),
				Liters:   fuel.ParseNumber(liters),
				Price:    fuel.ParseCurrency(price),
			})
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Consumo: %s km/l\n", fuel.FormatNumber(e.Consumption, 2))
			fmt.Fprintf(w, "Custo por km: %s\n", fuel.FormatCurrency(e.CostPerKm))
			fmt.Fprintf(w, "Custo total: %s\n", fuel.FormatCurrency(e.TotalCost))
			return nil
		},
	}
	cmd.Flags().StringVar(&distance, "distance", "0", "distance driven in km")
	cmd.Flags().StringVar(&liters, "liters", "0", "liters refueled")
	cmd.Flags().StringVar(&price, "price", "0", "price per liter")
	return cmd
}

func printComparison(w io.Writer, cmp fuel.Comparison) {
	for _, o := range cmp.Options {
		if !o.Valid {
			fmt.Fprintf(w, "%-10s dados incompletos\n", o.Label)
			continue
		}
		fmt.Fprintf(w, "%-10s %s/km  %s\n", o.Label, fuel.FormatCurrency(o.CostPerKm), fuel.FormatCurrency(o.TripCost))
	}
	if cmp.Best == "" {
		fmt.Fprintln(w, "Nenhuma opção válida")
		return
	}
	fmt.Fprintf(w, "Melhor opção: %s (%s)\n", cmp.BestLabel, fuel.FormatCurrency(cmp.BestCost))
	if cmp.Savings > 0 {
		fmt.Fprintf(w, "Economia: %s\n", fuel.FormatCurrency(cmp.Savings))
	}
	if cmp.Advice != "" {
		fmt.Fprintln(w, cmp.Advice)
	}
}

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the calculation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			h := a.History(cmd.Context(), c.user)
			w := cmd.OutOrStdout()
			if len(h) == 0 {
				fmt.Fprintln(w, "Nenhum cálculo realizado ainda")
				return nil
			}
			for _, e := range h {
				fmt.Fprintf(w, "%s %s  %-11s %-24s %-10s %s  [%s]\n",
					e.Date, e.Time, e.Type.Label(), e.Details(), e.BestOption, fuel.FormatCurrency(e.Cost), e.ID)
			}
			return nil
		},
	}
	cmd.AddCommand(newHistoryExportCmd(c), newHistoryImportCmd(c), newHistoryClearCmd(c), newHistoryRemoveCmd(c))
	return cmd
}

func newHistoryExportCmd(c *cli) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the history as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := app.ExportFormat(strings.ToLower(format))
			if f != app.FormatCSV && f != app.FormatXLSX {
				return fmt.Errorf("unknown format %q", format)
			}
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			counter := &countingWriter{w: w}
			if err := a.ExportHistory(cmd.Context(), c.user, f, counter); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s to %s\n", humanize.Bytes(uint64(counter.n)), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(app.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func newHistoryImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a CSV history export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			n, err := a.ImportHistory(cmd.Context(), c.user, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries\n", n)
			return nil
		},
	}
}

func newHistoryClearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			a.ClearHistory(cmd.Context(), c.user)
			return nil
		},
	}
}

func newHistoryRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			a.RemoveHistoryEntry(cmd.Context(), c.user, args[0])
			return nil
		},
	}
}

func newMetricsCleanupCmd(c *cli) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old operation metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app(cmd.Context()); err != nil {
				return err
			}
			affected, err := c.services.Metrics.Cleanup(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully removed %d old metric records.\n", affected)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "keep records for the last N days")
	return cmd
}
