package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"weekly-planner/internal/app"
	"weekly-planner/internal/meal"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/shopping"
)

func newPlanCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the plan of the week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			view, err := a.Plan(cmd.Context(), c.user)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newNewWeekCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "new-week",
		Short: "Draw a new plan for next week, keeping the protein filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			view, err := a.NewWeek(cmd.Context(), c.user)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newSwapCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "swap <meal-type> <day 1-7>",
		Short: "Replace one meal with another eligible option",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, day, err := parseSlot(args[0], args[1])
			if err != nil {
				return err
			}
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			view, err := a.Swap(cmd.Context(), c.user, t, day)
			if errors.Is(err, planner.ErrNoEligibleOption) {
				printWarnings(cmd.ErrOrStderr(), view.Warnings)
				return nil
			}
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newAssignCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <meal-type> <day 1-7> <meal name>",
		Short: "Put a named option into a slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, day, err := parseSlot(args[0], args[1])
			if err != nil {
				return err
			}
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			view, err := a.Assign(cmd.Context(), c.user, t, day, args[2])
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newProteinCmd(c *cli) *cobra.Command {
	var on, off bool
	cmd := &cobra.Command{
		Use:   "protein <tag>",
		Short: "Toggle a protein in the filter",
		Long:  "Toggles a protein tag in the filter. Use --on or --off to set it explicitly. The plan is revalidated against the new filter.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			var view app.PlanView
			switch {
			case on:
				view, err = a.SetProtein(cmd.Context(), c.user, args[0], true)
			case off:
				view, err = a.SetProtein(cmd.Context(), c.user, args[0], false)
			default:
				view, err = a.ToggleProtein(cmd.Context(), c.user, args[0])
			}
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), view)
			return nil
		},
	}
	cmd.Flags().BoolVar(&on, "on", false, "enable the protein")
	cmd.Flags().BoolVar(&off, "off", false, "disable the protein")
	cmd.MarkFlagsMutuallyExclusive("on", "off")
	return cmd
}

func newShoppingListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shopping-list",
		Short: "Print the shopping list of the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			list, err := a.ShoppingList(cmd.Context(), c.user)
			if err != nil {
				return err
			}
			printShoppingList(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <page.html>",
		Short: "Restore the plan displayed on a saved planner page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer f.Close()

			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			view, err := a.SeedFromHTML(cmd.Context(), c.user, f)
			if err != nil {
				return err
			}
			printPlan(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newPublishCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Publish the plan and shopping list to Ghost as a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			post, err := a.Publish(cmd.Context(), c.user)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft created: %s (%s)\n", post.Title, post.ID)
			return nil
		},
	}
}

// parseSlot reads a meal type and a 1-based day.
func parseSlot(mealType, day string) (meal.Type, int, error) {
	t, err := meal.ParseType(mealType)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.Atoi(day)
	if err != nil || n < 1 || n > meal.DaysPerWeek {
		return "", 0, fmt.Errorf("%w: %q (use 1-%d)", planner.ErrInvalidDay, day, meal.DaysPerWeek)
	}
	return t, n - 1, nil
}

func printPlan(w io.Writer, view app.PlanView) {
	fmt.Fprintf(w, "Semana de %s\n", view.WeekStart)
	for _, t := range meal.Types {
		fmt.Fprintf(w, "\n%s\n", t.Label())
		for _, d := range view.Days {
			if d.MealType != t {
				continue
			}
			name := d.Meal
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "  %-8s %s\n", d.DayName, name)
		}
	}
	fmt.Fprintf(w, "\nProteínas Desejadas: %s\n", view.ProteinSummary)
	printWarnings(w, view.Warnings)
}

func printWarnings(w io.Writer, warnings []planner.Warning) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "! %s\n", warn.Message)
	}
}

func printShoppingList(w io.Writer, list shopping.List) {
	for _, s := range list.Sections {
		fmt.Fprintf(w, "%s\n", s.Label)
		if len(s.Lines) == 0 {
			fmt.Fprintln(w, "  -")
		}
		for _, ln := range s.Lines {
			fmt.Fprintf(w, "  %s: %s\n", ln.Name, ln.String())
		}
	}
}
