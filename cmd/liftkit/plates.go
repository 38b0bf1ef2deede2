package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/liftkit/internal/model"
	"github.com/verte-zerg/liftkit/internal/plates"
	"github.com/verte-zerg/liftkit/internal/report"
)

var inventoryFractional bool

func newSolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <target>",
		Short: "Show which plates to load for a target weight",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolveCmd,
	}
}

func runSolveCmd(cmd *cobra.Command, args []string) error {
	target, err := strconv.ParseFloat(args[0], 64)
	if err != nil || !plates.Finite(target) {
		return fmt.Errorf("invalid target %q: %w", args[0], plates.ErrInvalidWeight)
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	inv, done, err := openInventory(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()

	res, err := plates.Solve(inv.Request(target, cfg.Bar))
	switch {
	case errors.Is(err, plates.ErrBelowMinimum):
		return fmt.Errorf("target %s is below the bar weight %s: %w", plates.FormatWeight(target), plates.FormatWeight(cfg.Bar), err)
	case errors.Is(err, plates.ErrExceedsAvailable):
		return fmt.Errorf("target %s exceeds the heaviest loadable %s: %w", plates.FormatWeight(target), plates.FormatWeight(inv.MaxTotal(cfg.Bar)), err)
	case err != nil:
		return err
	}
	inv.SetTarget(cmd.Context(), target)
	return report.RenderSolve(cmd.OutOrStdout(), target, cfg.Bar, res, report.TerminalWidth())
}

func newInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Show plate inventory",
		Args:  cobra.NoArgs,
		RunE:  runInventoryCmd,
	}

	setCmd := &cobra.Command{
		Use:   "set <weight> <count>",
		Short: "Set how many plates of a weight you own",
		Args:  cobra.ExactArgs(2),
		RunE:  runInventorySetCmd,
	}
	setCmd.Flags().BoolVar(&inventoryFractional, "fractional", false, "edit the fractional plate set")

	cmd.AddCommand(setCmd)
	cmd.AddCommand(&cobra.Command{
		Use:       "fractional on|off",
		Short:     "Include fractional plates in solves",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE:      runInventoryFractionalCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default inventory",
		Args:  cobra.NoArgs,
		RunE:  runInventoryResetCmd,
	})
	return cmd
}

func openInventory(cmd *cobra.Command, cfg model.Config) (*plates.InventoryStore, func(), error) {
	st, done, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	inv := plates.NewInventoryStore(st, setupLogger(cmd.ErrOrStderr(), cfg.LogLevel))
	if err := inv.Load(cmd.Context()); err != nil {
		done()
		return nil, nil, err
	}
	return inv, done, nil
}

func inventoryRows(inv *plates.InventoryStore) []model.InventoryRow {
	var rows []model.InventoryRow
	for _, kind := range []plates.Kind{plates.Standard, plates.Fractional} {
		for _, weight := range plates.Denominations(kind) {
			rows = append(rows, model.InventoryRow{
				Weight:     weight,
				Count:      inv.Get(kind, weight),
				Fractional: kind == plates.Fractional,
			})
		}
	}
	return rows
}

func runInventoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	inv, done, err := openInventory(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()
	return report.RenderInventory(cmd.OutOrStdout(), inventoryRows(inv), inv.Fractional())
}

func runInventorySetCmd(cmd *cobra.Command, args []string) error {
	weight, err := plates.ParseWeight(args[0])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid count %q", args[1])
	}
	kind := plates.Standard
	if inventoryFractional {
		kind = plates.Fractional
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	inv, done, err := openInventory(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()
	if err := inv.Set(cmd.Context(), kind, weight, count); err != nil {
		return err
	}
	return report.RenderInventory(cmd.OutOrStdout(), inventoryRows(inv), inv.Fractional())
}

func runInventoryFractionalCmd(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	inv, done, err := openInventory(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()
	inv.SetFractional(cmd.Context(), on)
	return report.RenderInventory(cmd.OutOrStdout(), inventoryRows(inv), inv.Fractional())
}

func runInventoryResetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	inv, done, err := openInventory(cmd, cfg)
	if err != nil {
		return err
	}
	defer done()
	inv.ClearAll(cmd.Context())
	return report.RenderInventory(cmd.OutOrStdout(), inventoryRows(inv), inv.Fractional())
}
