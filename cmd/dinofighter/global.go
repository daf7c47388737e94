package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dinofightergenesis/dinofighterg/internal/notifier"
)

func globalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Inspect and operate the global burn ledger",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print global burn statistics",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := openCore(nil, nil)
				if err != nil {
					return err
				}
				defer c.Close()
				g, err := c.sessions.GlobalBurn(commandContext(cmd))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), notifier.FormatBurnStats(&g))
				return nil
			},
		},
		&cobra.Command{
			Use:   "credit AMOUNT",
			Short: "Add AMOUNT to the global ready-to-burn pool",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				amount, err := decimal.NewFromString(args[0])
				if err != nil {
					return fmt.Errorf("parse amount: %w", err)
				}
				c, err := openCore(nil, nil)
				if err != nil {
					return err
				}
				defer c.Close()
				g, err := c.sessions.CreditGlobal(commandContext(cmd), amount)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), notifier.FormatBurnStats(&g))
				return nil
			},
		},
		&cobra.Command{
			Use:   "burn",
			Short: "Burn everything in the global ready-to-burn pool",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := openCore(nil, nil)
				if err != nil {
					return err
				}
				defer c.Close()
				burnt, err := c.sessions.BurnGlobal(commandContext(cmd), "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "burnt %s\n", burnt.String())
				return nil
			},
		},
	)
	return cmd
}
