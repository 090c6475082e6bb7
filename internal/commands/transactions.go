package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/app"
	"budget/internal/core"
)

const dateLayout = "2006-01-02"

var errTarget = errors.New("give a transaction id or --index, not both")

func newAddCommand(rt Runtime) *cobra.Command {
	var name, amount, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction (positive amount = gain, negative = expense)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only an omitted flag defaults; an explicit empty date is rejected.
			if !cmd.Flags().Changed("date") {
				date = time.Now().Format(dateLayout)
			}
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				res, err := ctrl.Submit(cmd.Context(), app.FormInput{Name: name, Amount: amount, Date: date})
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", res.Transaction.Label(),
					core.FormatAmount(res.Transaction.Amount), res.Transaction.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "transaction name (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "signed amount, e.g. 1500 or -800 (required)")
	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (today when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newListCommand(rt Runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in entry order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				txs := ctrl.Transactions()
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), txs)
				}
				return printTransactions(cmd.OutOrStdout(), txs)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newEditCommand(rt Runtime) *cobra.Command {
	var index int
	var name, amount, date string

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a transaction in place",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				var form app.FormInput
				var err error
				switch {
				case len(args) == 1 && index < 0:
					form, err = ctrl.Edit(args[0])
				case len(args) == 0 && index >= 0:
					form, err = ctrl.EditAt(index)
				default:
					return errTarget
				}
				if err != nil {
					return userError(err)
				}

				if cmd.Flags().Changed("name") {
					form.Name = name
				}
				if cmd.Flags().Changed("amount") {
					form.Amount = amount
				}
				if cmd.Flags().Changed("date") {
					form.Date = date
				}

				res, err := ctrl.Submit(cmd.Context(), form)
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", res.Transaction.Label(), core.FormatAmount(res.Transaction.Amount))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&index, "index", -1, "position as shown by list")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&date, "date", "", "new date")
	return cmd
}

func newDeleteCommand(rt Runtime) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Remove a transaction",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				var view app.View
				var err error
				switch {
				case len(args) == 1 && index < 0:
					view, err = ctrl.Delete(cmd.Context(), args[0])
				case len(args) == 0 && index >= 0:
					view, err = ctrl.DeleteAt(cmd.Context(), index)
				default:
					return errTarget
				}
				if err != nil {
					return userError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted. %d transaction(s) left, net %s\n", view.Count, view.Summary.Net)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&index, "index", -1, "position as shown by list")
	return cmd
}

func newSummaryCommand(rt Runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show total gains, expenses and net",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				d := ctrl.Summary().Display()
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), d)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Gains\t%s\n", d.Gains)
				fmt.Fprintf(tw, "Expenses\t%s\n", d.Expenses)
				fmt.Fprintf(tw, "Net\t%s\n", d.Net)
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCommand(rt Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Copy all transactions to the configured spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, err := rt.Exporter(cmd.Context())
			if err != nil {
				return err
			}
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				txs := ctrl.Transactions()
				if err := exporter.Export(cmd.Context(), txs); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transaction(s)\n", len(txs))
				return nil
			})
		},
	}
}

func newRecoveredCommand(rt Runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recovered",
		Short: "List copies of saved data that could not be read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd.Context(), rt, func(ctrl *app.Controller) error {
				keys, err := ctrl.Quarantined(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					if keys == nil {
						keys = []string{}
					}
					return writeJSON(cmd.OutOrStdout(), keys)
				}
				if len(keys) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recovered data.")
					return nil
				}
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print keys as JSON")
	return cmd
}

func printTransactions(w io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No transactions yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tAMOUNT\tDATE\tID")
	for i, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i, t.Name, core.FormatAmount(t.Amount), t.Date, t.ID)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError replaces validation failures with the alert text shown in the UI.
func userError(err error) error {
	var ve *app.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("%s (%s)", ve.Message(), strings.TrimSpace(ve.Field))
	}
	return err
}
