package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
)

func newSweepCmd(app *appContext) *cobra.Command {
	var (
		flags   = &contractFlags{}
		points  int
		low     float64
		high    float64
		csvPath string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate prices and call Greeks across a range of spot prices",
		Example: `  pricing sweep --spot 100 --strike 100 --maturity 0.25
  pricing sweep --spot 100 --strike 100 --maturity 0.25 --method mc --seed 1 --csv curve.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.command(cmd)
			if err != nil {
				return err
			}
			res, err := app.svc.Sweep(cmd.Context(), application.SweepCommand{
				PriceOptionCommand: req,
				Points:             points,
				Low:                low,
				High:               high,
			})
			if err != nil {
				return err
			}
			for _, warning := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}

			switch csvPath {
			case "":
				renderSweep(cmd.OutOrStdout(), res.Points)
				return nil
			case "-":
				return gocsv.Marshal(&res.Points, cmd.OutOrStdout())
			}
			file, err := os.Create(csvPath)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := gocsv.MarshalFile(&res.Points, file); err != nil {
				return fmt.Errorf("write %s: %w", csvPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d points to %s\n", len(res.Points), csvPath)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&points, "points", 0, "number of spot points (default from config)")
	cmd.Flags().Float64Var(&low, "low", 0, "lowest spot as a multiple of --spot (default from config)")
	cmd.Flags().Float64Var(&high, "high", 0, "highest spot as a multiple of --spot (default from config)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the curve as CSV to this file, - for stdout")
	cmd.MarkFlagRequired("strike")
	return cmd
}

func renderSweep(w io.Writer, points []application.SweepPoint) {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Spot", "Call", "Put", "Delta", "Gamma", "Theta", "Vega", "Rho"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, p := range points {
		table.Append([]string{f(p.Spot), f(p.CallPrice), f(p.PutPrice), f(p.Delta), f(p.Gamma), f(p.Theta), f(p.Vega), f(p.Rho)})
	}
	table.Render()
}
