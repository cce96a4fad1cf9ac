package main

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
)

// contractFlags quote 与 sweep 共用的合约参数
type contractFlags struct {
	symbol     string
	optionType string
	method     string
	exercise   string
	spot       float64
	strike     float64
	expiry     string
	maturity   float64
	rate       float64
	volatility float64
	steps      int
	paths      int
	seed       int64
}

func (f *contractFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.symbol, "symbol", "", "underlying symbol, used to fetch the spot when --spot is omitted")
	fs.StringVar(&f.optionType, "type", "", "call or put (default both)")
	fs.StringVarP(&f.method, "method", "m", "", "black_scholes, binomial or monte_carlo (default from config)")
	fs.StringVar(&f.exercise, "exercise", "european", "european or american")
	fs.Float64Var(&f.spot, "spot", 0, "spot price of the underlying")
	fs.Float64VarP(&f.strike, "strike", "k", 0, "strike price")
	fs.StringVar(&f.expiry, "expiry", "", "expiry date, YYYY-MM-DD")
	fs.Float64VarP(&f.maturity, "maturity", "t", 0, "time to maturity in years, overrides --expiry")
	fs.Float64VarP(&f.rate, "rate", "r", 0.05, "continuously compounded risk-free rate")
	fs.Float64Var(&f.volatility, "volatility", 0.2, "annualized volatility")
	fs.IntVar(&f.steps, "steps", 0, "binomial lattice steps (default from config)")
	fs.IntVar(&f.paths, "paths", 0, "Monte Carlo paths (default from config)")
	fs.Int64Var(&f.seed, "seed", 0, "Monte Carlo seed for reproducible runs")
}

func (f *contractFlags) command(cmd *cobra.Command) (application.PriceOptionCommand, error) {
	out := application.PriceOptionCommand{
		Symbol:        f.symbol,
		OptionType:    f.optionType,
		Method:        f.method,
		ExerciseStyle: f.exercise,
		Spot:          f.spot,
		Strike:        f.strike,
		Maturity:      f.maturity,
		Steps:         f.steps,
		Paths:         f.paths,
	}
	if f.expiry != "" {
		expiry, err := time.ParseInLocation(time.DateOnly, f.expiry, time.Local)
		if err != nil {
			return out, fmt.Errorf("invalid --expiry %q: %w", f.expiry, err)
		}
		out.Expiry = expiry
	}
	// 未显式给出时交给配置默认值
	if cmd.Flags().Changed("rate") {
		out.RiskFreeRate = &f.rate
	}
	if cmd.Flags().Changed("volatility") {
		out.Volatility = &f.volatility
	}
	if cmd.Flags().Changed("seed") {
		out.Seed = &f.seed
	}
	return out, nil
}

func newQuoteCmd(app *appContext) *cobra.Command {
	flags := &contractFlags{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a call and a put and print their Greeks",
		Example: `  pricing quote --spot 100 --strike 100 --maturity 1
  pricing quote --spot 36 --strike 40 -t 1 -r 0.06 --method binomial --exercise american --type put`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.command(cmd)
			if err != nil {
				return err
			}
			res, err := app.svc.Quote(cmd.Context(), req)
			if err != nil {
				return err
			}
			renderQuote(cmd.OutOrStdout(), res)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.MarkFlagRequired("strike")
	return cmd
}

// renderQuote 以表格输出价格与 Greeks，每列一个期权
func renderQuote(w io.Writer, res *application.QuoteResult) {
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	fmt.Fprintf(w, "%s %s  S=%s K=%s T=%s r=%s sigma=%s\n",
		res.Method, res.ExerciseStyle, res.Spot, res.Strike, res.Maturity, res.RiskFreeRate, res.Volatility)

	header := []string{"Greek"}
	rows := [][]string{{"Price"}, {"Delta"}, {"Gamma"}, {"Theta"}, {"Vega"}, {"Rho"}}
	hasStdErr := false
	for _, q := range res.Quotes {
		header = append(header, q.OptionType)
		for i, v := range []string{
			q.Price.StringFixed(4),
			q.Delta.StringFixed(4),
			q.Gamma.StringFixed(4),
			q.Theta.StringFixed(4),
			q.Vega.StringFixed(4),
			q.Rho.StringFixed(4),
		} {
			rows[i] = append(rows[i], v)
		}
		hasStdErr = hasStdErr || q.StdErr != nil
	}
	if hasStdErr {
		row := []string{"Std. error"}
		for _, q := range res.Quotes {
			if q.StdErr != nil {
				row = append(row, q.StdErr.StringFixed(4))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()
}
