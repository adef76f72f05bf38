package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apivaluation "fcf_valuation/pkg/api/valuation"
	"fcf_valuation/pkg/app"
	"fcf_valuation/pkg/core/assumption"
	"fcf_valuation/pkg/core/config"
	"fcf_valuation/pkg/core/logging"
	"fcf_valuation/pkg/core/tickers"
	"fcf_valuation/pkg/core/valuation"
)

var rootCmd = &cobra.Command{
	Use:   "dcf",
	Short: "Two-stage free cash flow valuation",
	Long: `dcf estimates the intrinsic value per share of listed companies.

Historical free cash flow (operating cash flow + capital expenditure) sets the
growth rate of the first stage; the second stage grows at a faded rate; a
Gordon Growth terminal value closes the horizon. Rates are decimals (0.10 = 10%).`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	rootCmd.AddCommand(valueCmd())
	rootCmd.AddCommand(batchCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("DCF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("statements", "", "offline statements JSON file instead of live data")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("statements", rootCmd.PersistentFlags().Lookup("statements"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func addAssumptionFlags(cmd *cobra.Command) {
	d := assumption.Defaults()
	cmd.Flags().Int("years", d.Horizon, "projection horizon in years")
	cmd.Flags().Int("split", d.StageSplit, "years at the initial growth rate")
	cmd.Flags().Float64("discount-rate", d.DiscountRate, "discount rate")
	cmd.Flags().Float64("terminal-growth", d.TerminalGrowth, "terminal growth rate")
	cmd.Flags().Float64("fade", d.FadeFactor, "reduced rate = initial rate x fade")
	cmd.Flags().Float64("initial-growth", 0, "override the historical growth rate")
	cmd.Flags().Float64("reduced-growth", 0, "override the faded growth rate")
}

// assumptionsFromFlags overlays only the flags the user actually set on the configured defaults.
func assumptionsFromFlags(cmd *cobra.Command, defaults assumption.Set) (assumption.Set, error) {
	set := defaults
	f := cmd.Flags()
	var err error
	if f.Changed("years") {
		if set.Horizon, err = f.GetInt("years"); err != nil {
			return set, err
		}
		if !f.Changed("split") && set.StageSplit > set.Horizon {
			set.StageSplit = set.Horizon
		}
	}
	if f.Changed("split") {
		if set.StageSplit, err = f.GetInt("split"); err != nil {
			return set, err
		}
	}
	if f.Changed("discount-rate") {
		if set.DiscountRate, err = f.GetFloat64("discount-rate"); err != nil {
			return set, err
		}
	}
	if f.Changed("terminal-growth") {
		if set.TerminalGrowth, err = f.GetFloat64("terminal-growth"); err != nil {
			return set, err
		}
	}
	if f.Changed("fade") {
		if set.FadeFactor, err = f.GetFloat64("fade"); err != nil {
			return set, err
		}
	}
	if f.Changed("initial-growth") {
		g, err := f.GetFloat64("initial-growth")
		if err != nil {
			return set, err
		}
		set = set.WithInitialGrowth(g)
	}
	if f.Changed("reduced-growth") {
		g, err := f.GetFloat64("reduced-growth")
		if err != nil {
			return set, err
		}
		set = set.WithReducedGrowth(g)
	}
	return set, set.Validate()
}

// withStack loads config, applies CLI overrides and builds the service.
func withStack(ctx context.Context, fn func(ctx context.Context, cfg config.Config, stack *app.Stack) error) error {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}
	if s := viper.GetString("statements"); s != "" {
		cfg.MarketData.Statements = s
	}
	logger := logging.Setup(cliLogLevel(cfg.Log.Level, viper.GetString("log-level")), true)

	stack, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()
	return fn(ctx, cfg, stack)
}

// cliLogLevel prefers the flag, then the configured level. With neither set the
// CLI logs warnings only so tables stay readable.
func cliLogLevel(configured, flagLevel string) string {
	if flagLevel != "" {
		return flagLevel
	}
	if configured != "" {
		return configured
	}
	return "warn"
}

func valueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value TICKER",
		Short: "Value one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(cmd.Context(), func(ctx context.Context, cfg config.Config, stack *app.Stack) error {
				set, err := assumptionsFromFlags(cmd, cfg.Defaults)
				if err != nil {
					return err
				}
				report, err := stack.Service.Value(ctx, args[0], set)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(apivaluation.NewValuationResponse(report))
				}
				printReport(report)
				return nil
			})
		},
	}
	addAssumptionFlags(cmd)
	return cmd
}

func batchCmd() *cobra.Command {
	var suffix string
	cmd := &cobra.Command{
		Use:   "batch FILE.csv",
		Short: "Value every ticker listed in a CSV file (symbol or ticker column)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(cmd.Context(), func(ctx context.Context, cfg config.Config, stack *app.Stack) error {
				set, err := assumptionsFromFlags(cmd, cfg.Defaults)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("suffix") {
					suffix = cfg.Batch.Suffix
				}
				entries, err := tickers.ReadFile(args[0], suffix)
				if err != nil {
					return err
				}
				items := stack.Service.ValueMany(ctx, tickers.Symbols(entries), set)
				if viper.GetBool("json") {
					return printJSON(batchJSON(items))
				}
				printBatch(entries, items)
				return nil
			})
		},
	}
	addAssumptionFlags(cmd)
	cmd.Flags().StringVar(&suffix, "suffix", "", "exchange suffix for bare symbols, e.g. .BO")
	return cmd
}

type batchItemJSON struct {
	Ticker string                          `json:"ticker"`
	Report *apivaluation.ValuationResponse `json:"report,omitempty"`
	Error  string                          `json:"error,omitempty"`
}

func batchJSON(items []valuation.BatchItem) []batchItemJSON {
	out := make([]batchItemJSON, len(items))
	for i, item := range items {
		out[i] = batchItemJSON{Ticker: item.Ticker}
		if item.Err != nil {
			out[i].Error = item.Err.Error()
			continue
		}
		r := apivaluation.NewValuationResponse(item.Report)
		out[i].Report = &r
	}
	return out
}

func printReport(r *valuation.Report) {
	res := r.Result
	name := r.Ticker
	if r.Profile.CompanyName != "" {
		name = fmt.Sprintf("%s (%s)", r.Profile.CompanyName, r.Ticker)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetTitle(name)
	tw.AppendRows([]table.Row{
		{"Historical CAGR", fmt.Sprintf("%s over %d years", pct(res.HistoricalCAGR()), res.HistoricalWindow().Years)},
		{"Initial growth", fmt.Sprintf("%s (%s)", pct(res.InitialGrowthUsed()), res.Growth().InitialSource)},
		{"Reduced growth", fmt.Sprintf("%s (%s)", pct(res.ReducedGrowthUsed()), res.Growth().ReducedSource)},
		{"Discount / terminal", fmt.Sprintf("%s / %s", pct(res.Assumptions().DiscountRate), pct(res.Assumptions().TerminalGrowth))},
		{"Last free cash flow", money(res.LastKnownCashFlow())},
	})
	tw.AppendSeparator()
	tw.AppendRows([]table.Row{
		{"PV of explicit cash flows", money(res.SumDiscountedCashFlows())},
		{"Terminal value", money(res.TerminalValue())},
		{"PV of terminal value", money(res.DiscountedTerminalValue())},
		{"Intrinsic value", money(res.IntrinsicValueTotal())},
		{"Shares outstanding", res.SharesOutstanding()},
		{"Intrinsic value / share", fmt.Sprintf("%.2f", res.IntrinsicValuePerShare())},
	})
	tw.AppendSeparator()
	price := "N/A"
	if r.Price.Available {
		price = fmt.Sprintf("%.2f", r.Price.Value)
	}
	upside := "N/A"
	if r.Upside != nil {
		upside = pct(*r.Upside)
	}
	tw.AppendRows([]table.Row{{"Current price", price}, {"Upside", upside}})
	if c := r.CostOfCapital; c != nil {
		tw.AppendRow(table.Row{"Reference WACC (CAPM)", fmt.Sprintf("%s (beta %.2f)", pct(c.WACC), c.Beta)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	tw.Render()

	pt := table.NewWriter()
	pt.SetOutputMirror(os.Stdout)
	pt.AppendHeader(table.Row{"Year", "Stage", "Growth", "FCF", "PV"})
	discounted := res.DiscountedCashFlows()
	for i, y := range res.ProjectedYears() {
		pt.AppendRow(table.Row{y.Year, y.Stage, pct(y.Rate), money(y.Value), money(discounted[i])})
	}
	pt.Render()
}

func printBatch(entries []tickers.Entry, items []valuation.BatchItem) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.AppendHeader(table.Row{"Ticker", "Name", "Value / share", "Price", "Upside", "Error"})
	for i, item := range items {
		name := ""
		if i < len(entries) {
			name = entries[i].Name
		}
		if item.Err != nil {
			tw.AppendRow(table.Row{item.Ticker, name, "", "", "", item.Err.Error()})
			continue
		}
		r := item.Report
		if name == "" {
			name = r.Profile.CompanyName
		}
		price, upside := "N/A", "N/A"
		if r.Price.Available {
			price = fmt.Sprintf("%.2f", r.Price.Value)
		}
		if r.Upside != nil {
			upside = pct(*r.Upside)
		}
		tw.AppendRow(table.Row{r.Ticker, name, fmt.Sprintf("%.2f", r.Result.IntrinsicValuePerShare()), price, upside, ""})
	}
	tw.Render()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pct(v float64) string { return fmt.Sprintf("%.2f%%", v*100) }

func money(v float64) string { return fmt.Sprintf("%.2f", v) }
