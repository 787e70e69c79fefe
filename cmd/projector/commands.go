package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/domain"
	"github.com/rpgo/policy-projector/internal/output"
	"github.com/rpgo/policy-projector/internal/refdata"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	dataDir  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "projector",
		Short: "Whole life policy and savings projections",
		Long: `projector sizes a whole life policy from a monthly budget or coverage amount and
projects the cash account year by year against inflation, market growth and term costs.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", config.DefaultAppConfig().DataDir,
		"directory holding rates.csv, mortality.csv and market.csv")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newProjectCmd(opts),
		newBracketsCmd(opts),
		newPercentileCmd(opts),
		newExampleCmd(),
		newFormatsCmd(),
		newServeCmd(opts),
	)
	return root
}

func newLogger(w io.Writer, level string) calculation.Logger {
	cfg := config.AppConfig{LogLevel: strings.ToLower(level)}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	return calculation.NewSlogLogger(slog.New(h))
}

// loadReference reads the tables in dir. A directory with none of them yields an empty data
// set so projections still run with unknown rates and mortality.
func loadReference(dir string, logger calculation.Logger) (*domain.ReferenceData, error) {
	loader := refdata.NewLoader(dir)
	loader.SetLogger(logger)
	ref, err := loader.Load()
	if errors.Is(err, refdata.ErrTableNotFound) {
		logger.Warnf("%v", err)
		return &domain.ReferenceData{}, nil
	}
	return ref, err
}

func newProjectCmd(opts *globalOptions) *cobra.Command {
	var format, outputDir string
	cmd := &cobra.Command{
		Use:   "project [assumptions-file]",
		Short: "Run a projection for an assumption file",
		Long: `Loads a YAML assumption file, runs the projection and prints the report. With
--output-dir the report is written to timestamped files instead; --format all writes the
console, row CSV and JSON reports together.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), opts.logLevel)

			in, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}
			ref, err := loadReference(opts.dataDir, logger)
			if err != nil {
				return err
			}

			engine := calculation.NewEngine()
			engine.SetLogger(logger)
			result, err := engine.Project(in.ToAssumptionSet(), ref)
			if err != nil {
				return err
			}

			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
				files, err := output.GenerateReport(result, format, outputDir)
				for _, f := range files {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f)
				}
				return err
			}

			f, err := output.Lookup(format)
			if err != nil {
				return err
			}
			b, err := f.Format(result)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console", "report format; see 'projector formats'")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write report files here instead of stdout")
	return cmd
}

func newBracketsCmd(opts *globalOptions) *cobra.Command {
	var (
		age           int
		sex           string
		monthlyBudget float64
		policySize    float64
	)
	cmd := &cobra.Command{
		Use:   "brackets",
		Short: "Show the rate brackets for an age and sex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := domain.ParseSex(sex)
			if !s.Valid() {
				return fmt.Errorf("sex must be male or female, got %q", sex)
			}
			ref, err := loadReference(opts.dataDir, newLogger(cmd.ErrOrStderr(), opts.logLevel))
			if err != nil {
				return err
			}
			brackets, ok := calculation.ResolveBrackets(ref.Rates, age, s)
			if !ok {
				return fmt.Errorf("no rate table row for age %d", age)
			}

			var budgetPtr, sizePtr *decimal.Decimal
			if monthlyBudget > 0 {
				d := decimal.NewFromFloat(monthlyBudget)
				budgetPtr = &d
			}
			if policySize > 0 {
				d := decimal.NewFromFloat(policySize)
				sizePtr = &d
			}
			active, selected := calculation.SelectActiveBracket(brackets, sizePtr, budgetPtr)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Rate brackets for age %d (%s)\n", age, s)
			fmt.Fprintf(w, "  %-10s %-22s %12s %14s\n", "BRACKET", "COVERAGE", "RATE/1000", "MONTHLY CUTOFF")
			for i, b := range brackets {
				marker := " "
				if selected && i == active {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %-10s %-22s %12s %14s\n", marker, b.Name, b.Range,
					output.FormatNullable(b.RatePerThousand, twoPlaces), output.FormatNullable(b.MonthlyCutoff, output.FormatCurrency))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "applicant age")
	cmd.Flags().StringVar(&sex, "sex", "", "male or female")
	cmd.Flags().Float64Var(&monthlyBudget, "monthly-budget", 0, "select the bracket for this monthly premium")
	cmd.Flags().Float64Var(&policySize, "policy-size", 0, "select the bracket for this coverage amount")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("sex")
	return cmd
}

func twoPlaces(d decimal.Decimal) string { return d.StringFixed(2) }

func newPercentileCmd(opts *globalOptions) *cobra.Command {
	var (
		horizon    int
		percentile float64
	)
	cmd := &cobra.Command{
		Use:   "percentile",
		Short: "Show the historical market growth at a percentile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := loadReference(opts.dataDir, newLogger(cmd.ErrOrStderr(), opts.logLevel))
			if err != nil {
				return err
			}
			growth, ok := calculation.PercentileGrowth(ref.MarketHistory, horizon, percentile)
			if !ok {
				return fmt.Errorf("no market history for a %d-year horizon", horizon)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%g percentile over %d years: growth x%s\n", percentile, horizon, growth.StringFixed(4))
			if rate, ok := calculation.AnnualizedRate(growth, horizon); ok {
				fmt.Fprintf(w, "annualized rate: %s\n", output.FormatRate(rate))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", 0, "horizon in years")
	cmd.Flags().Float64Var(&percentile, "percentile", 50, "percentile, 0 to 100")
	_ = cmd.MarkFlagRequired("horizon")
	return cmd
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [output-file]",
		Short: "Write an example assumption file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := config.NewInputParser().CreateExampleAssumptions()
			if err := output.SaveAssumptions(in, args[0]); err != nil {
				return fmt.Errorf("write example: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "example assumptions written to %s\n", args[0])
			return nil
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List report formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "formats: %s, all\n", strings.Join(output.AvailableFormatterNames(), ", "))
			fmt.Fprintf(w, "aliases: %s\n", strings.Join(output.AvailableFormatAliases(), ", "))
		},
	}
}
