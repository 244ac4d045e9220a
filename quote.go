package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tournevent/ratebridge/pkg/shipper"
	"go.uber.org/zap"
)

type quoteOptions struct {
	originCity, originState, originZip string
	destCity, destState, destZip       string
	country                            string
	weight                             float64
	weightUnit                         string
	length, width, height              float64
	dimensionUnit                      string
	residential                        bool
	carriers                           []string
}

func newQuoteCmd() *cobra.Command {
	opts := &quoteOptions{}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Fetch rate quotes for a single package and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.originCity, "from-city", "Timonium", "origin city")
	f.StringVar(&opts.originState, "from-state", "MD", "origin state/province code")
	f.StringVar(&opts.originZip, "from-zip", "21093", "origin postal code")
	f.StringVar(&opts.destCity, "to-city", "", "destination city")
	f.StringVar(&opts.destState, "to-state", "", "destination state/province code")
	f.StringVar(&opts.destZip, "to-zip", "", "destination postal code")
	f.StringVar(&opts.country, "country", "US", "ISO country code for both addresses")
	f.Float64Var(&opts.weight, "weight", 1, "package weight")
	f.StringVar(&opts.weightUnit, "weight-unit", string(shipper.WeightLBS), "LBS or KGS")
	f.Float64Var(&opts.length, "length", 10, "package length")
	f.Float64Var(&opts.width, "width", 10, "package width")
	f.Float64Var(&opts.height, "height", 10, "package height")
	f.StringVar(&opts.dimensionUnit, "dimension-unit", string(shipper.DimensionIN), "IN or CM")
	f.BoolVar(&opts.residential, "residential", false, "destination is residential")
	f.StringSliceVar(&opts.carriers, "carrier", nil, "carriers to query (default all)")
	_ = cmd.MarkFlagRequired("to-city")
	_ = cmd.MarkFlagRequired("to-state")
	_ = cmd.MarkFlagRequired("to-zip")

	return cmd
}

func (o *quoteOptions) request() *shipper.RateRequest {
	return &shipper.RateRequest{
		Origin: shipper.Address{
			Name:          "Shipper",
			Street1:       "Origin",
			City:          o.originCity,
			StateProvince: o.originState,
			PostalCode:    o.originZip,
			CountryCode:   o.country,
		},
		Destination: shipper.Address{
			Name:          "Recipient",
			Street1:       "Destination",
			City:          o.destCity,
			StateProvince: o.destState,
			PostalCode:    o.destZip,
			CountryCode:   o.country,
			IsResidential: o.residential,
		},
		Packages: []shipper.Package{{
			Weight: shipper.Weight{Value: o.weight, Unit: shipper.WeightUnit(o.weightUnit)},
			Dimensions: shipper.Dimensions{
				Length: o.length,
				Width:  o.width,
				Height: o.height,
				Unit:   shipper.DimensionUnit(o.dimensionUnit),
			},
		}},
	}
}

func runQuote(cmd *cobra.Command, opts *quoteOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry := initCarrierRegistry(cfg, logger)
	results, err := registry.GetRatesFromCarriers(cmd.Context(), opts.request(), opts.carriers)
	if err != nil {
		return fmt.Errorf("failed to get rates: %w", err)
	}

	failed := printQuotes(cmd.OutOrStdout(), results)
	if failed == len(results) {
		logger.Error("All carriers failed", zap.Int("carriers", len(results)))
		return fmt.Errorf("no carrier returned rates")
	}
	return nil
}

// printQuotes writes one row per quote and one per failed carrier. It
// returns the number of failed carriers.
func printQuotes(w io.Writer, results []shipper.CarrierResult) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CARRIER\tCODE\tSERVICE\tPRICE\tDAYS")

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t-\n", res.Carrier, shipper.ErrorCode(res.Err), res.Err.Error())
			continue
		}
		for _, q := range res.Response.Quotes {
			days := "-"
			if q.TransitDays != nil {
				days = strconv.Itoa(*q.TransitDays)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f %s\t%s\n", q.Carrier, q.ServiceCode, q.Service, q.TotalCost.Amount, q.TotalCost.Currency, days)
		}
	}
	_ = tw.Flush()
	return failed
}
