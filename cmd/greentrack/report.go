package main

import (
	"encoding/json"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"greentrack/internal/analytics"
)

func newReportCommand(a *app, stdout io.Writer) *cobra.Command {
	var (
		threshold float64
		top       int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print emission and utilization KPIs from the fact table.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(func(db *gorm.DB) error {
				an := analytics.NewAnalyzer(db, analytics.NewClassifier(a.settings.ElectricMarkers), a.log)
				r, err := an.Report(cmd.Context(), threshold, top)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(r)
				}
				return writeReport(stdout, r)
			})
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&threshold, "threshold", analytics.DefaultUnderutilizedThreshold, "average load ratio below which a vehicle is underutilized")
	flags.IntVar(&top, "top", 5, "number of high-emission orders to list")
	flags.BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func writeReport(w io.Writer, r *analytics.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printf(tw, "stages\t%d\n", r.Totals.Stages)
	printf(tw, "total CO2 (kg)\t%.2f\n", r.Totals.TotalCo2Kg)
	printf(tw, "total distance (km)\t%.1f\n", r.Totals.TotalDistanceKm)
	printf(tw, "average load ratio\t%.3f\n", r.Totals.AvgLoadRatio)

	printf(tw, "\nHIGH EMISSION ORDERS\tCO2 (kg)\tDISTANCE (km)\n")
	for _, o := range r.HighEmission {
		printf(tw, "%d\t%.2f\t%.1f\n", o.OrderID, o.TotalCo2Kg, o.TotalDistanceKm)
	}
	printf(tw, "\nUNDERUTILIZED VEHICLES\tLOAD RATIO\tDISTANCE (km)\n")
	for _, v := range r.Underutilized {
		printf(tw, "%d\t%.3f\t%.1f\n", v.VehicleID, v.AvgLoadRatio, v.TotalDistanceKm)
	}
	printf(tw, "\nELECTRIC VEHICLES\tTYPE\tLOAD RATIO\tDISTANCE (km)\n")
	for _, v := range r.Electric {
		printf(tw, "%d\t%s\t%.3f\t%.1f\n", v.VehicleID, v.TransportType, v.AvgLoadRatio, v.TotalDistanceKm)
	}
	return tw.Flush()
}
