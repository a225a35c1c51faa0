package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"enrolpulse/internal/config"
	"enrolpulse/internal/dashboard"
	"enrolpulse/internal/dataprocessing"
	"enrolpulse/internal/infrastructure"
	"enrolpulse/internal/services"
	"enrolpulse/pkg/contracts/domain"
)

const trendDateLayout = "02-01-2006"

type options struct {
	dataDir  string
	state    string
	insights bool
	csvPath  string
	xlsxPath string
	verbose  bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the report and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := infrastructure.NewLoggerWithWriter(stderr, level)

	svc, err := newService(opts, logger)
	if err != nil {
		logger.Error("Failed to create dashboard service", slog.String("error", err.Error()))
		return 1
	}

	vm, err := svc.Render(ctx, dashboard.Request{Region: opts.state, Insights: opts.insights})
	if err != nil {
		logger.Error("Failed to build report",
			slog.String("data_dir", opts.dataDir),
			slog.String("state", opts.state),
			slog.String("error", err.Error()))
		return 1
	}

	printReport(stdout, vm)

	if opts.csvPath != "" {
		if err := exportTo(ctx, svc, opts.state, services.FormatCSV, opts.csvPath); err != nil {
			logger.Error("CSV export failed", slog.String("path", opts.csvPath), slog.String("error", err.Error()))
			return 1
		}
		fmt.Fprintf(stdout, "\nDistrict ranking written to %s\n", opts.csvPath)
	}
	if opts.xlsxPath != "" {
		if err := exportTo(ctx, svc, opts.state, services.FormatXLSX, opts.xlsxPath); err != nil {
			logger.Error("XLSX export failed", slog.String("path", opts.xlsxPath), slog.String("error", err.Error()))
			return 1
		}
		fmt.Fprintf(stdout, "\nDistrict ranking written to %s\n", opts.xlsxPath)
	}

	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("enrolment-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.dataDir, "data", config.DefaultDataDir, "directory holding the enrolment CSV/XLSX files")
	fs.StringVar(&opts.state, "state", dataprocessing.AllRegions, "state to report on")
	fs.BoolVar(&opts.insights, "insights", false, "include generated insights")
	fs.StringVar(&opts.csvPath, "csv", "", "write the district ranking of -state to this CSV file")
	fs.StringVar(&opts.xlsxPath, "xlsx", "", "write the district ranking of -state to this XLSX file")
	fs.BoolVar(&opts.verbose, "v", false, "log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if (opts.csvPath != "" || opts.xlsxPath != "") && opts.state == dataprocessing.AllRegions {
		fmt.Fprintln(stderr, "-csv and -xlsx need a single -state")
		return opts, fmt.Errorf("export without state")
	}
	return opts, nil
}

func newService(opts options, logger *slog.Logger) (*services.DashboardService, error) {
	cache, err := dataprocessing.NewDatasetCache(dataprocessing.NewLoader(logger), dataprocessing.CacheModeProcess, logger)
	if err != nil {
		return nil, err
	}
	return services.NewDashboardService(cache, services.DashboardOptions{DataDir: opts.dataDir}, logger), nil
}

func exportTo(ctx context.Context, svc *services.DashboardService, state, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := svc.ExportDistricts(ctx, state, format, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func printReport(w io.Writer, vm *dashboard.ViewModel) {
	fmt.Fprintf(w, "Aadhaar enrolments: %s\n\n", vm.Region)

	kpis := newTable(w, "Metric", "Value")
	for _, k := range vm.KPIs {
		kpis.Append([]string{k.Label, k.Value})
	}
	kpis.Render()

	if vm.Empty() {
		fmt.Fprintln(w, "\nNo rows for this selection.")
		return
	}

	printRanking(w, vm.Panels.States, vm.States)
	if vm.StateSelected {
		printRanking(w, vm.Panels.Districts, vm.Districts)
	}

	if len(vm.Trend) > 0 {
		fmt.Fprintf(w, "\n%s\n", vm.Panels.Trend)
		trend := newTable(w, "Date", "Enrolments")
		for _, p := range vm.Trend {
			trend.Append([]string{p.Date.Format(trendDateLayout), dashboard.FormatCount(p.Total)})
		}
		trend.Render()
	}

	if len(vm.Insights) > 0 {
		fmt.Fprintf(w, "\n%s\n", vm.Panels.Insights)
		for _, line := range vm.Insights {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
}

func printRanking(w io.Writer, title string, rows []domain.GroupTotal) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	table := newTable(w, "Rank", "Name", "Enrolments")
	for i, r := range rows {
		table.Append([]string{strconv.Itoa(i + 1), r.Key, dashboard.FormatCount(r.Total)})
	}
	table.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
