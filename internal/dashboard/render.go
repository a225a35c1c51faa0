package dashboard

import (
	"fmt"

	"enrolpulse/internal/dataprocessing"
)

// Render builds the view model for req over table. It does no I/O and keeps
// no state; the same inputs always give the same output. An empty region
// means all regions. A grouping over a missing column fails the whole render.
func Render(table *dataprocessing.Table, req Request, limits Limits) (*ViewModel, error) {
	region := req.Region
	if region == "" {
		region = dataprocessing.AllRegions
	}
	selected := table.Filter(region)
	headline := dataprocessing.Summarize(selected)

	vm := &ViewModel{
		Region:        region,
		Regions:       table.Regions(),
		StateSelected: region != dataprocessing.AllRegions,
		Headline:      headline,
		KPIs:          kpis(headline),
		Panels: Panels{
			Trend:    "Enrolment Trend",
			States:   "State-wise Enrolments",
			Insights: "AI Summary Insights",
		},
	}

	trend, err := dataprocessing.Trend(selected)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	vm.Trend = trend

	states, err := dataprocessing.RankStates(selected, limits.States)
	if err != nil {
		return nil, err
	}
	vm.States = states.Top

	if vm.StateSelected {
		vm.Panels.Districts = "District-wise Enrolments – " + region
		vm.Panels.Heatmap = "Pincode Enrolment Heatmap"

		districts, err := dataprocessing.RankDistricts(selected, limits.Districts)
		if err != nil {
			return nil, err
		}
		vm.Districts = districts.Top
		vm.DistrictTable = districts.Full

		pincodes, err := dataprocessing.RankPincodes(selected, limits.Pincodes)
		if err != nil {
			return nil, err
		}
		vm.Pincodes = pincodes.Top
		vm.Heat = NewHeatGrid(pincodes.Top, limits.HeatColumns)
	}

	if req.Insights {
		top, _ := dataprocessing.TopState(table)
		vm.Insights = Insights(headline, top)
	}

	return vm, nil
}

func kpis(h dataprocessing.Headline) []KPI {
	return []KPI{
		{Label: LabelTotal, Value: FormatCount(h.Total)},
		{Label: LabelChild, Value: FormatCount(h.Child)},
		{Label: LabelAdult, Value: FormatPercent(h.AdultShare)},
		{Label: LabelDailyAvg, Value: FormatAverage(h.DailyAverage)},
	}
}
