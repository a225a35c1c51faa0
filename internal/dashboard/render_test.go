package dashboard

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/dataprocessing"
	"enrolpulse/internal/shared/testutil"
	"enrolpulse/pkg/contracts/domain"
)

func load(t *testing.T, dir string) *dataprocessing.Table {
	t.Helper()
	ds, err := dataprocessing.NewLoader(nil).Load(context.Background(), dir)
	require.NoError(t, err)
	return ds.Table
}

func kpiValues(vm *ViewModel) map[string]string {
	out := make(map[string]string, len(vm.KPIs))
	for _, k := range vm.KPIs {
		out[k.Label] = k.Value
	}
	return out
}

func TestRender_TwoFileDataset(t *testing.T) {
	table := load(t, testutil.TwoFileDataset(t))

	vm, err := Render(table, Request{Region: "All"}, DefaultLimits())
	require.NoError(t, err)

	require.Len(t, vm.KPIs, 4)
	assert.Equal(t, []string{LabelTotal, LabelChild, LabelAdult, LabelDailyAvg},
		[]string{vm.KPIs[0].Label, vm.KPIs[1].Label, vm.KPIs[2].Label, vm.KPIs[3].Label})
	assert.Equal(t, map[string]string{
		LabelTotal:    "20",
		LabelChild:    "5",
		LabelAdult:    "75.0%",
		LabelDailyAvg: "10",
	}, kpiValues(vm))

	assert.Equal(t, []domain.GroupTotal{{Key: "X", Total: 20}}, vm.States)
	assert.Len(t, vm.Trend, 2)
	assert.False(t, vm.StateSelected)
	assert.Nil(t, vm.Heat)
	assert.Empty(t, vm.Districts)
	assert.Empty(t, vm.Insights)
	assert.Equal(t, []string{"All", "X"}, vm.Regions)
}

func TestRender_StateSelection(t *testing.T) {
	table := load(t, testutil.TwoFileDataset(t))

	vm, err := Render(table, Request{Region: "X", Insights: true}, DefaultLimits())
	require.NoError(t, err)

	assert.True(t, vm.StateSelected)
	assert.Equal(t, "District-wise Enrolments – X", vm.Panels.Districts)
	assert.Equal(t, "Pincode Enrolment Heatmap", vm.Panels.Heatmap)
	assert.Len(t, vm.Districts, 2)
	assert.Len(t, vm.DistrictTable, 2)

	require.NotNil(t, vm.Heat)
	assert.Equal(t, 1, vm.Heat.Rows)
	assert.Equal(t, 8, vm.Heat.Padding())

	require.Len(t, vm.Insights, 5)
	assert.Equal(t, "• Total Aadhaar enrolments recorded: 20", vm.Insights[0])
	assert.Equal(t, "• Child enrolments account for 25.0% of total.", vm.Insights[1])
	assert.Equal(t, "• X leads in Aadhaar enrolments nationwide.", vm.Insights[3])
}

func TestRender_DistrictTiesAlphabetical(t *testing.T) {
	table := load(t, testutil.TwoFileDataset(t))

	vm, err := Render(table, Request{Region: "X"}, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupTotal{{Key: "A", Total: 10}, {Key: "B", Total: 10}}, vm.Districts)
}

func TestRender_UnparseableDate(t *testing.T) {
	table := load(t, testutil.MultiStateDataset(t))

	vm, err := Render(table, Request{Region: "Kerala"}, DefaultLimits())
	require.NoError(t, err)

	assert.Equal(t, int64(140), vm.Headline.Total, "the null-date row still counts")
	assert.Equal(t, 1, vm.Headline.DistinctDates)
	require.Len(t, vm.Trend, 1)
	assert.Equal(t, int64(115), vm.Trend[0].Total)
	assert.Equal(t, "140", kpiValues(vm)[LabelDailyAvg])
}

func TestRender_ZeroRowSelection(t *testing.T) {
	table := load(t, testutil.MultiStateDataset(t))

	vm, err := Render(table, Request{Region: "Atlantis", Insights: true}, DefaultLimits())
	require.NoError(t, err)

	assert.True(t, vm.Empty())
	kpis := kpiValues(vm)
	assert.Equal(t, "0", kpis[LabelTotal])
	assert.Equal(t, "0", kpis[LabelChild])
	assert.Equal(t, NoDataText, kpis[LabelAdult])
	assert.Equal(t, NoDataText, kpis[LabelDailyAvg])
	assert.Empty(t, vm.Trend)
	assert.Empty(t, vm.States)
	assert.Nil(t, vm.Heat)
	require.Len(t, vm.Insights, 5)
	assert.Equal(t, "• Child enrolment share unavailable for this selection.", vm.Insights[1])
	assert.Equal(t, "• Kerala leads in Aadhaar enrolments nationwide.", vm.Insights[3])

	_, err = json.Marshal(vm)
	assert.NoError(t, err, "NoData values must encode")
}

func TestRender_EmptyRegionMeansAll(t *testing.T) {
	table := load(t, testutil.MultiStateDataset(t))

	vm, err := Render(table, Request{}, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "All", vm.Region)
	assert.Equal(t, int64(266), vm.Headline.Total)
	assert.Equal(t, "Kerala", vm.States[0].Key)
}

func TestRender_RespectsLimits(t *testing.T) {
	table := load(t, testutil.MultiStateDataset(t))

	vm, err := Render(table, Request{Region: "Punjab"}, Limits{States: 1, Districts: 1, Pincodes: 2, HeatColumns: 1})
	require.NoError(t, err)
	assert.Len(t, vm.States, 1)
	assert.Len(t, vm.Districts, 1)
	assert.Len(t, vm.DistrictTable, 2)
	assert.Len(t, vm.Pincodes, 2)
	assert.Equal(t, 2, vm.Heat.Rows)
}

func TestRender_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteCSV(t, dir, "a.csv", []string{"date", "state", "age_0_5"},
		[]string{"01-01-2025", "X", "3"})
	table := load(t, dir)

	vm, err := Render(table, Request{Region: "All"}, DefaultLimits())
	require.NoError(t, err, "state-level views do not need district")
	assert.Equal(t, "3", kpiValues(vm)[LabelTotal])

	_, err = Render(table, Request{Region: "X"}, DefaultLimits())
	require.Error(t, err)
	assert.ErrorIs(t, err, dataprocessing.ErrMissingColumn)
}

func TestRender_IsPure(t *testing.T) {
	table := load(t, testutil.MultiStateDataset(t))
	req := Request{Region: "Punjab", Insights: true}

	a, err := Render(table, req, DefaultLimits())
	require.NoError(t, err)
	b, err := Render(table, req, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// insights are not remembered between renders
	c, err := Render(table, Request{Region: "Punjab"}, DefaultLimits())
	require.NoError(t, err)
	assert.Empty(t, c.Insights)
}
