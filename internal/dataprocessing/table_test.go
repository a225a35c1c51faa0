package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"enrolpulse/pkg/contracts/domain"
)

func TestTable_Filter(t *testing.T) {
	table := loadMultiState(t)

	all := table.Filter(AllRegions)
	assert.Same(t, table, all)

	kerala := table.Filter("Kerala")
	assert.Equal(t, 2, kerala.Len())
	kerala.Each(func(r domain.EnrolmentRecord) {
		assert.Equal(t, "Kerala", r.State)
	})
	assert.True(t, kerala.HasColumn("district"), "filtered tables keep the schema")

	// exact match only
	assert.Equal(t, 0, table.Filter("kerala").Len())
	assert.Equal(t, 0, table.Filter("Atlantis").Len())
}

func TestTable_FilterPartitionsRows(t *testing.T) {
	table := loadMultiState(t)

	var rows int
	var total int64
	for _, region := range table.Regions()[1:] {
		sub := table.Filter(region)
		rows += sub.Len()
		total += Summarize(sub).Total
	}
	assert.Equal(t, table.Len(), rows)
	assert.Equal(t, Summarize(table).Total, total)
}

func TestTable_Regions(t *testing.T) {
	table := loadMultiState(t)
	assert.Equal(t, []string{"All", "Haryana", "Kerala", "Punjab"}, table.Regions())
	assert.True(t, table.HasRegion("Punjab"))
	assert.True(t, table.HasRegion(AllRegions))
	assert.False(t, table.HasRegion("Goa"))
}

func TestTable_ImmutableRecords(t *testing.T) {
	src := []domain.EnrolmentRecord{{State: "X", Total: 1}}
	table := NewTable(src, []string{"state"})
	src[0].State = "Y"

	out := table.Records()
	out[0].State = "Z"

	assert.Equal(t, "X", table.Records()[0].State)
}

func TestTable_NilSafe(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	assert.False(t, table.HasColumn("state"))
	assert.Equal(t, []string{"All"}, table.Regions())
	assert.Empty(t, table.Records())
}
