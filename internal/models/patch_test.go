package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newActiveIncident() *Incident {
	return &Incident{
		ID:   "WF-1",
		Name: "Tahoe Fire",
		Location: Location{
			Region:      "California",
			GridCell:    GridCell{X: 3, Y: 15},
			Coordinates: &LatLong{Latitude: 39.6, Longitude: -121.3},
		},
		Status: StatusActive,
		Size:   Size{Acres: 1200, ContainmentPercentage: 20},
		Conditions: Conditions{
			WindSpeed:     12,
			WindDirection: "NW",
			Temperature:   88,
			Humidity:      18,
			Precipitation: 0.1,
		},
		Resources: Resources{PersonnelCount: 300, AircraftCount: 4, VehiclesCount: 40},
		EvacuationOrders: []EvacuationOrder{
			{Area: "Pine Ridge", Status: EvacuationWarning, IssuedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		},
		Cause:     "lightning",
		FuelTypes: []string{"timber"},
		UpdatedAt: time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestMerge_WindSpeedKeepsSiblingConditions(t *testing.T) {
	current := newActiveIncident()
	now := time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC)

	merged, err := Merge(current, IncidentPatch{Conditions: &ConditionsPatch{WindSpeed: ptr(40.0)}}, now)
	require.NoError(t, err)

	assert.Equal(t, 40.0, merged.Conditions.WindSpeed)
	assert.Equal(t, current.Conditions.Humidity, merged.Conditions.Humidity)
	assert.Equal(t, current.Conditions.Temperature, merged.Conditions.Temperature)
	assert.Equal(t, current.Conditions.WindDirection, merged.Conditions.WindDirection)
	assert.Equal(t, current.Conditions.Precipitation, merged.Conditions.Precipitation)
	assert.Equal(t, now, merged.UpdatedAt)
	// исходная запись не изменилась
	assert.Equal(t, 12.0, current.Conditions.WindSpeed)
}

func TestMerge_AppendsEvacuationOrders(t *testing.T) {
	current := newActiveIncident()
	order := EvacuationOrder{Area: "K7Q2 Area", Status: EvacuationMandatory, IssuedAt: time.Now()}

	merged, err := Merge(current, IncidentPatch{AppendEvacuationOrders: []EvacuationOrder{order}}, time.Now())
	require.NoError(t, err)

	require.Len(t, merged.EvacuationOrders, 2)
	assert.Equal(t, current.EvacuationOrders[0], merged.EvacuationOrders[0])
	assert.Equal(t, order, merged.EvacuationOrders[1])
	assert.Len(t, current.EvacuationOrders, 1)
}

func TestMerge_RejectsOutOfRangeContainment(t *testing.T) {
	_, err := Merge(newActiveIncident(), IncidentPatch{Size: &SizePatch{ContainmentPercentage: ptr(120.0)}}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestMerge_ExtinguishedRequiresFullContainment(t *testing.T) {
	_, err := Merge(newActiveIncident(), IncidentPatch{Status: ptr(StatusExtinguished)}, time.Now())
	require.ErrorIs(t, err, ErrValidation)

	merged, err := Merge(newActiveIncident(), IncidentPatch{
		Status: ptr(StatusExtinguished),
		Size:   &SizePatch{ContainmentPercentage: ptr(100.0)},
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusExtinguished, merged.Status)
}

func TestMerge_RejectsStatusRollback(t *testing.T) {
	contained := newActiveIncident()
	contained.Status = StatusContained
	contained.Size.ContainmentPercentage = 80

	_, err := Merge(contained, IncidentPatch{Status: ptr(StatusActive)}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "cannot move from contained to active")
}

func TestMerge_ContainedFreezesAcresAndContainment(t *testing.T) {
	contained := newActiveIncident()
	contained.Status = StatusContained
	contained.Size.ContainmentPercentage = 80

	_, err := Merge(contained, IncidentPatch{Size: &SizePatch{Acres: ptr(5000.0)}}, time.Now())
	require.ErrorIs(t, err, ErrValidation)

	_, err = Merge(contained, IncidentPatch{Size: &SizePatch{ContainmentPercentage: ptr(75.0)}}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestMerge_ActiveAcresCannotShrink(t *testing.T) {
	_, err := Merge(newActiveIncident(), IncidentPatch{Size: &SizePatch{Acres: ptr(10.0)}}, time.Now())
	require.ErrorIs(t, err, ErrValidation)
}

func TestDiff_RoundTripsThroughApply(t *testing.T) {
	before := newActiveIncident()
	after := before.Clone()
	after.Status = StatusContained
	after.Size.ContainmentPercentage = 85
	after.Conditions.Humidity = 40
	after.Resources.AircraftCount = 9
	after.EvacuationOrders = append(after.EvacuationOrders, EvacuationOrder{Area: "X Area", Status: EvacuationLifted})

	patch := Diff(before, after)

	require.NotNil(t, patch.Status)
	require.NotNil(t, patch.Size)
	assert.Nil(t, patch.Size.Acres)
	require.NotNil(t, patch.Conditions)
	assert.Nil(t, patch.Conditions.WindSpeed)
	require.NotNil(t, patch.Resources)
	assert.Nil(t, patch.Resources.PersonnelCount)
	assert.Len(t, patch.AppendEvacuationOrders, 1)
	assert.Nil(t, patch.Name)

	assert.Equal(t, after, patch.Apply(before))
}

func TestDiff_NoChangesIsEmpty(t *testing.T) {
	before := newActiveIncident()
	assert.True(t, Diff(before, before.Clone()).IsEmpty())
}

func TestGridRange_Validate(t *testing.T) {
	cases := []struct {
		name  string
		rng   GridRange
		valid bool
	}{
		{"ok", GridRange{Region: "California", MinX: 0, MaxX: 4, MinY: 15, MaxY: 19}, true},
		{"single cell", GridRange{Region: "Utah", MinX: 2, MaxX: 2, MinY: 2, MaxY: 2}, true},
		{"no region", GridRange{MinX: 0, MaxX: 4, MinY: 0, MaxY: 4}, false},
		{"x inverted", GridRange{Region: "Utah", MinX: 5, MaxX: 4, MinY: 0, MaxY: 4}, false},
		{"y inverted", GridRange{Region: "Utah", MinX: 0, MaxX: 4, MinY: 9, MaxY: 4}, false},
		{"negative", GridRange{Region: "Utah", MinX: -1, MaxX: 4, MinY: 0, MaxY: 4}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rng.Validate()
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestGridRange_ContainsExcludesNeighbourColumn(t *testing.T) {
	rng := GridRange{Region: "California", MinX: 0, MaxX: 4, MinY: 15, MaxY: 19}

	inside := newActiveIncident()
	outside := newActiveIncident()
	outside.Location.GridCell = GridCell{X: 5, Y: 16}
	otherRegion := newActiveIncident()
	otherRegion.Location.Region = "Oregon"

	assert.True(t, rng.Contains(inside))
	assert.False(t, rng.Contains(outside))
	assert.False(t, rng.Contains(otherRegion))
}

func TestIncidentFilter_Matches(t *testing.T) {
	inc := newActiveIncident()

	assert.True(t, IncidentFilter{}.Matches(inc))
	assert.True(t, IncidentFilter{Status: StatusActive, Region: "California", Cause: "lightning"}.Matches(inc))
	assert.True(t, IncidentFilter{GridX: ptr(3), GridY: ptr(15)}.Matches(inc))
	assert.True(t, IncidentFilter{MinAcres: ptr(1000.0), MaxAcres: ptr(1200.0)}.Matches(inc))

	assert.False(t, IncidentFilter{Status: StatusContained}.Matches(inc))
	assert.False(t, IncidentFilter{GridX: ptr(4)}.Matches(inc))
	assert.False(t, IncidentFilter{MinAcres: ptr(1200.5)}.Matches(inc))
	assert.False(t, IncidentFilter{Region: "California", Cause: "arson"}.Matches(inc))
}
