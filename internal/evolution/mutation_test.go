package evolution

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

// scriptedRandom возвращает заранее заданные значения; IntN берет остаток по модулю n
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRandom) IntN(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRandom) Perm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

var now = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

func activeIncident(containment float64) *models.Incident {
	return &models.Incident{
		ID:     "WF-1",
		Status: models.StatusActive,
		Size:   models.Size{Acres: 100, ContainmentPercentage: containment},
		Conditions: models.Conditions{
			WindSpeed: 12, WindDirection: "NW", Temperature: 80, Humidity: 20, Precipitation: 0.3,
		},
	}
}

func TestProgressStatus(t *testing.T) {
	rules := DefaultRules()

	testCases := []struct {
		name            string
		status          models.Status
		containment     float64
		rng             *scriptedRandom
		wantStatus      models.Status
		wantContainment float64
	}{
		{
			name: "active becomes contained", status: models.StatusActive, containment: 40,
			rng:        &scriptedRandom{floats: []float64{0.1}, ints: []int{12}},
			wantStatus: models.StatusContained, wantContainment: 82,
		},
		{
			name: "active grows containment", status: models.StatusActive, containment: 40,
			rng:        &scriptedRandom{floats: []float64{0.9}, ints: []int{9}},
			wantStatus: models.StatusActive, wantContainment: 49,
		},
		{
			name: "active containment capped at 69", status: models.StatusActive, containment: 65,
			rng:        &scriptedRandom{floats: []float64{0.9}, ints: []int{14}},
			wantStatus: models.StatusActive, wantContainment: 69,
		},
		{
			name: "contained becomes extinguished", status: models.StatusContained, containment: 85,
			rng:        &scriptedRandom{floats: []float64{0.2}},
			wantStatus: models.StatusExtinguished, wantContainment: 100,
		},
		{
			name: "contained containment capped at 99", status: models.StatusContained, containment: 95,
			rng:        &scriptedRandom{floats: []float64{0.5}, ints: []int{9}},
			wantStatus: models.StatusContained, wantContainment: 99,
		},
		{
			name: "extinguished is terminal", status: models.StatusExtinguished, containment: 100,
			rng:        &scriptedRandom{},
			wantStatus: models.StatusExtinguished, wantContainment: 100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			incident := activeIncident(tc.containment)
			incident.Status = tc.status

			progressStatus(incident, env{rng: tc.rng, rules: rules, now: now})

			assert.Equal(t, tc.wantStatus, incident.Status)
			assert.Equal(t, tc.wantContainment, incident.Size.ContainmentPercentage)
		})
	}
}

func TestGrowSize_OnlyWhileActive(t *testing.T) {
	e := env{rng: &scriptedRandom{ints: []int{499}}, rules: DefaultRules(), now: now}

	active := activeIncident(10)
	growSize(active, e)
	assert.Equal(t, 600.0, active.Size.Acres)

	contained := activeIncident(80)
	contained.Status = models.StatusContained
	growSize(contained, e)
	assert.Equal(t, 100.0, contained.Size.Acres)
}

func TestRefreshConditions_KeepsDirectionAndPrecipitation(t *testing.T) {
	incident := activeIncident(10)

	refreshConditions(incident, env{rng: &scriptedRandom{ints: []int{30, 20, 40}}, now: now})

	assert.Equal(t, 30.0, incident.Conditions.WindSpeed)
	assert.Equal(t, 80.0, incident.Conditions.Temperature)
	assert.Equal(t, 45.0, incident.Conditions.Humidity)
	assert.Equal(t, "NW", incident.Conditions.WindDirection)
	assert.Equal(t, 0.3, incident.Conditions.Precipitation)
}

func TestApply_EvacuationOrderAddedOnce(t *testing.T) {
	incident := activeIncident(10)
	rng := rand.New(rand.NewPCG(1, 2))

	applied := Apply(incident, []Kind{EvacuationOrderAdded, EvacuationOrderAdded}, rng, DefaultRules(), now)

	assert.Equal(t, []Kind{EvacuationOrderAdded}, applied)
	require.Len(t, incident.EvacuationOrders, 1)
	order := incident.EvacuationOrders[0]
	assert.Regexp(t, `^[0-9a-z]{5} Area$`, order.Area)
	assert.True(t, order.Status.Valid())
	assert.Equal(t, now, order.IssuedAt)
}

func TestChooseKinds_DistinctAndBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	sizes := make(map[int]bool)

	for range 1000 {
		kinds := ChooseKinds(rng)
		require.GreaterOrEqual(t, len(kinds), 1)
		require.LessOrEqual(t, len(kinds), 4)
		seen := make(map[Kind]bool)
		for _, k := range kinds {
			require.False(t, seen[k], "kind %s chosen twice", k)
			seen[k] = true
		}
		sizes[len(kinds)] = true
	}
	assert.Len(t, sizes, 4)
}
