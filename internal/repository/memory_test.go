package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

var baseTime = time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)

func memoryIncident(id, region string, x, y int, status models.Status, containment float64) *models.Incident {
	return &models.Incident{
		ID:     id,
		Name:   "Fire " + id,
		Status: status,
		Location: models.Location{
			Region:   region,
			GridCell: models.GridCell{X: x, Y: y},
		},
		Size:      models.Size{Acres: 50, ContainmentPercentage: containment},
		StartDate: baseTime.Add(-24 * time.Hour),
		UpdatedAt: baseTime,
	}
}

func seededMemory(t *testing.T, clock clockwork.Clock, incidents ...*models.Incident) *MemoryIncidentRepository {
	t.Helper()
	repo := newMemoryIncidentRepository(clock)
	for _, incident := range incidents {
		require.NoError(t, repo.Create(context.Background(), incident))
	}
	return repo
}

func TestMemory_CreateDuplicate(t *testing.T) {
	repo := seededMemory(t, clockwork.NewFakeClockAt(baseTime), memoryIncident("WF-1", "Oregon", 1, 1, models.StatusActive, 0))

	err := repo.Create(context.Background(), memoryIncident("WF-1", "Oregon", 1, 1, models.StatusActive, 0))

	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMemory_GetByID_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := seededMemory(t, clockwork.NewFakeClockAt(baseTime), memoryIncident("WF-1", "Oregon", 1, 1, models.StatusActive, 0))

	got, err := repo.GetByID(ctx, "WF-1")
	require.NoError(t, err)
	got.Name = "changed"

	again, err := repo.GetByID(ctx, "WF-1")
	require.NoError(t, err)
	assert.Equal(t, "Fire WF-1", again.Name)

	_, err = repo.GetByID(ctx, "WF-404")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemory_ListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	a := memoryIncident("WF-1", "California", 3, 4, models.StatusActive, 0)
	b := memoryIncident("WF-2", "California", 5, 16, models.StatusActive, 0)
	c := memoryIncident("WF-3", "Oregon", 2, 2, models.StatusContained, 80)
	b.UpdatedAt = baseTime.Add(time.Minute)
	c.UpdatedAt = baseTime.Add(2 * time.Minute)
	repo := seededMemory(t, clockwork.NewFakeClockAt(baseTime), a, b, c)

	all, err := repo.List(ctx, models.IncidentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"WF-3", "WF-2", "WF-1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	active, err := repo.List(ctx, models.IncidentFilter{Status: models.StatusActive, Region: "California"})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	inRange, err := repo.List(ctx, models.IncidentFilter{Range: &models.GridRange{Region: "California", MinX: 0, MaxX: 5, MinY: 0, MaxY: 15}})
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.Equal(t, "WF-1", inRange[0].ID)

	limited, err := repo.List(ctx, models.IncidentFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemory_GetNthIsOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := seededMemory(t, clockwork.NewFakeClockAt(baseTime),
		memoryIncident("WF-3", "Utah", 0, 0, models.StatusActive, 0),
		memoryIncident("WF-1", "Utah", 0, 0, models.StatusActive, 0),
		memoryIncident("WF-2", "Utah", 0, 0, models.StatusActive, 0),
	)

	for n, want := range []string{"WF-1", "WF-2", "WF-3"} {
		got, err := repo.GetNth(ctx, n)
		require.NoError(t, err)
		assert.Equal(t, want, got.ID)
	}

	_, err := repo.GetNth(ctx, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemory_UpdateStampsClock(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(baseTime)
	repo := seededMemory(t, clock, memoryIncident("WF-1", "Oregon", 1, 1, models.StatusActive, 10))
	clock.Advance(5 * time.Second)

	aircraft := 7
	before, after, err := repo.Update(ctx, "WF-1", models.IncidentPatch{Resources: &models.ResourcesPatch{AircraftCount: &aircraft}})

	require.NoError(t, err)
	assert.Equal(t, 0, before.Resources.AircraftCount)
	assert.Equal(t, 7, after.Resources.AircraftCount)
	assert.Equal(t, baseTime.Add(5*time.Second), after.UpdatedAt)

	stored, err := repo.GetByID(ctx, "WF-1")
	require.NoError(t, err)
	assert.Equal(t, after, stored)
}

func TestMemory_UpdateRejectsInvalidPatch(t *testing.T) {
	ctx := context.Background()
	repo := seededMemory(t, clockwork.NewFakeClockAt(baseTime), memoryIncident("WF-1", "Oregon", 1, 1, models.StatusContained, 80))

	active := models.StatusActive
	_, _, err := repo.Update(ctx, "WF-1", models.IncidentPatch{Status: &active})
	assert.ErrorIs(t, err, models.ErrValidation)

	stored, err := repo.GetByID(ctx, "WF-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusContained, stored.Status)

	_, _, err = repo.Update(ctx, "WF-404", models.IncidentPatch{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemory_ConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo := seededMemory(t, clockwork.NewRealClock(), memoryIncident("WF-1", "Oregon", 1, 1, models.StatusActive, 10))

	const writers = 100
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		lastWrite time.Time
	)
	stop := make(chan struct{})

	// Читатель все время видит целые записи
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			snapshot, err := repo.GetByID(ctx, "WF-1")
			if !assert.NoError(t, err) || !assert.NoError(t, snapshot.Validate()) {
				return
			}
		}
	}()

	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			personnel := i
			patch := models.IncidentPatch{
				Resources: &models.ResourcesPatch{PersonnelCount: &personnel},
				AppendEvacuationOrders: []models.EvacuationOrder{
					{Area: fmt.Sprintf("Zone %d Area", i), Status: models.EvacuationWarning, IssuedAt: baseTime},
				},
			}
			_, after, err := repo.Update(ctx, "WF-1", patch)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			if after.UpdatedAt.After(lastWrite) {
				lastWrite = after.UpdatedAt
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(stop)
	<-readerDone

	final, err := repo.GetByID(ctx, "WF-1")
	require.NoError(t, err)
	assert.Len(t, final.EvacuationOrders, writers)

	// Последний приказ принадлежит последней записи, ее же personnel_count остался в записи
	last := final.EvacuationOrders[writers-1].Area
	assert.Equal(t, fmt.Sprintf("Zone %d Area", final.Resources.PersonnelCount), last)
	assert.Equal(t, lastWrite, final.UpdatedAt)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	repo := seededMemory(t, clockwork.NewFakeClockAt(baseTime),
		memoryIncident("WF-1", "Utah", 0, 0, models.StatusActive, 0),
		memoryIncident("WF-2", "Utah", 0, 0, models.StatusActive, 0),
	)

	require.NoError(t, repo.Clear(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = repo.GetNth(ctx, 0)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
