// Package seed генерирует синтетические инциденты для наполнения реестра.
package seed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/wildfire_broadcasting_system/internal/grid"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

// DefaultCount - сколько инцидентов создается по умолчанию
const DefaultCount = 100

var (
	fuelTypes      = []string{"grass", "timber", "brush", "chaparral", "mixed", "slash"}
	terrainTypes   = []string{"mountainous", "flat", "hilly", "canyon", "valley", "ridge", "forest"}
	causes         = []string{"lightning", "human-caused", "equipment failure", "campfire", "arson", "prescribed fire", "powerline", "unknown"}
	windDirections = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	nameSuffixes   = []string{"Fire", "Complex", "Wildfire"}
	counties       = []string{"Shasta", "Butte", "Sonoma", "Klamath", "Deschutes", "Chelan", "Okanogan", "Coconino", "Yavapai", "Larimer", "Boulder", "Flathead", "Ravalli", "Boise", "Elko", "Washoe", "Catron", "Sandoval", "Iron", "Teton"}
	streetNames    = []string{"Pine", "Oak", "Cedar", "Ridge", "Canyon", "Maple", "Juniper", "Aspen", "Willow", "Sage"}
	streetSuffixes = []string{"Road", "Lane", "Drive", "Way", "Trail", "Court"}
	statuses       = []models.Status{models.StatusActive, models.StatusContained, models.StatusExtinguished}
)

// Store - операции реестра, нужные для наполнения
type Store interface {
	ClearIncidents(ctx context.Context) error
	CreateIncident(ctx context.Context, incident *models.Incident) error
}

// Generator строит инциденты, согласованные с правилами реестра:
// ячейка внутри сетки региона, 100% локализации только у потушенных.
type Generator struct {
	catalog *grid.Catalog
	rng     *rand.Rand
	clock   clockwork.Clock
}

// NewGenerator создает генератор; seed=0 берет случайное зерно
func NewGenerator(catalog *grid.Catalog, seed uint64, clock clockwork.Clock) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		catalog: catalog,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		clock:   clock,
	}
}

// between возвращает целое из [lo, hi] включительно
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func pick[T any](g *Generator, items []T) T {
	return items[g.rng.IntN(len(items))]
}

func pickN[T any](g *Generator, items []T, lo, hi int) []T {
	out := make([]T, g.between(lo, hi))
	for i := range out {
		out[i] = pick(g, items)
	}
	return out
}

// Generate строит инцидент с идентификатором WF-<n>
func (g *Generator) Generate(n int) *models.Incident {
	now := g.clock.Now().UTC()
	startDate := now.Add(-time.Duration(g.rng.Int64N(int64(365 * 24 * time.Hour))))

	regions := g.catalog.Regions()
	region := pick(g, regions)
	x := g.rng.IntN(region.Width)
	y := g.rng.IntN(region.Height)
	coords := g.catalog.ApproximateLatLong(region.Name, x, y)

	status := pick(g, statuses)
	var containment float64
	switch status {
	case models.StatusExtinguished:
		containment = 100
	case models.StatusContained:
		containment = float64(g.between(70, 99))
	default:
		containment = float64(g.between(0, 69))
	}

	orders := make([]models.EvacuationOrder, g.between(0, 5))
	for i := range orders {
		orders[i] = models.EvacuationOrder{
			Area:     pick(g, streetNames) + " " + pick(g, streetSuffixes),
			Status:   pick(g, models.EvacuationStatuses),
			IssuedAt: startDate.Add(time.Duration(g.rng.Int64N(int64(now.Sub(startDate)) + 1))),
		}
	}

	return &models.Incident{
		ID:        "WF-" + strconv.Itoa(n),
		Name:      pick(g, counties) + " " + pick(g, nameSuffixes),
		Location:  models.Location{Region: region.Name, GridCell: models.GridCell{X: x, Y: y}, Coordinates: &coords},
		StartDate: startDate,
		Status:    status,
		Size: models.Size{
			Acres:                 float64(g.between(1, 500000)),
			ContainmentPercentage: containment,
		},
		Conditions: models.Conditions{
			WindSpeed:     float64(g.between(0, 50)),
			WindDirection: pick(g, windDirections),
			Temperature:   float64(g.between(60, 110)),
			Humidity:      float64(g.between(5, 90)),
			Precipitation: math.Round(g.rng.Float64()*300) / 100,
		},
		Resources: models.Resources{
			PersonnelCount: g.between(10, 5000),
			AircraftCount:  g.between(0, 30),
			VehiclesCount:  g.between(5, 200),
		},
		EvacuationOrders: orders,
		Cause:            pick(g, causes),
		FuelTypes:        pickN(g, fuelTypes, 1, 3),
		TerrainTypes:     pickN(g, terrainTypes, 1, 3),
		// Последнее обновление - в пределах недели, но не раньше начала пожара
		UpdatedAt: maxTime(startDate, now.Add(-time.Duration(g.rng.Int64N(int64(7*24*time.Hour))))),
	}
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// Seed очищает реестр и создает count инцидентов WF-1..WF-count
func Seed(ctx context.Context, store Store, gen *Generator, count int, logger *logrus.Logger) error {
	log := logger.WithFields(logrus.Fields{"method": "Seed", "count": count})

	if err := store.ClearIncidents(ctx); err != nil {
		return fmt.Errorf("seed: could not clear incidents: %w", err)
	}
	log.Info("Existing incidents cleared")

	for i := 1; i <= count; i++ {
		if err := store.CreateIncident(ctx, gen.Generate(i)); err != nil {
			return fmt.Errorf("seed: could not create incident WF-%d: %w", i, err)
		}
	}
	log.Info("Incidents inserted")
	return nil
}
