// Package evolution симулирует развитие пожаров: на каждом тике выбирает
// случайный инцидент и применяет к нему от одной до четырех мутаций.
package evolution

import (
	"strconv"
	"strings"
	"time"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

// Kind - вид мутации инцидента
type Kind int

const (
	StatusProgress Kind = iota
	SizeGrowth
	ConditionsRefresh
	ResourcesRefresh
	EvacuationOrderAdded
)

// Kinds - все виды мутаций в порядке объявления
var Kinds = []Kind{StatusProgress, SizeGrowth, ConditionsRefresh, ResourcesRefresh, EvacuationOrderAdded}

const maxKindsPerTick = 4

func (k Kind) String() string {
	switch k {
	case StatusProgress:
		return "status_progress"
	case SizeGrowth:
		return "size_growth"
	case ConditionsRefresh:
		return "conditions_refresh"
	case ResourcesRefresh:
		return "resources_refresh"
	case EvacuationOrderAdded:
		return "evacuation_order_added"
	}
	return "unknown"
}

// Rules - вероятности переходов статуса
type Rules struct {
	ContainProbability    float64
	ExtinguishProbability float64
}

func DefaultRules() Rules {
	return Rules{ContainProbability: 0.3, ExtinguishProbability: 0.4}
}

// Random - источник случайности; *rand.Rand из math/rand/v2 ему удовлетворяет
type Random interface {
	Float64() float64
	IntN(n int) int
	Perm(n int) []int
}

// env - все, от чего зависит мутация помимо самого инцидента
type env struct {
	rng   Random
	rules Rules
	now   time.Time
}

type mutation func(i *models.Incident, e env)

var mutations = map[Kind]mutation{
	StatusProgress:       progressStatus,
	SizeGrowth:           growSize,
	ConditionsRefresh:    refreshConditions,
	ResourcesRefresh:     refreshResources,
	EvacuationOrderAdded: addEvacuationOrder,
}

// ChooseKinds выбирает от 1 до 4 различных видов мутаций
func ChooseKinds(rng Random) []Kind {
	n := 1 + rng.IntN(maxKindsPerTick)
	perm := rng.Perm(len(Kinds))
	kinds := make([]Kind, n)
	for i := range n {
		kinds[i] = Kinds[perm[i]]
	}
	return kinds
}

// Apply применяет мутации по порядку к рабочей копии инцидента.
// Повторно выбранный вид применяется один раз; неприменимые мутации ничего не меняют.
func Apply(incident *models.Incident, kinds []Kind, rng Random, rules Rules, now time.Time) []Kind {
	e := env{rng: rng, rules: rules, now: now}
	applied := make([]Kind, 0, len(kinds))
	seen := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		m, ok := mutations[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		m(incident, e)
		applied = append(applied, k)
	}
	return applied
}

// progressStatus: active -> contained -> extinguished, обратных переходов нет
func progressStatus(i *models.Incident, e env) {
	cp := &i.Size.ContainmentPercentage
	switch i.Status {
	case models.StatusActive:
		if e.rng.Float64() < e.rules.ContainProbability {
			i.Status = models.StatusContained
			*cp = max(*cp, float64(70+e.rng.IntN(30)))
			return
		}
		*cp = max(*cp, min(*cp+float64(e.rng.IntN(15)), 69))
	case models.StatusContained:
		if e.rng.Float64() < e.rules.ExtinguishProbability {
			i.Status = models.StatusExtinguished
			*cp = 100
			return
		}
		*cp = max(*cp, min(*cp+float64(e.rng.IntN(10)), 99))
	}
}

func growSize(i *models.Incident, e env) {
	if i.Status != models.StatusActive {
		return
	}
	i.Size.Acres += float64(1 + e.rng.IntN(1000))
}

// refreshConditions не трогает wind_direction и precipitation
func refreshConditions(i *models.Incident, e env) {
	i.Conditions.WindSpeed = float64(e.rng.IntN(50))
	i.Conditions.Temperature = float64(60 + e.rng.IntN(50))
	i.Conditions.Humidity = float64(5 + e.rng.IntN(90))
}

func refreshResources(i *models.Incident, e env) {
	i.Resources = models.Resources{
		PersonnelCount: 10 + e.rng.IntN(5000),
		AircraftCount:  e.rng.IntN(30),
		VehiclesCount:  5 + e.rng.IntN(200),
	}
}

func addEvacuationOrder(i *models.Incident, e env) {
	i.EvacuationOrders = append(i.EvacuationOrders, models.EvacuationOrder{
		Area:     areaLabel(e.rng) + " Area",
		Status:   models.EvacuationStatuses[e.rng.IntN(len(models.EvacuationStatuses))],
		IssuedAt: e.now,
	})
}

// areaLabel - пять случайных символов base36
func areaLabel(rng Random) string {
	const space = 36 * 36 * 36 * 36 * 36
	label := strconv.FormatInt(int64(rng.IntN(space)), 36)
	return strings.Repeat("0", 5-len(label)) + label
}
