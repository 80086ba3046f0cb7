package models

import (
	"fmt"
	"slices"
	"time"
)

// Status - стадия жизненного цикла пожара
type Status string

const (
	StatusActive       Status = "active"
	StatusContained    Status = "contained"
	StatusExtinguished Status = "extinguished"
)

// rank задает порядок стадий: статус может только расти
func (s Status) rank() int {
	switch s {
	case StatusActive:
		return 0
	case StatusContained:
		return 1
	case StatusExtinguished:
		return 2
	}
	return -1
}

func (s Status) Valid() bool {
	return s.rank() >= 0
}

// EvacuationStatus - статус приказа об эвакуации
type EvacuationStatus string

const (
	EvacuationMandatory EvacuationStatus = "mandatory"
	EvacuationWarning   EvacuationStatus = "warning"
	EvacuationLifted    EvacuationStatus = "lifted"
)

// EvacuationStatuses - все допустимые статусы эвакуации
var EvacuationStatuses = []EvacuationStatus{EvacuationMandatory, EvacuationWarning, EvacuationLifted}

func (s EvacuationStatus) Valid() bool {
	return slices.Contains(EvacuationStatuses, s)
}

type GridCell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type LatLong struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Location struct {
	Region      string   `json:"region"`
	GridCell    GridCell `json:"grid_cell"`
	Coordinates *LatLong `json:"coordinates,omitempty"`
}

// Coordinate возвращает пространственный ключ инцидента
func (l Location) Coordinate() GridCoordinate {
	return GridCoordinate{Region: l.Region, X: l.GridCell.X, Y: l.GridCell.Y}
}

type Size struct {
	Acres                 float64 `json:"acres"`
	ContainmentPercentage float64 `json:"containment_percentage"`
}

type Conditions struct {
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
}

type Resources struct {
	PersonnelCount int `json:"personnel_count"`
	AircraftCount  int `json:"aircraft_count"`
	VehiclesCount  int `json:"vehicles_count"`
}

type EvacuationOrder struct {
	Area     string           `json:"area"`
	Status   EvacuationStatus `json:"status"`
	IssuedAt time.Time        `json:"issued_at"`
}

// Incident - лесной пожар, привязанный к ячейке сетки региона
type Incident struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Location         Location          `json:"location"`
	StartDate        time.Time         `json:"start_date"`
	Status           Status            `json:"status"`
	Size             Size              `json:"size"`
	Conditions       Conditions        `json:"conditions"`
	Resources        Resources         `json:"resources"`
	EvacuationOrders []EvacuationOrder `json:"evacuation_orders"`
	Cause            string            `json:"cause"`
	FuelTypes        []string          `json:"fuel_types"`
	TerrainTypes     []string          `json:"terrain_types"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Clone возвращает глубокую копию: срезы и указатели не разделяются с оригиналом
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	if i.Location.Coordinates != nil {
		coords := *i.Location.Coordinates
		c.Location.Coordinates = &coords
	}
	c.EvacuationOrders = slices.Clone(i.EvacuationOrders)
	c.FuelTypes = slices.Clone(i.FuelTypes)
	c.TerrainTypes = slices.Clone(i.TerrainTypes)
	return &c
}

// Validate проверяет диапазоны полей и связь статуса с процентом локализации
func (i *Incident) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if !i.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, i.Status)
	}
	if i.Location.Region == "" {
		return fmt.Errorf("%w: location.region is required", ErrValidation)
	}
	if i.Location.GridCell.X < 0 || i.Location.GridCell.Y < 0 {
		return fmt.Errorf("%w: grid cell (%d,%d) must be non-negative", ErrValidation, i.Location.GridCell.X, i.Location.GridCell.Y)
	}
	if i.Size.Acres < 0 {
		return fmt.Errorf("%w: size.acres must be >= 0, got %v", ErrValidation, i.Size.Acres)
	}
	cp := i.Size.ContainmentPercentage
	if cp < 0 || cp > 100 {
		return fmt.Errorf("%w: size.containment_percentage must be in [0,100], got %v", ErrValidation, cp)
	}
	if (cp == 100) != (i.Status == StatusExtinguished) {
		return fmt.Errorf("%w: containment_percentage is 100 only for extinguished incidents (status %s, containment %v)", ErrValidation, i.Status, cp)
	}
	r := i.Resources
	if r.PersonnelCount < 0 || r.AircraftCount < 0 || r.VehiclesCount < 0 {
		return fmt.Errorf("%w: resource counts must be non-negative", ErrValidation)
	}
	for _, order := range i.EvacuationOrders {
		if !order.Status.Valid() {
			return fmt.Errorf("%w: unknown evacuation status %q", ErrValidation, order.Status)
		}
	}
	return nil
}

// ValidateTransition проверяет, что переход before -> after допустим:
// статус не откатывается, локализация не уменьшается после active,
// площадь не уменьшается и замораживается после локализации.
func ValidateTransition(before, after *Incident) error {
	if after.ID != before.ID {
		return fmt.Errorf("%w: id is immutable", ErrValidation)
	}
	if after.Status.rank() < before.Status.rank() {
		return fmt.Errorf("%w: status cannot move from %s to %s", ErrValidation, before.Status, after.Status)
	}
	if before.Status != StatusActive && after.Size.ContainmentPercentage < before.Size.ContainmentPercentage {
		return fmt.Errorf("%w: containment_percentage cannot decrease once %s", ErrValidation, before.Status)
	}
	if before.Status == StatusActive && after.Size.Acres < before.Size.Acres {
		return fmt.Errorf("%w: size.acres cannot decrease", ErrValidation)
	}
	if before.Status != StatusActive && after.Size.Acres != before.Size.Acres {
		return fmt.Errorf("%w: size.acres is frozen once %s", ErrValidation, before.Status)
	}
	if len(after.EvacuationOrders) < len(before.EvacuationOrders) {
		return fmt.Errorf("%w: evacuation orders are append-only", ErrValidation)
	}
	return nil
}
