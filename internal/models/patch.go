package models

import (
	"time"
)

// IncidentPatch - частичное обновление инцидента.
//
// Семантика слияния по путям полей:
//   - nil-указатель означает "поле не передано" и оставляет текущее значение;
//   - вложенные объекты (Size, Conditions, Resources, Location) сливаются по отдельным полям,
//     поэтому обновление Conditions.WindSpeed не затирает соседние поля Conditions;
//   - AppendEvacuationOrders дописывается в конец списка приказов, существующие не меняются;
//   - UpdatedAt не входит в патч: его всегда выставляет хранилище при записи.
type IncidentPatch struct {
	Name                   *string
	Status                 *Status
	Cause                  *string
	Location               *LocationPatch
	Size                   *SizePatch
	Conditions             *ConditionsPatch
	Resources              *ResourcesPatch
	AppendEvacuationOrders []EvacuationOrder
}

type LocationPatch struct {
	Coordinates *LatLong
}

type SizePatch struct {
	Acres                 *float64
	ContainmentPercentage *float64
}

type ConditionsPatch struct {
	WindSpeed     *float64
	WindDirection *string
	Temperature   *float64
	Humidity      *float64
	Precipitation *float64
}

type ResourcesPatch struct {
	PersonnelCount *int
	AircraftCount  *int
	VehiclesCount  *int
}

// IsEmpty - патч не меняет ни одного поля
func (p IncidentPatch) IsEmpty() bool {
	return p.Name == nil && p.Status == nil && p.Cause == nil &&
		p.Location == nil && p.Size == nil && p.Conditions == nil &&
		p.Resources == nil && len(p.AppendEvacuationOrders) == 0
}

// Apply сливает патч в копию инцидента и возвращает ее; исходный инцидент не меняется
func (p IncidentPatch) Apply(current *Incident) *Incident {
	next := current.Clone()
	setIf(&next.Name, p.Name)
	setIf(&next.Status, p.Status)
	setIf(&next.Cause, p.Cause)

	if p.Location != nil && p.Location.Coordinates != nil {
		coords := *p.Location.Coordinates
		next.Location.Coordinates = &coords
	}
	if s := p.Size; s != nil {
		setIf(&next.Size.Acres, s.Acres)
		setIf(&next.Size.ContainmentPercentage, s.ContainmentPercentage)
	}
	if c := p.Conditions; c != nil {
		setIf(&next.Conditions.WindSpeed, c.WindSpeed)
		setIf(&next.Conditions.WindDirection, c.WindDirection)
		setIf(&next.Conditions.Temperature, c.Temperature)
		setIf(&next.Conditions.Humidity, c.Humidity)
		setIf(&next.Conditions.Precipitation, c.Precipitation)
	}
	if r := p.Resources; r != nil {
		setIf(&next.Resources.PersonnelCount, r.PersonnelCount)
		setIf(&next.Resources.AircraftCount, r.AircraftCount)
		setIf(&next.Resources.VehiclesCount, r.VehiclesCount)
	}
	next.EvacuationOrders = append(next.EvacuationOrders, p.AppendEvacuationOrders...)
	return next
}

// Merge применяет патч, проставляет UpdatedAt и проверяет инварианты результата.
// Используется обеими реализациями хранилища внутри критической секции записи.
func Merge(current *Incident, p IncidentPatch, now time.Time) (*Incident, error) {
	next := p.Apply(current)
	next.UpdatedAt = now
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateTransition(current, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Diff строит минимальный патч, переводящий before в after.
// Приказы об эвакуации считаются append-only: в патч попадает только хвост after.
func Diff(before, after *Incident) IncidentPatch {
	var p IncidentPatch
	p.Name = diffValue(before.Name, after.Name)
	p.Status = diffValue(before.Status, after.Status)
	p.Cause = diffValue(before.Cause, after.Cause)

	if after.Location.Coordinates != nil &&
		(before.Location.Coordinates == nil || *before.Location.Coordinates != *after.Location.Coordinates) {
		coords := *after.Location.Coordinates
		p.Location = &LocationPatch{Coordinates: &coords}
	}

	size := SizePatch{
		Acres:                 diffValue(before.Size.Acres, after.Size.Acres),
		ContainmentPercentage: diffValue(before.Size.ContainmentPercentage, after.Size.ContainmentPercentage),
	}
	if size != (SizePatch{}) {
		p.Size = &size
	}

	conditions := ConditionsPatch{
		WindSpeed:     diffValue(before.Conditions.WindSpeed, after.Conditions.WindSpeed),
		WindDirection: diffValue(before.Conditions.WindDirection, after.Conditions.WindDirection),
		Temperature:   diffValue(before.Conditions.Temperature, after.Conditions.Temperature),
		Humidity:      diffValue(before.Conditions.Humidity, after.Conditions.Humidity),
		Precipitation: diffValue(before.Conditions.Precipitation, after.Conditions.Precipitation),
	}
	if conditions != (ConditionsPatch{}) {
		p.Conditions = &conditions
	}

	resources := ResourcesPatch{
		PersonnelCount: diffValue(before.Resources.PersonnelCount, after.Resources.PersonnelCount),
		AircraftCount:  diffValue(before.Resources.AircraftCount, after.Resources.AircraftCount),
		VehiclesCount:  diffValue(before.Resources.VehiclesCount, after.Resources.VehiclesCount),
	}
	if resources != (ResourcesPatch{}) {
		p.Resources = &resources
	}

	if len(after.EvacuationOrders) > len(before.EvacuationOrders) {
		tail := after.EvacuationOrders[len(before.EvacuationOrders):]
		p.AppendEvacuationOrders = append([]EvacuationOrder(nil), tail...)
	}
	return p
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func diffValue[T comparable](before, after T) *T {
	if before == after {
		return nil
	}
	return &after
}
