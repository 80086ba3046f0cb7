package v1

import (
	"time"
)

// ListIncidentsQuery параметры фильтрации списка инцидентов
type ListIncidentsQuery struct {
	Status   string   `form:"status" validate:"omitempty,oneof=active contained extinguished"`
	Region   string   `form:"region" validate:"omitempty,max=100"`
	Cause    string   `form:"cause" validate:"omitempty,max=100"`
	MinAcres *float64 `form:"minAcres" validate:"omitempty,gte=0"`
	MaxAcres *float64 `form:"maxAcres" validate:"omitempty,gte=0"`
	GridX    *int     `form:"gridX" validate:"omitempty,gte=0"`
	GridY    *int     `form:"gridY" validate:"omitempty,gte=0"`
}

// GridRangeQuery границы запроса по сетке, все обязательны
type GridRangeQuery struct {
	MinX *int `form:"minX" validate:"required,gte=0"`
	MaxX *int `form:"maxX" validate:"required,gte=0"`
	MinY *int `form:"minY" validate:"required,gte=0"`
	MaxY *int `form:"maxY" validate:"required,gte=0"`
}

// UpdateIncidentRequest DTO для частичного обновления инцидента
// @Description Переданные поля сливаются с текущим состоянием, приказы об эвакуации дописываются в конец
type UpdateIncidentRequest struct {
	Name             *string                  `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Status           *string                  `json:"status,omitempty" validate:"omitempty,oneof=active contained extinguished"`
	Cause            *string                  `json:"cause,omitempty" validate:"omitempty,max=100"`
	Location         *LocationUpdate          `json:"location,omitempty"`
	Size             *SizeUpdate              `json:"size,omitempty"`
	Conditions       *ConditionsUpdate        `json:"conditions,omitempty"`
	Resources        *ResourcesUpdate         `json:"resources,omitempty"`
	EvacuationOrders []EvacuationOrderRequest `json:"evacuation_orders,omitempty" validate:"omitempty,dive"`
}

type LocationUpdate struct {
	Coordinates *CoordinatesDTO `json:"coordinates,omitempty"`
}

type CoordinatesDTO struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type SizeUpdate struct {
	Acres                 *float64 `json:"acres,omitempty" validate:"omitempty,gte=0"`
	ContainmentPercentage *float64 `json:"containment_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}

type ConditionsUpdate struct {
	WindSpeed     *float64 `json:"wind_speed,omitempty" validate:"omitempty,gte=0"`
	WindDirection *string  `json:"wind_direction,omitempty" validate:"omitempty,oneof=N NE E SE S SW W NW"`
	Temperature   *float64 `json:"temperature,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty" validate:"omitempty,gte=0,lte=100"`
	Precipitation *float64 `json:"precipitation,omitempty" validate:"omitempty,gte=0"`
}

type ResourcesUpdate struct {
	PersonnelCount *int `json:"personnel_count,omitempty" validate:"omitempty,gte=0"`
	AircraftCount  *int `json:"aircraft_count,omitempty" validate:"omitempty,gte=0"`
	VehiclesCount  *int `json:"vehicles_count,omitempty" validate:"omitempty,gte=0"`
}

type EvacuationOrderRequest struct {
	Area     string     `json:"area" validate:"required,max=255"`
	Status   string     `json:"status" validate:"required,oneof=mandatory warning lifted"`
	IssuedAt *time.Time `json:"issued_at,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID               string                    `json:"id"`
	Name             string                    `json:"name"`
	Location         LocationResponse          `json:"location"`
	StartDate        time.Time                 `json:"start_date"`
	Status           string                    `json:"status"`
	Size             SizeResponse              `json:"size"`
	Conditions       ConditionsResponse        `json:"conditions"`
	Resources        ResourcesResponse         `json:"resources"`
	EvacuationOrders []EvacuationOrderResponse `json:"evacuation_orders"`
	Cause            string                    `json:"cause"`
	FuelTypes        []string                  `json:"fuel_types"`
	TerrainTypes     []string                  `json:"terrain_types"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

type LocationResponse struct {
	Region      string          `json:"region"`
	GridCell    GridCellDTO     `json:"grid_cell"`
	Coordinates *CoordinatesDTO `json:"coordinates,omitempty"`
}

type GridCellDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type SizeResponse struct {
	Acres                 float64 `json:"acres"`
	ContainmentPercentage float64 `json:"containment_percentage"`
}

type ConditionsResponse struct {
	WindSpeed     float64 `json:"wind_speed"`
	WindDirection string  `json:"wind_direction"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
}

type ResourcesResponse struct {
	PersonnelCount int `json:"personnel_count"`
	AircraftCount  int `json:"aircraft_count"`
	VehiclesCount  int `json:"vehicles_count"`
}

type EvacuationOrderResponse struct {
	Area     string    `json:"area"`
	Status   string    `json:"status"`
	IssuedAt time.Time `json:"issued_at"`
}

// GridRangeResponse DTO ответа на запрос по диапазону ячеек
// @Description Нормализованный диапазон, количество и найденные инциденты
type GridRangeResponse struct {
	Region    string              `json:"region"`
	GridRange GridRangeDTO        `json:"grid_range"`
	Count     int                 `json:"count"`
	Incidents []*IncidentResponse `json:"incidents"`
}

type GridRangeDTO struct {
	X BoundsDTO `json:"x"`
	Y BoundsDTO `json:"y"`
}

type BoundsDTO struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// RegionResponse DTO сетки региона
type RegionResponse struct {
	Name         string  `json:"name"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	MinLatitude  float64 `json:"min_latitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

// StreamEvent DTO события потока обновлений (SSE и WebSocket)
type StreamEvent struct {
	Type      string              `json:"type"`
	Incidents []*IncidentResponse `json:"incidents"`
	At        time.Time           `json:"at"`
}
