package v1

import (
	"time"

	"github.com/shenikar/wildfire_broadcasting_system/internal/broadcast"
	"github.com/shenikar/wildfire_broadcasting_system/internal/grid"
	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

// QueryToFilter преобразует параметры запроса в фильтр реестра
func QueryToFilter(q ListIncidentsQuery) models.IncidentFilter {
	return models.IncidentFilter{
		Status:   models.Status(q.Status),
		Region:   q.Region,
		Cause:    q.Cause,
		GridX:    q.GridX,
		GridY:    q.GridY,
		MinAcres: q.MinAcres,
		MaxAcres: q.MaxAcres,
	}
}

// QueryToGridRange преобразует провалидированные границы в диапазон
func QueryToGridRange(region string, q GridRangeQuery) models.GridRange {
	return models.GridRange{
		Region: region,
		MinX:   *q.MinX,
		MaxX:   *q.MaxX,
		MinY:   *q.MinY,
		MaxY:   *q.MaxY,
	}
}

// DTOToIncidentPatch преобразует DTO частичного обновления в патч.
// Приказам без issued_at проставляется issuedAt.
func DTOToIncidentPatch(dto UpdateIncidentRequest, issuedAt time.Time) models.IncidentPatch {
	patch := models.IncidentPatch{
		Name:  dto.Name,
		Cause: dto.Cause,
	}
	if dto.Status != nil {
		status := models.Status(*dto.Status)
		patch.Status = &status
	}
	if dto.Location != nil && dto.Location.Coordinates != nil {
		patch.Location = &models.LocationPatch{Coordinates: &models.LatLong{
			Latitude:  dto.Location.Coordinates.Latitude,
			Longitude: dto.Location.Coordinates.Longitude,
		}}
	}
	if s := dto.Size; s != nil {
		patch.Size = &models.SizePatch{Acres: s.Acres, ContainmentPercentage: s.ContainmentPercentage}
	}
	if c := dto.Conditions; c != nil {
		patch.Conditions = &models.ConditionsPatch{
			WindSpeed:     c.WindSpeed,
			WindDirection: c.WindDirection,
			Temperature:   c.Temperature,
			Humidity:      c.Humidity,
			Precipitation: c.Precipitation,
		}
	}
	if r := dto.Resources; r != nil {
		patch.Resources = &models.ResourcesPatch{
			PersonnelCount: r.PersonnelCount,
			AircraftCount:  r.AircraftCount,
			VehiclesCount:  r.VehiclesCount,
		}
	}
	for _, o := range dto.EvacuationOrders {
		order := models.EvacuationOrder{Area: o.Area, Status: models.EvacuationStatus(o.Status), IssuedAt: issuedAt}
		if o.IssuedAt != nil {
			order.IssuedAt = o.IssuedAt.UTC()
		}
		patch.AppendEvacuationOrders = append(patch.AppendEvacuationOrders, order)
	}
	return patch
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:   model.ID,
		Name: model.Name,
		Location: LocationResponse{
			Region:   model.Location.Region,
			GridCell: GridCellDTO{X: model.Location.GridCell.X, Y: model.Location.GridCell.Y},
		},
		StartDate: model.StartDate,
		Status:    string(model.Status),
		Size: SizeResponse{
			Acres:                 model.Size.Acres,
			ContainmentPercentage: model.Size.ContainmentPercentage,
		},
		Conditions: ConditionsResponse{
			WindSpeed:     model.Conditions.WindSpeed,
			WindDirection: model.Conditions.WindDirection,
			Temperature:   model.Conditions.Temperature,
			Humidity:      model.Conditions.Humidity,
			Precipitation: model.Conditions.Precipitation,
		},
		Resources: ResourcesResponse{
			PersonnelCount: model.Resources.PersonnelCount,
			AircraftCount:  model.Resources.AircraftCount,
			VehiclesCount:  model.Resources.VehiclesCount,
		},
		EvacuationOrders: make([]EvacuationOrderResponse, len(model.EvacuationOrders)),
		Cause:            model.Cause,
		FuelTypes:        nonNilStrings(model.FuelTypes),
		TerrainTypes:     nonNilStrings(model.TerrainTypes),
		UpdatedAt:        model.UpdatedAt,
	}
	if c := model.Location.Coordinates; c != nil {
		resp.Location.Coordinates = &CoordinatesDTO{Latitude: c.Latitude, Longitude: c.Longitude}
	}
	for i, o := range model.EvacuationOrders {
		resp.EvacuationOrders[i] = EvacuationOrderResponse{Area: o.Area, Status: string(o.Status), IssuedAt: o.IssuedAt}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToGridRangeResponse(result *models.GridRangeResult) *GridRangeResponse {
	return &GridRangeResponse{
		Region: result.Region,
		GridRange: GridRangeDTO{
			X: BoundsDTO{Min: result.GridRange.X.Min, Max: result.GridRange.X.Max},
			Y: BoundsDTO{Min: result.GridRange.Y.Min, Max: result.GridRange.Y.Max},
		},
		Count:     result.Count,
		Incidents: ModelsToIncidentResponses(result.Incidents),
	}
}

func RegionsToResponses(regions []grid.Region) []RegionResponse {
	responses := make([]RegionResponse, len(regions))
	for i, r := range regions {
		responses[i] = RegionResponse{
			Name:         r.Name,
			Width:        r.Width,
			Height:       r.Height,
			MinLatitude:  r.MinLatitude,
			MaxLatitude:  r.MaxLatitude,
			MinLongitude: r.MinLongitude,
			MaxLongitude: r.MaxLongitude,
		}
	}
	return responses
}

func EventToStreamEvent(e broadcast.Event) StreamEvent {
	return StreamEvent{
		Type:      string(e.Type),
		Incidents: ModelsToIncidentResponses(e.Incidents),
		At:        e.At,
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
