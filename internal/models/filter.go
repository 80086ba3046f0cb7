package models

// IncidentFilter - необязательные условия выборки, объединяемые через AND.
// Нулевое значение фильтра выбирает все инциденты.
type IncidentFilter struct {
	Status   Status
	Region   string
	Cause    string
	GridX    *int
	GridY    *int
	MinAcres *float64
	MaxAcres *float64
	// Range ограничивает выборку прямоугольником ячеек (регион берется из Range.Region)
	Range *GridRange
	// Limit ограничивает размер выборки, 0 - без ограничения
	Limit int
}

// Matches применяет фильтр к одному инциденту (используется хранилищем в памяти)
func (f IncidentFilter) Matches(i *Incident) bool {
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if f.Region != "" && i.Location.Region != f.Region {
		return false
	}
	if f.Cause != "" && i.Cause != f.Cause {
		return false
	}
	if f.GridX != nil && i.Location.GridCell.X != *f.GridX {
		return false
	}
	if f.GridY != nil && i.Location.GridCell.Y != *f.GridY {
		return false
	}
	if f.MinAcres != nil && i.Size.Acres < *f.MinAcres {
		return false
	}
	if f.MaxAcres != nil && i.Size.Acres > *f.MaxAcres {
		return false
	}
	if f.Range != nil && !f.Range.Contains(i) {
		return false
	}
	return true
}
