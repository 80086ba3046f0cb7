package models

import "fmt"

// GridCoordinate - пространственный ключ: регион и ячейка (x, y) его сетки
type GridCoordinate struct {
	Region string `json:"region"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// WithinRange проверяет попадание ячейки в прямоугольник, границы включительно
func WithinRange(c GridCoordinate, minX, maxX, minY, maxY int) bool {
	return c.X >= minX && c.X <= maxX && c.Y >= minY && c.Y <= maxY
}

// GridRange - параметры запроса по диапазону ячеек
type GridRange struct {
	Region string
	MinX   int
	MaxX   int
	MinY   int
	MaxY   int
}

// Validate возвращает ErrInvalidRange для пустого региона, отрицательных или перевернутых границ
func (r GridRange) Validate() error {
	if r.Region == "" {
		return fmt.Errorf("%w: region is required", ErrInvalidRange)
	}
	if r.MinX < 0 || r.MinY < 0 {
		return fmt.Errorf("%w: bounds must be non-negative", ErrInvalidRange)
	}
	if r.MinX > r.MaxX {
		return fmt.Errorf("%w: minX (%d) > maxX (%d)", ErrInvalidRange, r.MinX, r.MaxX)
	}
	if r.MinY > r.MaxY {
		return fmt.Errorf("%w: minY (%d) > maxY (%d)", ErrInvalidRange, r.MinY, r.MaxY)
	}
	return nil
}

// Contains проверяет, что инцидент находится в регионе и в прямоугольнике диапазона
func (r GridRange) Contains(incident *Incident) bool {
	c := incident.Location.Coordinate()
	return c.Region == r.Region && WithinRange(c, r.MinX, r.MaxX, r.MinY, r.MaxY)
}

type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type GridRangeBounds struct {
	X Bounds `json:"x"`
	Y Bounds `json:"y"`
}

// GridRangeResult - ответ запроса по диапазону: нормализованный диапазон, количество и сами инциденты
type GridRangeResult struct {
	Region    string
	GridRange GridRangeBounds
	Count     int
	Incidents []*Incident
}
