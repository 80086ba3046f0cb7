// Package grid описывает сетки регионов: размеры, проверку координат ячеек
// и приблизительный пересчет ячейки в широту/долготу.
package grid

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
)

// Region - объявленная сетка региона. Ячейки нумеруются от (0,0) до (Width-1, Height-1).
type Region struct {
	Name   string `yaml:"name" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	// Bounding box для пересчета ячейки в координаты
	MinLatitude  float64 `yaml:"min_latitude" json:"min_latitude"`
	MaxLatitude  float64 `yaml:"max_latitude" json:"max_latitude"`
	MinLongitude float64 `yaml:"min_longitude" json:"min_longitude"`
	MaxLongitude float64 `yaml:"max_longitude" json:"max_longitude"`
}

// fallbackRegion используется для регионов, которых нет в каталоге
var fallbackRegion = Region{
	Width: 10, Height: 10,
	MinLatitude: 32, MaxLatitude: 49,
	MinLongitude: -125, MaxLongitude: -102,
}

// DefaultRegions - регионы западных штатов США
var DefaultRegions = []Region{
	{Name: "California", Width: 10, Height: 20, MinLatitude: 32.5, MaxLatitude: 42, MinLongitude: -124.4, MaxLongitude: -114.1},
	{Name: "Oregon", Width: 8, Height: 10, MinLatitude: 42, MaxLatitude: 46.3, MinLongitude: -124.6, MaxLongitude: -116.5},
	{Name: "Washington", Width: 8, Height: 8, MinLatitude: 45.5, MaxLatitude: 49, MinLongitude: -124.8, MaxLongitude: -116.9},
	{Name: "Arizona", Width: 10, Height: 10, MinLatitude: 31.3, MaxLatitude: 37, MinLongitude: -114.8, MaxLongitude: -109},
	{Name: "Colorado", Width: 8, Height: 8, MinLatitude: 37, MaxLatitude: 41, MinLongitude: -109.1, MaxLongitude: -102},
	{Name: "Montana", Width: 10, Height: 8, MinLatitude: 44.4, MaxLatitude: 49, MinLongitude: -116.1, MaxLongitude: -104},
	{Name: "Idaho", Width: 8, Height: 10, MinLatitude: 42, MaxLatitude: 49, MinLongitude: -117.2, MaxLongitude: -111},
	{Name: "Nevada", Width: 8, Height: 12, MinLatitude: 35, MaxLatitude: 42, MinLongitude: -120, MaxLongitude: -114},
	{Name: "New Mexico", Width: 8, Height: 10, MinLatitude: 31.3, MaxLatitude: 37, MinLongitude: -109.1, MaxLongitude: -103},
	{Name: "Utah", Width: 6, Height: 8, MinLatitude: 37, MaxLatitude: 42, MinLongitude: -114.1, MaxLongitude: -109},
	{Name: "Wyoming", Width: 6, Height: 6, MinLatitude: 41, MaxLatitude: 45, MinLongitude: -111.1, MaxLongitude: -104},
}

// Catalog - неизменяемый справочник регионов, безопасен для конкурентного чтения
type Catalog struct {
	regions map[string]Region
}

func NewCatalog(regions []Region) (*Catalog, error) {
	c := &Catalog{regions: make(map[string]Region, len(regions))}
	for _, r := range regions {
		if r.Name == "" {
			return nil, fmt.Errorf("region name is required")
		}
		if r.Width <= 0 || r.Height <= 0 {
			return nil, fmt.Errorf("region %q: width and height must be positive", r.Name)
		}
		if _, dup := c.regions[r.Name]; dup {
			return nil, fmt.Errorf("region %q declared twice", r.Name)
		}
		c.regions[r.Name] = r
	}
	return c, nil
}

// DefaultCatalog возвращает каталог из DefaultRegions
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultRegions)
	if err != nil {
		panic(err)
	}
	return c
}

type catalogFile struct {
	Regions []Region `yaml:"regions"`
}

// LoadCatalog читает каталог регионов из YAML-файла
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse regions file: %w", err)
	}
	if len(file.Regions) == 0 {
		return nil, fmt.Errorf("regions file %s declares no regions", path)
	}
	return NewCatalog(file.Regions)
}

// Lookup возвращает регион; для неизвестного региона - сетку по умолчанию и false
func (c *Catalog) Lookup(name string) (Region, bool) {
	r, ok := c.regions[name]
	if !ok {
		r = fallbackRegion
		r.Name = name
	}
	return r, ok
}

// Regions возвращает регионы, отсортированные по имени
func (c *Catalog) Regions() []Region {
	out := make([]Region, 0, len(c.regions))
	for _, r := range c.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Validate проверяет, что ячейка (x, y) лежит внутри объявленной сетки региона
func (c *Catalog) Validate(region string, x, y int) bool {
	r, _ := c.Lookup(region)
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}

// ValidateCoordinate - то же самое для готового пространственного ключа
func (c *Catalog) ValidateCoordinate(coord models.GridCoordinate) bool {
	return c.Validate(coord.Region, coord.X, coord.Y)
}

// ApproximateLatLong пересчитывает ячейку в координаты ее угла по bounding box региона
func (c *Catalog) ApproximateLatLong(region string, x, y int) models.LatLong {
	r, _ := c.Lookup(region)
	return models.LatLong{
		Latitude:  r.MinLatitude + float64(y)/float64(r.Height)*(r.MaxLatitude-r.MinLatitude),
		Longitude: r.MinLongitude + float64(x)/float64(r.Width)*(r.MaxLongitude-r.MinLongitude),
	}
}
