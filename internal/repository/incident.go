package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/shenikar/wildfire_broadcasting_system/internal/models"
	"github.com/shenikar/wildfire_broadcasting_system/internal/service"
)

const uniqueViolation = "23505"

const selectIncidents = `
	SELECT
		id,
		name,
		region,
		grid_x,
		grid_y,
		latitude,
		longitude,
		start_date,
		status,
		acres,
		containment_percentage,
		conditions,
		resources,
		evacuation_orders,
		cause,
		fuel_types,
		terrain_types,
		updated_at
	FROM incidents`

type IncidentRepository struct {
	db    *pgxpool.Pool
	clock clockwork.Clock
}

func NewIncidentRepository(db *pgxpool.Pool, clock clockwork.Clock) service.IncidentRepository {
	return &IncidentRepository{
		db:    db,
		clock: clock,
	}
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	if incident.UpdatedAt.IsZero() {
		incident.UpdatedAt = r.clock.Now().UTC()
	}
	query := `
		INSERT INTO incidents (
			id, name, region, grid_x, grid_y, latitude, longitude, start_date, status,
			acres, containment_percentage, conditions, resources, evacuation_orders,
			cause, fuel_types, terrain_types, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	lat, lon := coordinatesArgs(incident.Location.Coordinates)
	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.Name,
		incident.Location.Region,
		incident.Location.GridCell.X,
		incident.Location.GridCell.Y,
		lat,
		lon,
		incident.StartDate,
		string(incident.Status),
		incident.Size.Acres,
		incident.Size.ContainmentPercentage,
		incident.Conditions,
		incident.Resources,
		nonNil(incident.EvacuationOrders),
		incident.Cause,
		nonNil(incident.FuelTypes),
		nonNil(incident.TerrainTypes),
		incident.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: incident %s already exists", models.ErrValidation, incident.ID)
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его id
func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	incident, err := scanIncident(r.db.QueryRow(ctx, selectIncidents+` WHERE id = $1;`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// List возвращает инциденты по фильтру, последние обновленные первыми
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	query, args := buildListQuery(filter)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

func (r *IncidentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count, nil
}

// GetNth возвращает n-й инцидент в порядке id
func (r *IncidentRepository) GetNth(ctx context.Context, n int) (*models.Incident, error) {
	incident, err := scanIncident(r.db.QueryRow(ctx, selectIncidents+` ORDER BY id OFFSET $1 LIMIT 1;`, n))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident #%d: %w", n, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by offset: %w", err)
	}
	return incident, nil
}

// Update сливает патч с записью внутри транзакции.
// SELECT ... FOR UPDATE блокирует строку, поэтому конкурентные писатели одной записи выстраиваются в очередь.
func (r *IncidentRepository) Update(ctx context.Context, id string, patch models.IncidentPatch) (before, after *models.Incident, err error) {
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		current, err := scanIncident(tx.QueryRow(ctx, selectIncidents+` WHERE id = $1 FOR UPDATE;`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("failed to lock incident: %w", err)
		}

		next, err := models.Merge(current, patch, r.clock.Now().UTC())
		if err != nil {
			return err
		}

		query := `
			UPDATE incidents SET
				name = $1,
				latitude = $2,
				longitude = $3,
				status = $4,
				acres = $5,
				containment_percentage = $6,
				conditions = $7,
				resources = $8,
				evacuation_orders = $9,
				cause = $10,
				updated_at = $11
			WHERE id = $12;
		`
		lat, lon := coordinatesArgs(next.Location.Coordinates)
		if _, err := tx.Exec(ctx, query,
			next.Name,
			lat,
			lon,
			string(next.Status),
			next.Size.Acres,
			next.Size.ContainmentPercentage,
			next.Conditions,
			next.Resources,
			nonNil(next.EvacuationOrders),
			next.Cause,
			next.UpdatedAt,
			id,
		); err != nil {
			return fmt.Errorf("failed to update incident: %w", err)
		}

		before, after = current, next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Clear удаляет все инциденты
func (r *IncidentRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM incidents;`); err != nil {
		return fmt.Errorf("failed to clear incidents: %w", err)
	}
	return nil
}

// buildListQuery собирает SELECT с условиями фильтра; плейсхолдеры нумеруются по порядку аргументов
func buildListQuery(f models.IncidentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Region != "" {
		add("region = $%d", f.Region)
	}
	if f.Cause != "" {
		add("cause = $%d", f.Cause)
	}
	if f.GridX != nil {
		add("grid_x = $%d", *f.GridX)
	}
	if f.GridY != nil {
		add("grid_y = $%d", *f.GridY)
	}
	if f.MinAcres != nil {
		add("acres >= $%d", *f.MinAcres)
	}
	if f.MaxAcres != nil {
		add("acres <= $%d", *f.MaxAcres)
	}
	if f.Range != nil {
		add("region = $%d", f.Range.Region)
		add("grid_x >= $%d", f.Range.MinX)
		add("grid_x <= $%d", f.Range.MaxX)
		add("grid_y >= $%d", f.Range.MinY)
		add("grid_y <= $%d", f.Range.MaxY)
	}

	var b strings.Builder
	b.WriteString(selectIncidents)
	if len(conds) > 0 {
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString("\n\tORDER BY updated_at DESC, id")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, "\n\tLIMIT $%d", len(args))
	}
	b.WriteString(";")
	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	var (
		incident models.Incident
		status   string
		lat, lon *float64
	)
	err := row.Scan(
		&incident.ID,
		&incident.Name,
		&incident.Location.Region,
		&incident.Location.GridCell.X,
		&incident.Location.GridCell.Y,
		&lat,
		&lon,
		&incident.StartDate,
		&status,
		&incident.Size.Acres,
		&incident.Size.ContainmentPercentage,
		&incident.Conditions,
		&incident.Resources,
		&incident.EvacuationOrders,
		&incident.Cause,
		&incident.FuelTypes,
		&incident.TerrainTypes,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Status = models.Status(status)
	if lat != nil && lon != nil {
		incident.Location.Coordinates = &models.LatLong{Latitude: *lat, Longitude: *lon}
	}
	return &incident, nil
}

func coordinatesArgs(c *models.LatLong) (lat, lon *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Latitude, &c.Longitude
}

// nonNil заменяет nil-срез пустым, чтобы в NOT NULL колонки не попадал NULL
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
