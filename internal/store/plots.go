package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campolibro/campolibro/internal/geo"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CreatePlot validates the initial boundary, computes its area, and persists
// the plot together with geometry version 1 in one transaction.
func (s *Store) CreatePlot(ctx context.Context, plot *geo.Plot, geometry orb.Polygon, changedBy string) (*geo.GeometryVersion, error) {
	if len(geometry) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", geo.ErrInvalidGeometry)
	}
	if err := geo.ValidateRing(geometry[0]); err != nil {
		return nil, err
	}

	if plot.ID == "" {
		plot.ID = uuid.Must(uuid.NewV7()).String()
	}
	if plot.Name == "" {
		return nil, fmt.Errorf("plot name is required")
	}
	if plot.Code == "" {
		return nil, fmt.Errorf("plot code is required")
	}

	now := time.Now().UTC()
	plot.AreaHectares = geo.AreaHectares(geometry)
	plot.CreatedAt = now

	version := &geo.GeometryVersion{
		PlotID:       plot.ID,
		Version:      1,
		Geometry:     geometry,
		AreaHectares: plot.AreaHectares,
		ChangedAt:    now,
		ChangedBy:    changedBy,
	}

	geomJSON, err := json.Marshal(version.GeoJSON())
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", mapStoreErr(err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plots (id, field_id, name, code, area_ha, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		plot.ID, plot.FieldID, plot.Name, plot.Code, plot.AreaHectares, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: code %s", geo.ErrDuplicatePlot, plot.Code)
		}
		return nil, fmt.Errorf("insert plot: %w", mapStoreErr(err))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plot_versions (plot_id, version, geometry, area_ha, changed_at, changed_by, reason)
		VALUES (?, 1, ?, ?, ?, ?, '')`,
		plot.ID, string(geomJSON), version.AreaHectares, now.Format(time.RFC3339Nano), changedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert version 1: %w", mapStoreErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", mapStoreErr(err))
	}

	return version, nil
}

// AppendGeometryVersion appends a new boundary revision. The next version
// number is computed inside the write transaction, so concurrent revisions of
// the same plot cannot collide, and prior versions are never touched. The
// plot's current area follows the new version.
func (s *Store) AppendGeometryVersion(ctx context.Context, plotID string, geometry orb.Polygon, changedBy, reason string) (*geo.GeometryVersion, error) {
	if len(geometry) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", geo.ErrInvalidGeometry)
	}
	if err := geo.ValidateRing(geometry[0]); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	version := &geo.GeometryVersion{
		PlotID:       plotID,
		Geometry:     geometry,
		AreaHectares: geo.AreaHectares(geometry),
		ChangedAt:    now,
		ChangedBy:    changedBy,
		Reason:       reason,
	}

	geomJSON, err := json.Marshal(version.GeoJSON())
	if err != nil {
		return nil, fmt.Errorf("encode geometry: %w", err)
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", mapStoreErr(err))
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM plots WHERE id = ?`, plotID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check plot: %w", mapStoreErr(err))
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", geo.ErrPlotNotFound, plotID)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM plot_versions WHERE plot_id = ?`, plotID).Scan(&version.Version)
	if err != nil {
		return nil, fmt.Errorf("next version: %w", mapStoreErr(err))
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plot_versions (plot_id, version, geometry, area_ha, changed_at, changed_by, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plotID, version.Version, string(geomJSON), version.AreaHectares,
		now.Format(time.RFC3339Nano), changedBy, reason,
	)
	if err != nil {
		return nil, fmt.Errorf("insert version %d: %w", version.Version, mapStoreErr(err))
	}

	_, err = tx.ExecContext(ctx, `UPDATE plots SET area_ha = ? WHERE id = ?`, version.AreaHectares, plotID)
	if err != nil {
		return nil, fmt.Errorf("update plot area: %w", mapStoreErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", mapStoreErr(err))
	}

	return version, nil
}

func (s *Store) GetPlot(ctx context.Context, id string) (*geo.Plot, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT id, field_id, name, code, area_ha, created_at FROM plots WHERE id = ?`, id)
	return scanPlot(row.Scan)
}

func (s *Store) ListPlots(ctx context.Context, fieldID string) ([]geo.Plot, error) {
	query := `SELECT id, field_id, name, code, area_ha, created_at FROM plots`
	args := []any{}
	if fieldID != "" {
		query += ` WHERE field_id = ?`
		args = append(args, fieldID)
	}
	query += ` ORDER BY code`

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var plots []geo.Plot
	for rows.Next() {
		p, err := scanPlot(rows.Scan)
		if err != nil {
			return nil, err
		}
		plots = append(plots, *p)
	}
	return plots, rows.Err()
}

func (s *Store) GetGeometryVersion(ctx context.Context, plotID string, version int) (*geo.GeometryVersion, error) {
	row := s.reader.QueryRowContext(ctx,
		`SELECT plot_id, version, geometry, area_ha, changed_at, changed_by, reason
		FROM plot_versions WHERE plot_id = ? AND version = ?`, plotID, version)
	v, err := scanVersion(row.Scan)
	if err == errNoVersion {
		return nil, fmt.Errorf("%w: plot %s version %d", geo.ErrVersionNotFound, plotID, version)
	}
	return v, err
}

func (s *Store) ListGeometryVersions(ctx context.Context, plotID string) ([]geo.GeometryVersion, error) {
	if _, err := s.GetPlot(ctx, plotID); err != nil {
		return nil, err
	}

	rows, err := s.reader.QueryContext(ctx,
		`SELECT plot_id, version, geometry, area_ha, changed_at, changed_by, reason
		FROM plot_versions WHERE plot_id = ? ORDER BY version`, plotID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", mapStoreErr(err))
	}
	defer rows.Close()

	var versions []geo.GeometryVersion
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// CompareGeometryVersions loads the two requested snapshots and reports the
// area delta. Read-only; either direction is allowed.
func (s *Store) CompareGeometryVersions(ctx context.Context, plotID string, from, to int) (*geo.VersionComparison, error) {
	fromV, err := s.GetGeometryVersion(ctx, plotID, from)
	if err != nil {
		return nil, err
	}
	toV, err := s.GetGeometryVersion(ctx, plotID, to)
	if err != nil {
		return nil, err
	}
	c := geo.Compare(fromV, toV)
	return &c, nil
}

var errNoVersion = fmt.Errorf("no version row")

func scanPlot(scan func(...any) error) (*geo.Plot, error) {
	var p geo.Plot
	var createdAt string
	err := scan(&p.ID, &p.FieldID, &p.Name, &p.Code, &p.AreaHectares, &createdAt)
	if err == sql.ErrNoRows {
		return nil, geo.ErrPlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan plot: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &p, nil
}

func scanVersion(scan func(...any) error) (*geo.GeometryVersion, error) {
	var v geo.GeometryVersion
	var geomJSON, changedAt string
	err := scan(&v.PlotID, &v.Version, &geomJSON, &v.AreaHectares, &changedAt, &v.ChangedBy, &v.Reason)
	if err == sql.ErrNoRows {
		return nil, errNoVersion
	}
	if err != nil {
		return nil, fmt.Errorf("scan version: %w", err)
	}

	g, err := geojson.UnmarshalGeometry([]byte(geomJSON))
	if err != nil {
		return nil, fmt.Errorf("decode stored geometry: %w", err)
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("stored geometry is %s, not Polygon", g.Type)
	}
	v.Geometry = poly
	v.ChangedAt, _ = time.Parse(time.RFC3339Nano, changedAt)
	return &v, nil
}
