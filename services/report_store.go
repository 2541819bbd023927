package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"map-action-api/models"
)

// ReportStore persists completed analyses in PostgreSQL so past
// incidents can be reviewed and exported without re-running the
// pipeline.
type ReportStore struct {
	db *sql.DB
}

// NewReportStore builds the store and ensures its schema exists.
func NewReportStore(db *sql.DB) (*ReportStore, error) {
	store := &ReportStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *ReportStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id            TEXT PRIMARY KEY,
			latitude      DOUBLE PRECISION NOT NULL,
			longitude     DOUBLE PRECISION NOT NULL,
			location      TEXT NOT NULL DEFAULT '',
			incident_type TEXT NOT NULL,
			start_date    DATE NOT NULL,
			end_date      DATE NOT NULL,
			narrative     TEXT NOT NULL,
			ndvi_series   JSONB NOT NULL DEFAULT '[]',
			ndwi_series   JSONB NOT NULL DEFAULT '[]',
			landcover     JSONB NOT NULL DEFAULT '{}',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure analysis_reports schema: %w", err)
	}
	return nil
}

// Save stores one completed analysis and returns the new report id.
func (s *ReportStore) Save(ctx context.Context, req models.AnalysisRequest, result *models.AnalysisResult) (string, error) {
	ndviJSON, err := json.Marshal(result.RawData.NDVI)
	if err != nil {
		return "", fmt.Errorf("marshal ndvi series: %w", err)
	}
	ndwiJSON, err := json.Marshal(result.RawData.NDWI)
	if err != nil {
		return "", fmt.Errorf("marshal ndwi series: %w", err)
	}
	landcoverJSON, err := json.Marshal(result.RawData.LandCover)
	if err != nil {
		return "", fmt.Errorf("marshal landcover: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_reports
			(id, latitude, longitude, location, incident_type, start_date, end_date, narrative, ndvi_series, ndwi_series, landcover)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, result.Latitude, result.Longitude, req.LocationLabel, req.IncidentType.String(),
		req.StartDate, req.EndDate, result.Narrative, ndviJSON, ndwiJSON, landcoverJSON)
	if err != nil {
		return "", fmt.Errorf("insert analysis report: %w", err)
	}
	return id, nil
}

// Get loads one stored report by id. Returns sql.ErrNoRows when absent.
func (s *ReportStore) Get(ctx context.Context, id string) (*models.AnalysisReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, latitude, longitude, location, incident_type, start_date, end_date, narrative,
		       ndvi_series, ndwi_series, landcover, created_at
		FROM analysis_reports
		WHERE id = $1
	`, id)
	return scanReport(row)
}

// List returns the most recent reports, newest first.
func (s *ReportStore) List(ctx context.Context, limit int) ([]models.AnalysisReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, latitude, longitude, location, incident_type, start_date, end_date, narrative,
		       ndvi_series, ndwi_series, landcover, created_at
		FROM analysis_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis reports: %w", err)
	}
	defer rows.Close()

	var reports []models.AnalysisReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			log.Printf("scan analysis report row: %v", err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.AnalysisReport, error) {
	var (
		report        models.AnalysisReport
		ndviJSON      []byte
		ndwiJSON      []byte
		landcoverJSON []byte
		start, end    time.Time
	)
	err := row.Scan(&report.ID, &report.Latitude, &report.Longitude, &report.LocationLabel,
		&report.IncidentType, &start, &end, &report.Narrative,
		&ndviJSON, &ndwiJSON, &landcoverJSON, &report.CreatedAt)
	if err != nil {
		return nil, err
	}
	report.StartDate = start
	report.EndDate = end

	if err := json.Unmarshal(ndviJSON, &report.NDVI); err != nil {
		return nil, fmt.Errorf("decode ndvi series: %w", err)
	}
	if err := json.Unmarshal(ndwiJSON, &report.NDWI); err != nil {
		return nil, fmt.Errorf("decode ndwi series: %w", err)
	}
	if err := json.Unmarshal(landcoverJSON, &report.LandCover); err != nil {
		return nil, fmt.Errorf("decode landcover: %w", err)
	}
	return &report, nil
}
