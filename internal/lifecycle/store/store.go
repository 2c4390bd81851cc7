package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nymkash-gerel/temuulel-app-sub002/internal/lifecycle"
	"github.com/nymkash-gerel/temuulel-app-sub002/internal/workflow"
)

// tables maps each entity type to the table holding its rows. Every table carries
// id, store_id, status and updated_at columns.
var tables = map[workflow.EntityType]string{
	workflow.EntityReservation:        "reservations",
	workflow.EntityRepairOrder:        "repair_orders",
	workflow.EntityLaundryOrder:       "laundry_orders",
	workflow.EntityLegalCase:          "legal_cases",
	workflow.EntityProject:            "projects",
	workflow.EntityConsultation:       "consultations",
	workflow.EntityPhotoSession:       "photo_sessions",
	workflow.EntityClassBooking:       "class_bookings",
	workflow.EntityDeskBooking:        "desk_bookings",
	workflow.EntityEnrollment:         "enrollments",
	workflow.EntityPurchaseOrder:      "purchase_orders",
	workflow.EntityTreatmentPlan:      "treatment_plans",
	workflow.EntitySubscription:       "subscriptions",
	workflow.EntityServiceRequest:     "service_requests",
	workflow.EntityLabOrder:           "lab_orders",
	workflow.EntityAdmission:          "admissions",
	workflow.EntityMedicalComplaint:   "medical_complaints",
	workflow.EntityHousekeepingTask:   "housekeeping_tasks",
	workflow.EntityMaintenanceRequest: "maintenance_requests",
}

// Table returns the table name for entity.
func Table(entity workflow.EntityType) (string, error) {
	t, ok := tables[entity]
	if !ok {
		return "", fmt.Errorf("%w: %s", workflow.ErrUnknownEntity, entity)
	}

	return t, nil
}

// Store is the PostgreSQL implementation of lifecycle.Repository.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ lifecycle.Repository = (*Store)(nil)

func (s *Store) CurrentStatus(ctx context.Context, entity workflow.EntityType, storeID, id uuid.UUID) (workflow.State, error) {
	table, err := Table(entity)
	if err != nil {
		return "", err
	}

	// Table names come from the fixed map above, never from input.
	query := `SELECT status FROM ` + table + ` WHERE id = $1 AND store_id = $2`

	var status string
	if err := s.db.QueryRowContext(ctx, query, id, storeID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", lifecycle.ErrNotFound
		}

		return "", fmt.Errorf("getting %s status: %w", entity, err)
	}

	return workflow.State(status), nil
}

func (s *Store) SetStatus(ctx context.Context, entity workflow.EntityType, storeID, id uuid.UUID, from, to workflow.State) error {
	table, err := Table(entity)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + table + `
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND store_id = $3 AND status = $4
	`

	res, err := s.db.ExecContext(ctx, query, to, id, storeID, from)
	if err != nil {
		return fmt.Errorf("updating %s status: %w", entity, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return lifecycle.ErrStatusConflict
	}

	return nil
}
