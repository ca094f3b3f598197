package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/db"
)

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, patient_id, practitioner_id, appointment_id, notes, diagnosis, created_at, updated_at`

func (r *recordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_record (id, patient_id, practitioner_id, appointment_id, notes, diagnosis)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.PatientID, rec.PractitionerID, rec.AppointmentID, rec.Notes, rec.Diagnosis,
	)
	return translateErr(err)
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id).
		Scan(&rec.ID, &rec.PatientID, &rec.PractitionerID, &rec.AppointmentID, &rec.Notes, &rec.Diagnosis, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &rec, nil
}

func (r *recordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET notes=$2, diagnosis=$3, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rec.Notes, rec.Diagnosis,
	)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_record WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.listWhere(ctx, "patient_id", patientID, limit, offset)
}

func (r *recordRepoPG) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	return r.listWhere(ctx, "practitioner_id", practitionerID, limit, offset)
}

func (r *recordRepoPG) listWhere(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*MedicalRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM medical_record WHERE %s = $1`, column), id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM medical_record WHERE %s = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, recordCols, column),
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*MedicalRecord
	for rows.Next() {
		var rec MedicalRecord
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.PractitionerID, &rec.AppointmentID, &rec.Notes, &rec.Diagnosis, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		recs = append(recs, &rec)
	}
	return recs, total, rows.Err()
}

func (r *recordRepoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *recordRepoPG) CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record WHERE practitioner_id = $1`, practitionerID).Scan(&n)
	return n, err
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return clinicerr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return clinicerr.ErrNotFound
	}
	return err
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
