package scheduling

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

type appointmentRepoPG struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

func (r *appointmentRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const appointmentCols = `id, patient_id, practitioner_id, start_time, status, reason, created_at, updated_at`

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointment (id, patient_id, practitioner_id, start_time, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.PatientID, a.PractitionerID, a.StartTime, a.Status, a.Reason,
	)
	return translateErr(err)
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET
			patient_id=$2, practitioner_id=$3, start_time=$4, status=$5, reason=$6, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.PatientID, a.PractitionerID, a.StartTime, a.Status, a.Reason,
	)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, ``, nil, limit, offset)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *appointmentRepoPG) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE practitioner_id = $1`, []interface{}{practitionerID}, limit, offset)
}

func (r *appointmentRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Appointment, int, error) {
	return r.listWhere(ctx, `WHERE status = $1`, []interface{}{status}, limit, offset)
}

func (r *appointmentRepoPG) listWhere(ctx context.Context, where string, args []interface{}, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM appointment %s ORDER BY start_time LIMIT $%d OFFSET $%d`,
		appointmentCols, where, n+1, n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var appointments []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PractitionerID, &a.StartTime, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		appointments = append(appointments, &a)
	}
	return appointments, total, rows.Err()
}

func (r *appointmentRepoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, patientID).Scan(&n)
	return n, err
}

func (r *appointmentRepoPG) CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment WHERE practitioner_id = $1`, practitionerID).Scan(&n)
	return n, err
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PractitionerID, &a.StartTime, &a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &a, nil
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return clinicerr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return clinicerr.ErrConflict
		case "23503":
			return clinicerr.ErrNotFound
		}
	}
	return err
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
