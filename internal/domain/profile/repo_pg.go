package profile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/domain/clinicerr"
	"github.com/clinicore/clinicore/internal/platform/db"
)

// -- Practitioner Repository --

type practitionerRepoPG struct {
	pool *pgxpool.Pool
}

func NewPractitionerRepo(pool *pgxpool.Pool) PractitionerRepository {
	return &practitionerRepoPG{pool: pool}
}

func (r *practitionerRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const practitionerCols = `id, account_id, specialization, availability, experience_years, contact_number, created_at, updated_at`

func (r *practitionerRepoPG) Create(ctx context.Context, p *Practitioner) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO practitioner (id, account_id, specialization, availability, experience_years, contact_number)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.AccountID, p.Specialization, p.Availability, p.ExperienceYears, p.ContactNumber,
	)
	return translateErr(err)
}

func (r *practitionerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return scanPractitioner(r.conn(ctx).QueryRow(ctx, `SELECT `+practitionerCols+` FROM practitioner WHERE id = $1`, id))
}

func (r *practitionerRepoPG) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Practitioner, error) {
	return scanPractitioner(r.conn(ctx).QueryRow(ctx, `SELECT `+practitionerCols+` FROM practitioner WHERE account_id = $1`, accountID))
}

func (r *practitionerRepoPG) Update(ctx context.Context, p *Practitioner) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE practitioner SET
			specialization=$2, availability=$3, experience_years=$4, contact_number=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Specialization, p.Availability, p.ExperienceYears, p.ContactNumber,
	)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *practitionerRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM practitioner WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *practitionerRepoPG) List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM practitioner`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+practitionerCols+` FROM practitioner ORDER BY specialization, created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var practitioners []*Practitioner
	for rows.Next() {
		var p Practitioner
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Specialization, &p.Availability, &p.ExperienceYears, &p.ContactNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		practitioners = append(practitioners, &p)
	}
	return practitioners, total, rows.Err()
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.ID, &p.AccountID, &p.Specialization, &p.Availability, &p.ExperienceYears, &p.ContactNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
}

// -- Patient Repository --

type patientRepoPG struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, account_id, email, date_of_birth, medical_history, contact_number, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, account_id, email, date_of_birth, medical_history, contact_number)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.AccountID, p.Email, p.DateOfBirth, p.MedicalHistory, p.ContactNumber,
	)
	return translateErr(err)
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE account_id = $1`, accountID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			email=$2, date_of_birth=$3, medical_history=$4, contact_number=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Email, p.DateOfBirth, p.MedicalHistory, p.ContactNumber,
	)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.ErrNotFound
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Email, &p.DateOfBirth, &p.MedicalHistory, &p.ContactNumber, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.AccountID, &p.Email, &p.DateOfBirth, &p.MedicalHistory, &p.ContactNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return &p, nil
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
		case "23505": // unique_violation: second profile for the same account
			return clinicerr.ErrConflict
		case "23503": // foreign_key_violation: unknown account
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
