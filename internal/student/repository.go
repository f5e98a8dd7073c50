package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Repository is the full persistence surface of the service. Any storage
// engine implementing these eight methods is substitutable; see memory.go
// for the in-memory variant used by tests.
type Repository interface {
	FindAll(ctx context.Context) ([]Student, error)
	FindByID(ctx context.Context, id int) (*Student, error)
	FindByEmail(ctx context.Context, email string) (*Student, error)
	FindByDepartment(ctx context.Context, department string) ([]Student, error)
	ExistsByID(ctx context.Context, id int) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, student *Student) (*Student, error)
	DeleteByID(ctx context.Context, id int) error
}

type repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAll(ctx context.Context) ([]Student, error) {
	var students []Student
	err := r.db.NewSelect().Model(&students).Order("id ASC").Scan(ctx)
	if students == nil {
		students = []Student{}
	}
	return students, err
}

func (r *repository) FindByID(ctx context.Context, id int) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Student, error) {
	student := new(Student)
	err := r.db.NewSelect().Model(student).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

func (r *repository) FindByDepartment(ctx context.Context, department string) ([]Student, error) {
	var students []Student
	err := r.db.NewSelect().
		Model(&students).
		Where("department = ?", department).
		Order("id ASC").
		Scan(ctx)
	if students == nil {
		students = []Student{}
	}
	return students, err
}

func (r *repository) ExistsByID(ctx context.Context, id int) (bool, error) {
	return r.db.NewSelect().Model((*Student)(nil)).Where("id = ?", id).Exists(ctx)
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.db.NewSelect().Model((*Student)(nil)).Where("email = ?", email).Exists(ctx)
}

// Save inserts when the student has no id yet, updates otherwise.
// Timestamps are assigned here: insert sets both to the same instant,
// update refreshes updated_at only.
func (r *repository) Save(ctx context.Context, student *Student) (*Student, error) {
	now := time.Now().UTC()

	if student.ID == 0 {
		student.CreatedAt = now
		student.UpdatedAt = now
		_, err := r.db.NewInsert().Model(student).Returning("*").Exec(ctx)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicateEmail
			}
			return nil, err
		}
		return student, nil
	}

	student.UpdatedAt = now
	result, err := r.db.NewUpdate().Model(student).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

func (r *repository) DeleteByID(ctx context.Context, id int) error {
	student := &Student{ID: id}
	result, err := r.db.NewDelete().Model(student).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is the storage-level unique
// constraint firing. This is the authoritative backstop for the
// check-then-insert race on email.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.IntegrityViolation()
	}
	return false
}
