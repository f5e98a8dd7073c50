package student

import (
	"context"
	"errors"
	"log/slog"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrDuplicateEmail  = errors.New("duplicate email")
)

// EventSink receives best-effort lifecycle events after successful mutations.
// Satisfied by messaging.Producer.
type EventSink interface {
	SendMessage(value interface{}) error
}

type Service interface {
	GetAllStudents(ctx context.Context) ([]Student, error)
	GetStudentsByDepartment(ctx context.Context, department string) ([]Student, error)
	GetStudentByID(ctx context.Context, id int) (*Student, error)
	GetStudentByEmail(ctx context.Context, email string) (*Student, error)
	CreateStudent(ctx context.Context, input *Student) (*Student, error)
	UpdateStudent(ctx context.Context, id int, input *Student) (*Student, error)
	DeleteStudent(ctx context.Context, id int) error
	ExistsByID(ctx context.Context, id int) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type service struct {
	repo   Repository
	events EventSink
	logger *slog.Logger
}

// NewService wires the domain layer. events may be nil when no broker is
// configured; the service then skips publishing.
func NewService(repo Repository, events EventSink, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *service) GetAllStudents(ctx context.Context) ([]Student, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) GetStudentsByDepartment(ctx context.Context, department string) ([]Student, error) {
	return s.repo.FindByDepartment(ctx, department)
}

func (s *service) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetStudentByEmail(ctx context.Context, email string) (*Student, error) {
	return s.repo.FindByEmail(ctx, email)
}

// CreateStudent pre-checks email uniqueness before inserting. The storage
// constraint remains the backstop: a concurrent insert between the check and
// the save still surfaces as ErrDuplicateEmail from the repository.
func (s *service) CreateStudent(ctx context.Context, input *Student) (*Student, error) {
	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	created, err := s.repo.Save(ctx, input)
	if err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventCreated, Student: created})
	return created, nil
}

// UpdateStudent replaces name, email and department wholesale. The duplicate
// check only fires when the email actually changes; re-submitting the current
// email is never a conflict.
func (s *service) UpdateStudent(ctx context.Context, id int, input *Student) (*Student, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != existing.Email {
		taken, err := s.repo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrDuplicateEmail
		}
	}

	existing.Name = input.Name
	existing.Email = input.Email
	existing.Department = input.Department

	updated, err := s.repo.Save(ctx, existing)
	if err != nil {
		return nil, err
	}

	s.publish(Event{Type: EventUpdated, Student: updated})
	return updated, nil
}

func (s *service) DeleteStudent(ctx context.Context, id int) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrStudentNotFound
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish(Event{Type: EventDeleted, ID: id})
	return nil
}

func (s *service) ExistsByID(ctx context.Context, id int) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

// publish is fire-and-forget: a broker outage never fails the operation.
func (s *service) publish(event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.SendMessage(event); err != nil {
		s.logger.Warn("failed to publish student event", "type", event.Type, "error", err)
	}
}
