package student

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository keeping records in a map.
// It enforces the same unique-email semantics as the Postgres table and
// backs the test suite; anything that accepts a Repository can run on it.
type MemoryRepository struct {
	mu       sync.RWMutex
	students map[int]Student
	nextID   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		students: make(map[int]Student),
		nextID:   1,
	}
}

func (r *MemoryRepository) FindAll(ctx context.Context) ([]Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	students := make([]Student, 0, len(r.students))
	for id := 1; id < r.nextID; id++ {
		if s, ok := r.students[id]; ok {
			students = append(students, s)
		}
	}
	return students, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id int) (*Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.students[id]
	if !ok {
		return nil, ErrStudentNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.students {
		if s.Email == email {
			found := s
			return &found, nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *MemoryRepository) FindByDepartment(ctx context.Context, department string) ([]Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	students := []Student{}
	for id := 1; id < r.nextID; id++ {
		if s, ok := r.students[id]; ok && s.Department == department {
			students = append(students, s)
		}
	}
	return students, nil
}

func (r *MemoryRepository) ExistsByID(ctx context.Context, id int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.students[id]
	return ok, nil
}

func (r *MemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.students {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Save(ctx context.Context, student *Student) (*Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	// Unique email backstop, same as the storage-level constraint.
	for id, s := range r.students {
		if s.Email == student.Email && id != student.ID {
			return nil, ErrDuplicateEmail
		}
	}

	if student.ID == 0 {
		student.ID = r.nextID
		r.nextID++
		student.CreatedAt = now
		student.UpdatedAt = now
	} else {
		existing, ok := r.students[student.ID]
		if !ok {
			return nil, ErrStudentNotFound
		}
		student.CreatedAt = existing.CreatedAt
		student.UpdatedAt = now
	}

	r.students[student.ID] = *student
	return student, nil
}

func (r *MemoryRepository) DeleteByID(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.students[id]; !ok {
		return ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}
