package student_test

import (
	"context"
	"errors"
	"testing"

	"student-management/internal/logger"
	"student-management/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []student.Event
}

func (r *recordingSink) SendMessage(value interface{}) error {
	r.events = append(r.events, value.(student.Event))
	return nil
}

func newTestService() (student.Service, *recordingSink) {
	sink := &recordingSink{}
	return student.NewService(student.NewMemoryRepository(), sink, logger.New()), sink
}

func createStudent(t *testing.T, svc student.Service, name, email, department string) *student.Student {
	t.Helper()
	created, err := svc.CreateStudent(context.Background(), &student.Student{
		Name:       name,
		Email:      email,
		Department: department,
	})
	require.NoError(t, err)
	return created
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns fresh unique ids and equal timestamps", func(t *testing.T) {
		svc, _ := newTestService()

		first := createStudent(t, svc, "John Doe", "john@x.com", "CS")
		second := createStudent(t, svc, "Jane Doe", "jane@x.com", "CS")

		assert.NotZero(t, first.ID)
		assert.NotZero(t, second.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	})

	t.Run("create then get returns identical record", func(t *testing.T) {
		svc, _ := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

		fetched, err := svc.GetStudentByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
	})

	t.Run("duplicate email fails and keeps a single record", func(t *testing.T) {
		svc, _ := newTestService()

		createStudent(t, svc, "John Doe", "john@x.com", "CS")

		_, err := svc.CreateStudent(ctx, &student.Student{
			Name: "Impostor", Email: "john@x.com", Department: "Math",
		})
		assert.ErrorIs(t, err, student.ErrDuplicateEmail)

		all, err := svc.GetAllStudents(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "John Doe", all[0].Name)
	})

	t.Run("email uniqueness is case-sensitive", func(t *testing.T) {
		svc, _ := newTestService()

		createStudent(t, svc, "John Doe", "john@x.com", "CS")

		_, err := svc.CreateStudent(ctx, &student.Student{
			Name: "Other", Email: "John@x.com", Department: "CS",
		})
		assert.NoError(t, err)
	})

	t.Run("publishes created event", func(t *testing.T) {
		svc, sink := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

		require.Len(t, sink.events, 1)
		assert.Equal(t, student.EventCreated, sink.events[0].Type)
		assert.Equal(t, created.ID, sink.events[0].Student.ID)
	})
}

func TestUpdateStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields wholesale and refreshes updatedAt", func(t *testing.T) {
		svc, _ := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

		updated, err := svc.UpdateStudent(ctx, created.ID, &student.Student{
			Name: "A", Email: "a@b.c", Department: "D",
		})
		require.NoError(t, err)

		fetched, err := svc.GetStudentByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Equal(t, "A", fetched.Name)
		assert.Equal(t, "a@b.c", fetched.Email)
		assert.Equal(t, "D", fetched.Department)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, created.CreatedAt, fetched.CreatedAt)
		assert.False(t, fetched.UpdatedAt.Before(created.CreatedAt))
		assert.Equal(t, updated, fetched)
	})

	t.Run("same email never conflicts", func(t *testing.T) {
		svc, _ := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

		_, err := svc.UpdateStudent(ctx, created.ID, &student.Student{
			Name: "John D.", Email: "john@x.com", Department: "CS",
		})
		assert.NoError(t, err)
	})

	t.Run("email of another student conflicts", func(t *testing.T) {
		svc, _ := newTestService()

		createStudent(t, svc, "John Doe", "john@x.com", "CS")
		other := createStudent(t, svc, "Jane Doe", "jane@x.com", "Math")

		_, err := svc.UpdateStudent(ctx, other.ID, &student.Student{
			Name: "Jane Doe", Email: "john@x.com", Department: "Math",
		})
		assert.ErrorIs(t, err, student.ErrDuplicateEmail)
	})

	t.Run("unknown id fails with not found", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.UpdateStudent(ctx, 999999, &student.Student{
			Name: "Ghost", Email: "ghost@x.com", Department: "CS",
		})
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
	})
}

func TestDeleteStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("removal is final", func(t *testing.T) {
		svc, _ := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

		require.NoError(t, svc.DeleteStudent(ctx, created.ID))

		_, err := svc.GetStudentByID(ctx, created.ID)
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
	})

	t.Run("repeat delete fails with not found", func(t *testing.T) {
		svc, _ := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

		require.NoError(t, svc.DeleteStudent(ctx, created.ID))
		err := svc.DeleteStudent(ctx, created.ID)
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
	})

	t.Run("never-existing id fails with not found", func(t *testing.T) {
		svc, _ := newTestService()

		err := svc.DeleteStudent(ctx, 42)
		assert.ErrorIs(t, err, student.ErrStudentNotFound)
	})

	t.Run("frees the email for reuse", func(t *testing.T) {
		svc, _ := newTestService()

		created := createStudent(t, svc, "John Doe", "john@x.com", "CS")
		require.NoError(t, svc.DeleteStudent(ctx, created.ID))

		_, err := svc.CreateStudent(ctx, &student.Student{
			Name: "John Again", Email: "john@x.com", Department: "CS",
		})
		assert.NoError(t, err)
	})
}

func TestGetStudentsByDepartment(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService()
	createStudent(t, svc, "John Doe", "john@x.com", "CS")
	createStudent(t, svc, "Jane Doe", "jane@x.com", "Math")
	createStudent(t, svc, "Jim Doe", "jim@x.com", "CS")

	t.Run("exact match only", func(t *testing.T) {
		students, err := svc.GetStudentsByDepartment(ctx, "CS")
		require.NoError(t, err)
		require.Len(t, students, 2)
		for _, s := range students {
			assert.Equal(t, "CS", s.Department)
		}
	})

	t.Run("no normalization", func(t *testing.T) {
		students, err := svc.GetStudentsByDepartment(ctx, "cs")
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("unmatched department returns empty, not error", func(t *testing.T) {
		students, err := svc.GetStudentsByDepartment(ctx, "Nonexistent Dept")
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("empty department returns empty", func(t *testing.T) {
		students, err := svc.GetStudentsByDepartment(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, students)
	})
}

func TestGetStudentByEmail(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService()
	created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

	found, err := svc.GetStudentByEmail(ctx, "john@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetStudentByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, student.ErrStudentNotFound)
}

func TestExists(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestService()
	created := createStudent(t, svc, "John Doe", "john@x.com", "CS")

	byID, err := svc.ExistsByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, byID)

	byID, err = svc.ExistsByID(ctx, created.ID+1)
	require.NoError(t, err)
	assert.False(t, byID)

	byEmail, err := svc.ExistsByEmail(ctx, "john@x.com")
	require.NoError(t, err)
	assert.True(t, byEmail)

	byEmail, err = svc.ExistsByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.False(t, byEmail)
}

type failingSink struct{}

func (failingSink) SendMessage(interface{}) error { return errors.New("broker down") }

func TestEventFailuresDoNotFailOperations(t *testing.T) {
	svc := student.NewService(student.NewMemoryRepository(), failingSink{}, logger.New())

	created, err := svc.CreateStudent(context.Background(), &student.Student{
		Name: "John Doe", Email: "john@x.com", Department: "CS",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}
