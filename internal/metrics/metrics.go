package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	studentsCreated     metric.Int64Counter
	studentsUpdated     metric.Int64Counter
	studentsDeleted     metric.Int64Counter
	studentsViewed      metric.Int64Counter
	studentsListViewed  metric.Int64Counter
	departmentsFiltered metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.studentsCreated, err = meter.Int64Counter(
		"student_management.students.created",
		metric.WithDescription("Total number of students created"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsUpdated, err = meter.Int64Counter(
		"student_management.students.updated",
		metric.WithDescription("Total number of students updated"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsDeleted, err = meter.Int64Counter(
		"student_management.students.deleted",
		metric.WithDescription("Total number of students deleted"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsViewed, err = meter.Int64Counter(
		"student_management.students.viewed",
		metric.WithDescription("Total number of single-student lookups"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsListViewed, err = meter.Int64Counter(
		"student_management.students.list_viewed",
		metric.WithDescription("Total number of times the students list was viewed"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.departmentsFiltered, err = meter.Int64Counter(
		"student_management.students.department_filtered",
		metric.WithDescription("Total number of department filter queries"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordStudentCreated(ctx context.Context) {
	m.studentsCreated.Add(ctx, 1)
}

func (m *Metrics) RecordStudentUpdated(ctx context.Context) {
	m.studentsUpdated.Add(ctx, 1)
}

func (m *Metrics) RecordStudentDeleted(ctx context.Context) {
	m.studentsDeleted.Add(ctx, 1)
}

func (m *Metrics) RecordStudentViewed(ctx context.Context) {
	m.studentsViewed.Add(ctx, 1)
}

func (m *Metrics) RecordStudentsListViewed(ctx context.Context) {
	m.studentsListViewed.Add(ctx, 1)
}

func (m *Metrics) RecordDepartmentFiltered(ctx context.Context) {
	m.departmentsFiltered.Add(ctx, 1)
}
