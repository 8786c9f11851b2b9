package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

// Mocks

type MockExerciseRepository struct {
	mock.Mock
}

func (m *MockExerciseRepository) Create(ctx context.Context, exercise *entities.ExerciseAssignment) error {
	args := m.Called(ctx, exercise)
	return args.Error(0)
}

func (m *MockExerciseRepository) GetByID(ctx context.Context, id string) (*entities.ExerciseAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ExerciseAssignment), args.Error(1)
}

func (m *MockExerciseRepository) ListByPatient(ctx context.Context, rehabPatientID string) ([]*entities.ExerciseAssignment, error) {
	args := m.Called(ctx, rehabPatientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ExerciseAssignment), args.Error(1)
}

func (m *MockExerciseRepository) CountByPatient(ctx context.Context, rehabPatientID string) (int, error) {
	args := m.Called(ctx, rehabPatientID)
	return args.Int(0), args.Error(1)
}

func (m *MockExerciseRepository) Update(ctx context.Context, exercise *entities.ExerciseAssignment) error {
	args := m.Called(ctx, exercise)
	return args.Error(0)
}

func (m *MockExerciseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExerciseRepository) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	args := m.Called(ctx, rehabPatientID)
	return args.Error(0)
}

type MockProgressLogRepository struct {
	mock.Mock
}

func (m *MockProgressLogRepository) GetByPatientAndDay(ctx context.Context, rehabPatientID string, day time.Time) (*entities.ProgressLog, error) {
	args := m.Called(ctx, rehabPatientID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProgressLog), args.Error(1)
}

func (m *MockProgressLogRepository) Upsert(ctx context.Context, log *entities.ProgressLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockProgressLogRepository) ListSince(ctx context.Context, rehabPatientID string, since time.Time) ([]*entities.ProgressLog, error) {
	args := m.Called(ctx, rehabPatientID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ProgressLog), args.Error(1)
}

func (m *MockProgressLogRepository) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	args := m.Called(ctx, rehabPatientID)
	return args.Error(0)
}

type MockPatientRepository struct {
	mock.Mock
}

func (m *MockPatientRepository) GetByRehabID(ctx context.Context, rehabPatientID string) (*entities.Patient, error) {
	args := m.Called(ctx, rehabPatientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Patient), args.Error(1)
}

func (m *MockPatientRepository) UpdateStreak(ctx context.Context, rehabPatientID string, streak int, lastUpdate time.Time) error {
	args := m.Called(ctx, rehabPatientID, streak, lastUpdate)
	return args.Error(0)
}

func (m *MockPatientRepository) Delete(ctx context.Context, rehabPatientID string) error {
	args := m.Called(ctx, rehabPatientID)
	return args.Error(0)
}

type MockRehabProfileRepository struct {
	mock.Mock
}

func (m *MockRehabProfileRepository) GetByPatient(ctx context.Context, rehabPatientID string) (*entities.RehabProfile, error) {
	args := m.Called(ctx, rehabPatientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RehabProfile), args.Error(1)
}

func (m *MockRehabProfileRepository) GetByPatientAndDoctor(ctx context.Context, rehabPatientID, doctorID string) (*entities.RehabProfile, error) {
	args := m.Called(ctx, rehabPatientID, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RehabProfile), args.Error(1)
}

func (m *MockRehabProfileRepository) DeleteByPatient(ctx context.Context, rehabPatientID string) error {
	args := m.Called(ctx, rehabPatientID)
	return args.Error(0)
}
