package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smsup/results-engine/internal/models"
	appErrors "github.com/smsup/results-engine/pkg/errors"
)

type mockStudentRepo struct {
	students []models.Student
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			return &m.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.students, len(m.students), nil
}

func TestStudentServiceGet(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{ID: "stu-1", FullName: "Aisha Bello", ClassName: "JSS 3A"}}}
	svc := NewStudentService(repo, zap.NewNop())

	student, err := svc.Get(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "Aisha Bello", student.FullName)

	_, err = svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentServiceListPagination(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{ID: "stu-1"}, {ID: "stu-2"}, {ID: "stu-3"}}}
	svc := NewStudentService(repo, zap.NewNop())

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, students, 3)
	require.NotNil(t, pagination)
	assert.Equal(t, 3, pagination.TotalItems)
	assert.Equal(t, 2, pagination.TotalPages)
}
