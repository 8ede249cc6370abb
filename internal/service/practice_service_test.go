package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/scope"
)

func newPracticeFixture() (*fakePracticeRepo, PracticeService) {
	teacher := models.User{ID: 1, Name: "Teacher", Email: "t@example.com", Role: models.RoleTeacher}
	student := models.User{ID: 2, Name: "Student", Email: "s@example.com", Role: models.RoleStudent}
	rival := models.User{ID: 3, Name: "Rival", Email: "r@example.com", Role: models.RoleTeacher}

	practices := newFakePracticeRepo()
	users := newFakeUserRepo(teacher, student, rival)
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewPracticeService(practices, users, validate, testLogger())
	return practices, svc
}

func TestCreatePracticeRejectsStudentTeacher(t *testing.T) {
	practices, svc := newPracticeFixture()

	_, err := svc.Create(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, dto.PracticeCreateRequest{
		Identifier: "P-1",
		Title:      "Essay",
		TeacherID:  2, // student account
	})
	require.Error(t, err)

	var roleErr *apperr.RoleViolation
	require.ErrorAs(t, err, &roleErr)
	require.Equal(t, "practice teacher", roleErr.Entity)
	require.Empty(t, practices.practices)
}

func TestCreatePracticeTeachersOnlyAssignThemselves(t *testing.T) {
	practices, svc := newPracticeFixture()

	_, err := svc.Create(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, dto.PracticeCreateRequest{
		Identifier: "P-1",
		Title:      "Essay",
		TeacherID:  3, // another teacher
	})
	require.Error(t, err)

	var authErr *apperr.Authorization
	require.ErrorAs(t, err, &authErr)
	require.Empty(t, practices.practices)

	// Admins assign any teacher.
	created, err := svc.Create(context.Background(), scope.Actor{ID: 9, Role: models.RoleAdmin}, dto.PracticeCreateRequest{
		Identifier: "P-1",
		Title:      "Essay",
		TeacherID:  3,
	})
	require.NoError(t, err)
	require.Equal(t, uint(3), practices.practices[created.ID].TeacherID)
}

func TestUpdatePracticeOwnershipEnforced(t *testing.T) {
	practices, svc := newPracticeFixture()
	practices.practices[10] = models.Practice{ID: 10, Identifier: "P-1", Title: "Essay", TeacherID: 1}

	title := "Rewritten"
	_, err := svc.Update(context.Background(), scope.Actor{ID: 3, Role: models.RoleTeacher}, 10, dto.PracticeUpdateRequest{Title: &title})
	require.Error(t, err)

	var authErr *apperr.Authorization
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "Essay", practices.practices[10].Title)

	updated, err := svc.Update(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 10, dto.PracticeUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Rewritten", updated.Title)
}

func TestDeletePracticeMissing(t *testing.T) {
	_, svc := newPracticeFixture()

	err := svc.Delete(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 66)
	require.Error(t, err)

	var notFound *apperr.NotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "practice", notFound.Entity)
}
