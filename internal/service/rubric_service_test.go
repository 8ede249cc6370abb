package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

func newRubricFixture() (*fakeRubricRepo, *fakePracticeRepo, *fakeActivityRepo, RubricService) {
	teacher := models.User{ID: 1, Name: "Teacher", Email: "t@example.com", Role: models.RoleTeacher}
	student := models.User{ID: 2, Name: "Student", Email: "s@example.com", Role: models.RoleStudent}
	rival := models.User{ID: 3, Name: "Rival", Email: "r@example.com", Role: models.RoleTeacher}

	practice := models.Practice{ID: 10, Identifier: "P-1", Title: "Essay", TeacherID: teacher.ID}

	rubrics := newFakeRubricRepo()
	practices := newFakePracticeRepo(practice)
	users := newFakeUserRepo(teacher, student, rival)
	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := &fakeActivityRepo{}
	recorder := NewActivityService(activityRepo, testLogger())

	svc := NewRubricService(rubrics, practices, users, validate, recorder, testLogger())
	return rubrics, practices, activityRepo, svc
}

func TestCreateRubricRejectsNonPositiveMaxScore(t *testing.T) {
	rubrics, _, _, svc := newRubricFixture()

	for _, maxScore := range []int{0, -3} {
		_, err := svc.Create(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, dto.RubricCreateRequest{
			Name:     "Broken",
			Criteria: []dto.CriterionRequest{{Name: "Clarity", MaxScore: maxScore}},
		})
		require.Error(t, err, "max score %d must be rejected", maxScore)

		var validationErr *apperr.Validation
		require.ErrorAs(t, err, &validationErr)
	}
	require.Empty(t, rubrics.rubrics)
}

func TestCreateRubricRejectsStudentEvaluator(t *testing.T) {
	rubrics, _, _, svc := newRubricFixture()

	studentID := uint(2)
	_, err := svc.Create(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, dto.RubricCreateRequest{
		Name:        "Misassigned",
		EvaluatorID: &studentID,
	})
	require.Error(t, err)

	var roleErr *apperr.RoleViolation
	require.ErrorAs(t, err, &roleErr)
	require.Equal(t, "teacher", roleErr.ExpectedRole)
	require.Empty(t, rubrics.rubrics)
}

func TestCreateRubricRejectsForeignPractice(t *testing.T) {
	rubrics, _, _, svc := newRubricFixture()

	practiceID := uint(10)
	// Teacher 3 does not own practice 10.
	_, err := svc.Create(context.Background(), scope.Actor{ID: 3, Role: models.RoleTeacher}, dto.RubricCreateRequest{
		Name:       "Poached",
		PracticeID: &practiceID,
	})
	require.Error(t, err)

	var authErr *apperr.Authorization
	require.ErrorAs(t, err, &authErr)
	require.Empty(t, rubrics.rubrics)
}

func TestUpdateRubricOwnershipRestrictsTeachers(t *testing.T) {
	rubrics, _, _, svc := newRubricFixture()

	evaluatorID := uint(1)
	rubrics.rubrics[5] = models.Rubric{ID: 5, Name: "Owned", EvaluatorID: &evaluatorID}

	payload := dto.RubricUpdateRequest{Name: "Renamed"}

	// Teacher 3 neither evaluates the rubric nor owns its practice.
	_, err := svc.Update(context.Background(), scope.Actor{ID: 3, Role: models.RoleTeacher}, 5, payload)
	require.Error(t, err)

	var authErr *apperr.Authorization
	require.ErrorAs(t, err, &authErr)

	updated, err := svc.Update(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 5, payload)
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	// Admins pass the ownership check unconditionally.
	_, err = svc.Update(context.Background(), scope.Actor{ID: 9, Role: models.RoleAdmin}, 5, dto.RubricUpdateRequest{Name: "Admin rename"})
	require.NoError(t, err)
}

func TestDeleteRubricReturnsCascadeCounts(t *testing.T) {
	rubrics, _, activityRepo, svc := newRubricFixture()

	evaluatorID := uint(1)
	rubrics.rubrics[6] = models.Rubric{
		ID:          6,
		Name:        "Doomed",
		EvaluatorID: &evaluatorID,
		Criteria:    []models.Criterion{{ID: 1, Name: "A", MaxScore: 5}, {ID: 2, Name: "B", MaxScore: 5}},
	}

	counts, err := svc.Delete(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 6)
	require.NoError(t, err)
	require.Equal(t, repository.CascadeCounts{Criteria: 2}, counts)
	require.Empty(t, rubrics.rubrics)

	require.Len(t, activityRepo.entries, 1)
	require.Equal(t, "rubric.deleted", activityRepo.entries[0].Action)
}

func TestDeleteRubricMissing(t *testing.T) {
	_, _, _, svc := newRubricFixture()

	_, err := svc.Delete(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 44)
	require.Error(t, err)

	var notFound *apperr.NotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "rubric", notFound.Entity)
}
