package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
)

func TestRubricUpdateWithCriteriaDiff(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	teacher := createUser(t, db, "Grader", models.RoleTeacher)

	rubric := models.Rubric{
		Name:        "Essay rubric",
		EvaluatorID: &teacher.ID,
		Criteria: []models.Criterion{
			{Name: "Clarity", MaxScore: 4},
			{Name: "Structure", MaxScore: 3},
			{Name: "Sources", MaxScore: 3},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &rubric))

	stored, err := repo.GetByID(context.Background(), rubric.ID)
	require.NoError(t, err)
	require.Len(t, stored.Criteria, 3)

	clarity := stored.Criteria[0]
	structure := stored.Criteria[1]
	sources := stored.Criteria[2]

	stored.Name = "Essay rubric v2"
	err = repo.UpdateWithCriteria(context.Background(), &stored, []reconcile.Item[CriterionPayload]{
		reconcile.Update(clarity.ID, CriterionPayload{Name: "Clarity", MaxScore: 5}),
		reconcile.Update(sources.ID, CriterionPayload{Name: "Citations", MaxScore: 2}),
		reconcile.Insert(CriterionPayload{Name: "Originality", MaxScore: 3}),
	})
	require.NoError(t, err)

	updated, err := repo.GetByID(context.Background(), rubric.ID)
	require.NoError(t, err)
	require.Equal(t, "Essay rubric v2", updated.Name)
	require.Len(t, updated.Criteria, 3)

	require.Equal(t, clarity.ID, updated.Criteria[0].ID)
	require.Equal(t, 5, updated.Criteria[0].MaxScore)
	require.Equal(t, sources.ID, updated.Criteria[1].ID)
	require.Equal(t, "Citations", updated.Criteria[1].Name)
	require.Equal(t, "Originality", updated.Criteria[2].Name)

	var gone int64
	require.NoError(t, db.Model(&models.Criterion{}).Where("id = ?", structure.ID).Count(&gone).Error)
	require.Zero(t, gone, "criterion missing from the target is removed")
}

func TestRubricUpdateRejectsForeignCriterion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	first := models.Rubric{Name: "First", Criteria: []models.Criterion{{Name: "A", MaxScore: 5}}}
	second := models.Rubric{Name: "Second", Criteria: []models.Criterion{{Name: "B", MaxScore: 5}}}
	require.NoError(t, repo.Create(context.Background(), &first))
	require.NoError(t, repo.Create(context.Background(), &second))

	stored, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)

	// Referencing a criterion that belongs to another rubric must fail
	// before anything is written.
	err = repo.UpdateWithCriteria(context.Background(), &stored, []reconcile.Item[CriterionPayload]{
		reconcile.Update(second.Criteria[0].ID, CriterionPayload{Name: "Stolen", MaxScore: 1}),
	})
	require.Error(t, err)

	var notFound *apperr.NotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "criterion", notFound.Entity)

	intact, err := repo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, intact.Criteria, 1)
	require.Equal(t, "A", intact.Criteria[0].Name)
}

func TestRubricDeleteCascadeCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	teacher := createUser(t, db, "Evaluator", models.RoleTeacher)
	student := createUser(t, db, "Pupil", models.RoleStudent)

	practice := models.Practice{Identifier: "P-1", Title: "Lab report", TeacherID: teacher.ID}
	require.NoError(t, db.Create(&practice).Error)

	rubric := models.Rubric{
		Name:       "Lab rubric",
		PracticeID: &practice.ID,
		Criteria: []models.Criterion{
			{Name: "Method", MaxScore: 5},
			{Name: "Results", MaxScore: 5},
		},
	}
	require.NoError(t, repo.Create(context.Background(), &rubric))

	submission := models.Submission{PracticeID: practice.ID, StudentID: student.ID, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&submission).Error)

	grade := models.Grade{SubmissionID: submission.ID, EvaluatorID: teacher.ID, RubricID: &rubric.ID, FinalScore: 8.5}
	require.NoError(t, db.Create(&grade).Error)

	counts, err := repo.DeleteCascade(context.Background(), rubric.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts.Grades)
	require.Equal(t, int64(2), counts.Criteria)

	var rubricCount, criterionCount, gradeCount int64
	require.NoError(t, db.Model(&models.Rubric{}).Count(&rubricCount).Error)
	require.NoError(t, db.Model(&models.Criterion{}).Count(&criterionCount).Error)
	require.NoError(t, db.Model(&models.Grade{}).Count(&gradeCount).Error)
	require.Zero(t, rubricCount)
	require.Zero(t, criterionCount)
	require.Zero(t, gradeCount)

	// The submission itself survives the rubric cascade.
	var submissionCount int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&submissionCount).Error)
	require.Equal(t, int64(1), submissionCount)
}

func TestRubricDeleteCascadeMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRubricRepository(db)

	_, err := repo.DeleteCascade(context.Background(), 77)
	require.Error(t, err)

	var notFound *apperr.NotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "rubric", notFound.Entity)
}
