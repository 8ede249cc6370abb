package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

const gradeSheetName = "Grades"

// ExportService renders grading data as downloadable spreadsheets.
type ExportService interface {
	GradeSheet(ctx context.Context, actor scope.Actor, filter repository.SubmissionFilter) ([]byte, string, error)
}

type exportService struct {
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService instance.
func NewExportService(submissions repository.SubmissionRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		submissions: submissions,
		logger:      logger.With().Str("component", "export_service").Logger(),
		now:         time.Now,
	}
}

// GradeSheet builds an xlsx workbook with one row per submission visible to
// the actor. Returns the file contents and a suggested filename.
func (s *exportService) GradeSheet(ctx context.Context, actor scope.Actor, filter repository.SubmissionFilter) ([]byte, string, error) {
	if !actor.CanMutate() {
		return nil, "", &apperr.Authorization{ActorID: actor.ID, Scope: "export"}
	}

	submissions, err := s.submissions.List(ctx, filter, actor.Submissions)
	if err != nil {
		return nil, "", &apperr.Storage{Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(gradeSheetName)
	if err != nil {
		return nil, "", &apperr.Storage{Err: err}
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", &apperr.Storage{Err: err}
	}

	headers := []string{"Submission", "Student", "Practice", "Teacher", "Submitted", "Rubric", "Score", "Graded By", "Comment"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(gradeSheetName, cell, header); err != nil {
			return nil, "", &apperr.Storage{Err: err}
		}
	}

	for rowIdx, submission := range submissions {
		row := make([]interface{}, len(headers))
		row[0] = submission.ID
		row[1] = submission.Student.Name + " " + submission.Student.Surname
		row[2] = submission.Practice.Title
		row[3] = submission.Practice.Teacher.Name + " " + submission.Practice.Teacher.Surname
		row[4] = submission.SubmittedAt.Format(time.RFC3339)
		if submission.IsGraded() {
			if submission.Grade.Rubric != nil {
				row[5] = submission.Grade.Rubric.Name
			}
			row[6] = strconv.FormatFloat(submission.Grade.FinalScore, 'f', 2, 64)
			row[7] = submission.Grade.Evaluator.Name + " " + submission.Grade.Evaluator.Surname
			row[8] = submission.Grade.Comment
		}

		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(gradeSheetName, cell, &row); err != nil {
			return nil, "", &apperr.Storage{Err: err}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", &apperr.Storage{Err: err}
	}

	filename := fmt.Sprintf("grades-%s.xlsx", s.now().UTC().Format("20060102-150405"))

	s.logger.Info().Int("rows", len(submissions)).Str("file", filename).Msg("grade sheet exported")

	return buf.Bytes(), filename, nil
}
