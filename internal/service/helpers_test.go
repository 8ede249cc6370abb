package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
	"github.com/aulagest/aulagest-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeUserRepo struct {
	users map[uint]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint]models.User, len(users))}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) List(ctx context.Context) ([]models.User, error) {
	result := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		result = append(result, user)
	}
	return result, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uint(len(f.users) + 1)
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	createCalls int
}

func newFakeSubmissionRepo(submissions ...models.Submission) *fakeSubmissionRepo {
	repo := &fakeSubmissionRepo{submissions: make(map[uint]models.Submission, len(submissions))}
	for _, submission := range submissions {
		repo.submissions[submission.ID] = submission
	}
	return repo
}

func (f *fakeSubmissionRepo) List(ctx context.Context, filter repository.SubmissionFilter, scopes ...repository.Scope) ([]models.Submission, error) {
	result := make([]models.Submission, 0, len(f.submissions))
	for _, submission := range f.submissions {
		if filter.PracticeID != nil && submission.PracticeID != *filter.PracticeID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		result = append(result, submission)
	}
	return result, nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	f.createCalls++
	submission.ID = uint(len(f.submissions) + 1)
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) DeleteCascade(ctx context.Context, id uint) error {
	delete(f.submissions, id)
	return nil
}

type fakeGradeRepo struct {
	grades      map[uint]models.Grade
	createCalls int
}

func newFakeGradeRepo(grades ...models.Grade) *fakeGradeRepo {
	repo := &fakeGradeRepo{grades: make(map[uint]models.Grade, len(grades))}
	for _, grade := range grades {
		repo.grades[grade.ID] = grade
	}
	return repo
}

func (f *fakeGradeRepo) List(ctx context.Context, scopes ...repository.Scope) ([]models.Grade, error) {
	result := make([]models.Grade, 0, len(f.grades))
	for _, grade := range f.grades {
		result = append(result, grade)
	}
	return result, nil
}

func (f *fakeGradeRepo) GetByID(ctx context.Context, id uint) (models.Grade, error) {
	grade, ok := f.grades[id]
	if !ok {
		return models.Grade{}, gorm.ErrRecordNotFound
	}
	return grade, nil
}

func (f *fakeGradeRepo) GetBySubmission(ctx context.Context, submissionID uint) (models.Grade, error) {
	for _, grade := range f.grades {
		if grade.SubmissionID == submissionID {
			return grade, nil
		}
	}
	return models.Grade{}, gorm.ErrRecordNotFound
}

func (f *fakeGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	f.createCalls++
	grade.ID = uint(len(f.grades) + 1)
	f.grades[grade.ID] = *grade
	return nil
}

func (f *fakeGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	f.grades[grade.ID] = *grade
	return nil
}

func (f *fakeGradeRepo) Delete(ctx context.Context, id uint) error {
	delete(f.grades, id)
	return nil
}

type fakePracticeRepo struct {
	practices map[uint]models.Practice
}

func newFakePracticeRepo(practices ...models.Practice) *fakePracticeRepo {
	repo := &fakePracticeRepo{practices: make(map[uint]models.Practice, len(practices))}
	for _, practice := range practices {
		repo.practices[practice.ID] = practice
	}
	return repo
}

func (f *fakePracticeRepo) List(ctx context.Context, scopes ...repository.Scope) ([]models.Practice, error) {
	result := make([]models.Practice, 0, len(f.practices))
	for _, practice := range f.practices {
		result = append(result, practice)
	}
	return result, nil
}

func (f *fakePracticeRepo) GetByID(ctx context.Context, id uint) (models.Practice, error) {
	practice, ok := f.practices[id]
	if !ok {
		return models.Practice{}, gorm.ErrRecordNotFound
	}
	return practice, nil
}

func (f *fakePracticeRepo) Create(ctx context.Context, practice *models.Practice) error {
	practice.ID = uint(len(f.practices) + 1)
	f.practices[practice.ID] = *practice
	return nil
}

func (f *fakePracticeRepo) Update(ctx context.Context, practice *models.Practice) error {
	f.practices[practice.ID] = *practice
	return nil
}

func (f *fakePracticeRepo) Delete(ctx context.Context, id uint) error {
	delete(f.practices, id)
	return nil
}

type fakeRubricRepo struct {
	rubrics map[uint]models.Rubric
}

func newFakeRubricRepo(rubrics ...models.Rubric) *fakeRubricRepo {
	repo := &fakeRubricRepo{rubrics: make(map[uint]models.Rubric, len(rubrics))}
	for _, rubric := range rubrics {
		repo.rubrics[rubric.ID] = rubric
	}
	return repo
}

func (f *fakeRubricRepo) List(ctx context.Context, scopes ...repository.Scope) ([]models.Rubric, error) {
	result := make([]models.Rubric, 0, len(f.rubrics))
	for _, rubric := range f.rubrics {
		result = append(result, rubric)
	}
	return result, nil
}

func (f *fakeRubricRepo) GetByID(ctx context.Context, id uint) (models.Rubric, error) {
	rubric, ok := f.rubrics[id]
	if !ok {
		return models.Rubric{}, gorm.ErrRecordNotFound
	}
	return rubric, nil
}

func (f *fakeRubricRepo) Create(ctx context.Context, rubric *models.Rubric) error {
	rubric.ID = uint(len(f.rubrics) + 1)
	f.rubrics[rubric.ID] = *rubric
	return nil
}

func (f *fakeRubricRepo) UpdateWithCriteria(ctx context.Context, rubric *models.Rubric, criteria []reconcile.Item[repository.CriterionPayload]) error {
	f.rubrics[rubric.ID] = *rubric
	return nil
}

func (f *fakeRubricRepo) DeleteCascade(ctx context.Context, id uint) (repository.CascadeCounts, error) {
	rubric, ok := f.rubrics[id]
	if !ok {
		return repository.CascadeCounts{}, gorm.ErrRecordNotFound
	}
	delete(f.rubrics, id)
	return repository.CascadeCounts{Criteria: int64(len(rubric.Criteria))}, nil
}

type fakeModuleRepo struct {
	modules map[uint]models.Module
}

func newFakeModuleRepo(modules ...models.Module) *fakeModuleRepo {
	repo := &fakeModuleRepo{modules: make(map[uint]models.Module, len(modules))}
	for _, module := range modules {
		repo.modules[module.ID] = module
	}
	return repo
}

func (f *fakeModuleRepo) List(ctx context.Context, scopes ...repository.Scope) ([]models.Module, error) {
	result := make([]models.Module, 0, len(f.modules))
	for _, module := range f.modules {
		result = append(result, module)
	}
	return result, nil
}

func (f *fakeModuleRepo) GetByID(ctx context.Context, id uint) (models.Module, error) {
	module, ok := f.modules[id]
	if !ok {
		return models.Module{}, gorm.ErrRecordNotFound
	}
	return module, nil
}

func (f *fakeModuleRepo) Create(ctx context.Context, module *models.Module) error {
	module.ID = uint(len(f.modules) + 1)
	f.modules[module.ID] = *module
	return nil
}

func (f *fakeModuleRepo) Update(ctx context.Context, module *models.Module) error {
	f.modules[module.ID] = *module
	return nil
}

func (f *fakeModuleRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.modules[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.modules, id)
	return nil
}

type fakeActivityRepo struct {
	entries []models.ActivityLog
}

func (f *fakeActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeActivityRepo) List(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	return f.entries, nil
}

type fakeRosterRepo struct {
	groups     map[uint]models.Group
	applyCalls int
	listCalls  int
	lastTarget repository.RosterTarget
}

func newFakeRosterRepo(groups ...models.Group) *fakeRosterRepo {
	repo := &fakeRosterRepo{groups: make(map[uint]models.Group, len(groups))}
	for _, group := range groups {
		repo.groups[group.ID] = group
	}
	return repo
}

func (f *fakeRosterRepo) ListGroups(ctx context.Context) ([]models.Group, error) {
	f.listCalls++
	result := make([]models.Group, 0, len(f.groups))
	for _, group := range f.groups {
		result = append(result, group)
	}
	return result, nil
}

func (f *fakeRosterRepo) GetGroup(ctx context.Context, id uint) (models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return models.Group{}, gorm.ErrRecordNotFound
	}
	return group, nil
}

func (f *fakeRosterRepo) Apply(ctx context.Context, groupID *uint, target repository.RosterTarget) (models.Group, error) {
	f.applyCalls++
	f.lastTarget = target

	group := models.Group{Name: target.Name, OwnerID: target.OwnerID}
	if groupID != nil {
		group.ID = *groupID
	} else {
		group.ID = uint(len(f.groups) + 1)
	}
	for i := range target.Modules {
		group.Modules = append(group.Modules, models.Module{ID: uint(i + 1), Name: target.Modules[i].Payload.Name, Code: target.Modules[i].Payload.Code})
	}
	f.groups[group.ID] = group
	return group, nil
}

func (f *fakeRosterRepo) DeleteGroup(ctx context.Context, id uint) error {
	if _, ok := f.groups[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.groups, id)
	return nil
}
