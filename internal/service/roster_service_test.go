package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/dto"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/scope"
)

func newRosterFixture() (*fakeRosterRepo, *fakeUserRepo, RosterService) {
	owner := models.User{ID: 1, Name: "Owner", Email: "owner@example.com", Role: models.RoleTeacher}
	student := models.User{ID: 2, Name: "Student", Email: "student@example.com", Role: models.RoleStudent}
	outsider := models.User{ID: 3, Name: "Outsider", Email: "outsider@example.com", Role: models.RoleStudent}

	roster := newFakeRosterRepo()
	users := newFakeUserRepo(owner, student, outsider)
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRosterService(roster, users, validate, nil, 0, nil, testLogger())
	return roster, users, svc
}

func rosterPayload(ownerID uint, studentID *uint) dto.RosterRequest {
	return dto.RosterRequest{
		Name:    "Mathematics",
		OwnerID: ownerID,
		Modules: []dto.RosterModuleRequest{
			{Name: "Algebra", Code: "MATH-1", StudentID: studentID},
		},
	}
}

func TestCreateGroupRejectsStudentActor(t *testing.T) {
	roster, _, svc := newRosterFixture()

	_, err := svc.CreateGroup(context.Background(), scope.Actor{ID: 2, Role: models.RoleStudent}, rosterPayload(1, nil))
	require.Error(t, err)

	var authErr *apperr.Authorization
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 0, roster.applyCalls)
}

func TestCreateGroupRejectsNonTeacherOwner(t *testing.T) {
	roster, _, svc := newRosterFixture()

	// Owner 3 holds the student role.
	_, err := svc.CreateGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, rosterPayload(3, nil))
	require.Error(t, err)

	var roleErr *apperr.RoleViolation
	require.ErrorAs(t, err, &roleErr)
	require.Equal(t, "group owner", roleErr.Entity)
	require.Equal(t, "teacher", roleErr.ExpectedRole)
	require.Equal(t, 0, roster.applyCalls)
}

func TestCreateGroupRejectsTeacherAsEnrolledStudent(t *testing.T) {
	roster, _, svc := newRosterFixture()

	teacherID := uint(1)
	_, err := svc.CreateGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, rosterPayload(1, &teacherID))
	require.Error(t, err)

	var roleErr *apperr.RoleViolation
	require.ErrorAs(t, err, &roleErr)
	require.Equal(t, "module student", roleErr.Entity)
	require.Equal(t, "student", roleErr.ExpectedRole)
	require.Equal(t, 0, roster.applyCalls)
}

func TestCreateGroupRejectsUnknownStudent(t *testing.T) {
	roster, _, svc := newRosterFixture()

	missing := uint(99)
	_, err := svc.CreateGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, rosterPayload(1, &missing))
	require.Error(t, err)

	var notFound *apperr.NotFound
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "user", notFound.Entity)
	require.Equal(t, uint(99), notFound.ID)
	require.Equal(t, 0, roster.applyCalls)
}

func TestCreateGroupRequiresAtLeastOneModule(t *testing.T) {
	roster, _, svc := newRosterFixture()

	payload := dto.RosterRequest{Name: "Empty", OwnerID: 1}
	_, err := svc.CreateGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, payload)
	require.Error(t, err)

	var validationErr *apperr.Validation
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, 0, roster.applyCalls)
}

func TestCreateGroupAppliesTarget(t *testing.T) {
	roster, _, svc := newRosterFixture()

	studentID := uint(2)
	group, err := svc.CreateGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, rosterPayload(1, &studentID))
	require.NoError(t, err)
	require.Equal(t, "Mathematics", group.Name)
	require.Equal(t, 1, roster.applyCalls)
	require.Equal(t, "Mathematics", roster.lastTarget.Name)
	require.Len(t, roster.lastTarget.Modules, 1)
	require.Nil(t, roster.lastTarget.Modules[0].ID, "fresh module is an insert")
}

func TestUpdateGroupMarksPersistedModules(t *testing.T) {
	roster, _, svc := newRosterFixture()

	moduleID := uint(7)
	payload := dto.RosterRequest{
		Name:    "Mathematics",
		OwnerID: 1,
		Modules: []dto.RosterModuleRequest{
			{ID: &moduleID, Name: "Algebra II", Code: "MATH-1"},
			{Name: "Calculus", Code: "MATH-2"},
		},
	}

	_, err := svc.UpdateGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 5, payload)
	require.NoError(t, err)
	require.Len(t, roster.lastTarget.Modules, 2)
	require.NotNil(t, roster.lastTarget.Modules[0].ID)
	require.Equal(t, moduleID, *roster.lastTarget.Modules[0].ID)
	require.Nil(t, roster.lastTarget.Modules[1].ID)
}

func TestListGroupsUsesCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	owner := models.User{ID: 1, Name: "Owner", Email: "owner@example.com", Role: models.RoleTeacher}
	roster := newFakeRosterRepo(models.Group{ID: 1, Name: "Cached", OwnerID: owner.ID, Owner: owner})
	users := newFakeUserRepo(owner)
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRosterService(roster, users, validate, client, time.Minute, nil, testLogger())
	actor := scope.Actor{ID: 1, Role: models.RoleTeacher}

	first, err := svc.ListGroups(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, roster.listCalls)

	// Second read is served from the cache without touching storage.
	second, err := svc.ListGroups(context.Background(), actor)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, roster.listCalls)
}

func TestRosterWritesInvalidateCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	owner := models.User{ID: 1, Name: "Owner", Email: "owner@example.com", Role: models.RoleTeacher}
	roster := newFakeRosterRepo()
	users := newFakeUserRepo(owner)
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewRosterService(roster, users, validate, client, time.Minute, nil, testLogger())
	actor := scope.Actor{ID: 1, Role: models.RoleTeacher}

	_, err = svc.ListGroups(context.Background(), actor)
	require.NoError(t, err)
	require.True(t, server.Exists("roster:groups"))

	_, err = svc.CreateGroup(context.Background(), actor, rosterPayload(1, nil))
	require.NoError(t, err)
	require.False(t, server.Exists("roster:groups"), "writes drop the cached roster")

	groups, err := svc.ListGroups(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 2, roster.listCalls)
}

func TestDeleteGroupRecordsActivity(t *testing.T) {
	owner := models.User{ID: 1, Name: "Owner", Email: "owner@example.com", Role: models.RoleTeacher}
	roster := newFakeRosterRepo(models.Group{ID: 4, Name: "Doomed", OwnerID: owner.ID, Owner: owner})
	users := newFakeUserRepo(owner)
	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := &fakeActivityRepo{}
	recorder := NewActivityService(activityRepo, testLogger())

	svc := NewRosterService(roster, users, validate, nil, 0, recorder, testLogger())

	err := svc.DeleteGroup(context.Background(), scope.Actor{ID: 1, Role: models.RoleTeacher}, 4)
	require.NoError(t, err)
	require.Empty(t, roster.groups)
	require.Len(t, activityRepo.entries, 1)
	require.Equal(t, "roster.deleted", activityRepo.entries[0].Action)
}
