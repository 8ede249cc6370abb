package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/scope"
)

const seedFixture = `{
  "users": [
    {"name": "Marta", "surname": "Ruiz", "email": "marta@example.com", "dni": "11111111A", "role": "teacher"},
    {"name": "Pablo", "surname": "Gil", "email": "pablo@example.com", "dni": "22222222B", "role": "student"}
  ],
  "groups": [
    {
      "name": "Mathematics",
      "owner_email": "marta@example.com",
      "modules": [
        {"name": "Algebra", "code": "MATH-1", "student_email": "pablo@example.com"},
        {"name": "Geometry", "code": "MATH-2"}
      ]
    }
  ]
}`

func newSeedFixture(enabled bool, token string, existing ...models.User) (*fakeUserRepo, *fakeRosterRepo, SeedService) {
	users := newFakeUserRepo(existing...)
	roster := newFakeRosterRepo()
	svc := NewSeedService(users, roster, enabled, token, testLogger())
	return users, roster, svc
}

func TestSeedImportDisabled(t *testing.T) {
	_, roster, svc := newSeedFixture(false, "secret")

	_, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, "secret", []byte(seedFixture))
	require.ErrorIs(t, err, ErrSeedDisabled)
	require.Equal(t, 0, roster.applyCalls)
}

func TestSeedImportRejectsBadToken(t *testing.T) {
	_, roster, svc := newSeedFixture(true, "secret")

	for _, token := range []string{"", "wrong", "secret2"} {
		_, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, token, []byte(seedFixture))
		require.ErrorIs(t, err, ErrSeedUnauthorized)
	}
	require.Equal(t, 0, roster.applyCalls)
}

func TestSeedImportRejectsEmptyConfiguredToken(t *testing.T) {
	// An enabled service with no token configured accepts nothing.
	_, _, svc := newSeedFixture(true, "")

	_, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, "", []byte(seedFixture))
	require.ErrorIs(t, err, ErrSeedUnauthorized)
}

func TestSeedImportRequiresAdmin(t *testing.T) {
	_, roster, svc := newSeedFixture(true, "secret")

	_, err := svc.Import(context.Background(), scope.Actor{ID: 5, Role: models.RoleTeacher}, "secret", []byte(seedFixture))
	require.Error(t, err)

	var authErr *apperr.Authorization
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, 0, roster.applyCalls)
}

func TestSeedImportRejectsInvalidDocument(t *testing.T) {
	admin := scope.Actor{ID: 1, Role: models.RoleAdmin}

	documents := []string{
		`not json`,
		`{"users": []}`,
		`{"users": [], "groups": [{"name": "G", "modules": []}]}`,
		`{"users": [{"name": "", "surname": "X", "email": "x@example.com", "role": "teacher"}], "groups": []}`,
		`{"users": [{"name": "X", "surname": "X", "email": "x@example.com", "role": "principal"}], "groups": []}`,
	}

	for _, document := range documents {
		users, roster, svc := newSeedFixture(true, "secret")

		_, err := svc.Import(context.Background(), admin, "secret", []byte(document))
		require.Error(t, err, "document %q must be rejected", document)

		var validationErr *apperr.Validation
		require.ErrorAs(t, err, &validationErr)
		require.Empty(t, users.users)
		require.Equal(t, 0, roster.applyCalls)
	}
}

func TestSeedImportCreatesUsersAndGroups(t *testing.T) {
	users, roster, svc := newSeedFixture(true, "secret")

	result, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, "secret", []byte(seedFixture))
	require.NoError(t, err)
	require.Equal(t, 2, result.UsersCreated)
	require.Equal(t, 0, result.UsersSkipped)
	require.Equal(t, 1, result.GroupsSeeded)

	marta, err := users.GetByEmail(context.Background(), "marta@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleTeacher, marta.Role)

	require.Equal(t, 1, roster.applyCalls)
	require.Equal(t, "Mathematics", roster.lastTarget.Name)
	require.Equal(t, marta.ID, roster.lastTarget.OwnerID)
	require.Len(t, roster.lastTarget.Modules, 2)
	require.NotNil(t, roster.lastTarget.Modules[0].Payload.StudentID)
	require.Nil(t, roster.lastTarget.Modules[1].Payload.StudentID)
}

func TestSeedImportSkipsExistingUsers(t *testing.T) {
	existing := models.User{ID: 1, Name: "Marta", Email: "marta@example.com", Role: models.RoleTeacher}
	_, roster, svc := newSeedFixture(true, "secret", existing)

	result, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, "secret", []byte(seedFixture))
	require.NoError(t, err)
	require.Equal(t, 1, result.UsersCreated)
	require.Equal(t, 1, result.UsersSkipped)
	require.Equal(t, existing.ID, roster.lastTarget.OwnerID, "existing account is reused as owner")
}

func TestSeedImportRejectsStudentOwner(t *testing.T) {
	document := `{
	  "users": [{"name": "Pablo", "surname": "Gil", "email": "pablo@example.com", "role": "student"}],
	  "groups": [{"name": "G", "owner_email": "pablo@example.com", "modules": [{"name": "M", "code": "C-1"}]}]
	}`

	_, roster, svc := newSeedFixture(true, "secret")

	_, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, "secret", []byte(document))
	require.Error(t, err)

	var roleErr *apperr.RoleViolation
	require.ErrorAs(t, err, &roleErr)
	require.Equal(t, "group owner", roleErr.Entity)
	require.Equal(t, 0, roster.applyCalls)
}

func TestSeedImportRejectsUnknownStudentEmail(t *testing.T) {
	document := `{
	  "users": [{"name": "Marta", "surname": "Ruiz", "email": "marta@example.com", "role": "teacher"}],
	  "groups": [{"name": "G", "owner_email": "marta@example.com", "modules": [{"name": "M", "code": "C-1", "student_email": "ghost@example.com"}]}]
	}`

	_, roster, svc := newSeedFixture(true, "secret")

	_, err := svc.Import(context.Background(), scope.Actor{ID: 1, Role: models.RoleAdmin}, "secret", []byte(document))
	require.Error(t, err)

	var validationErr *apperr.Validation
	require.ErrorAs(t, err, &validationErr)
	require.Contains(t, validationErr.Reason, "ghost@example.com")
	require.Equal(t, 0, roster.applyCalls)
}
