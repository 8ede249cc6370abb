package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/models"
	"github.com/aulagest/aulagest-api/internal/reconcile"
	"github.com/aulagest/aulagest-api/internal/repository"
	"github.com/aulagest/aulagest-api/internal/scope"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// seedSchema constrains the seed document before any row is touched.
const seedSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["users", "groups"],
  "properties": {
    "users": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "surname", "email", "role"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "surname": {"type": "string"},
          "email": {"type": "string", "format": "email"},
          "dni": {"type": "string"},
          "role": {"enum": ["student", "teacher", "admin"]}
        }
      }
    },
    "groups": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "owner_email", "modules"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "owner_email": {"type": "string", "format": "email"},
          "modules": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "code"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "code": {"type": "string", "minLength": 1},
                "description": {"type": "string"},
                "student_email": {"type": "string", "format": "email"}
              }
            }
          }
        }
      }
    }
  }
}`

type seedUser struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	DNI     string `json:"dni"`
	Role    string `json:"role"`
}

type seedModule struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	StudentEmail string `json:"student_email"`
}

type seedGroup struct {
	Name       string       `json:"name"`
	OwnerEmail string       `json:"owner_email"`
	Modules    []seedModule `json:"modules"`
}

type seedDocument struct {
	Users  []seedUser  `json:"users"`
	Groups []seedGroup `json:"groups"`
}

// SeedResult summarizes one import run.
type SeedResult struct {
	UsersCreated int `json:"users_created"`
	UsersSkipped int `json:"users_skipped"`
	GroupsSeeded int `json:"groups_seeded"`
}

// SeedService imports roster fixtures from a schema-validated JSON document.
// Users are matched by email; groups referenced by name are created fresh.
type SeedService interface {
	Import(ctx context.Context, actor scope.Actor, token string, document []byte) (SeedResult, error)
}

type seedService struct {
	users   repository.UserRepository
	roster  repository.RosterRepository
	schema  *jsonschema.Schema
	enabled bool
	token   string
	logger  zerolog.Logger
}

// NewSeedService constructs a seeding service. Compilation of the embedded
// schema cannot fail at runtime, so a failure here is a programming error.
func NewSeedService(users repository.UserRepository, roster repository.RosterRepository, enabled bool, token string, logger zerolog.Logger) SeedService {
	schema := jsonschema.MustCompileString("seed.schema.json", seedSchema)

	return &seedService{
		users:   users,
		roster:  roster,
		schema:  schema,
		enabled: enabled,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) Import(ctx context.Context, actor scope.Actor, token string, document []byte) (SeedResult, error) {
	if !s.enabled {
		return SeedResult{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return SeedResult{}, ErrSeedUnauthorized
	}
	if !actor.IsAdmin() {
		return SeedResult{}, &apperr.Authorization{ActorID: actor.ID, Scope: "seed"}
	}

	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return SeedResult{}, &apperr.Validation{Field: "document", Reason: err.Error()}
	}
	if err := s.schema.Validate(raw); err != nil {
		return SeedResult{}, &apperr.Validation{Field: "document", Reason: err.Error()}
	}

	var doc seedDocument
	if err := json.Unmarshal(document, &doc); err != nil {
		return SeedResult{}, &apperr.Validation{Field: "document", Reason: err.Error()}
	}

	var result SeedResult

	byEmail := make(map[string]models.User)
	for _, entry := range doc.Users {
		existing, err := s.users.GetByEmail(ctx, entry.Email)
		if err == nil {
			byEmail[entry.Email] = existing
			result.UsersSkipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return result, &apperr.Storage{Err: err}
		}

		user := models.User{
			Name:    entry.Name,
			Surname: entry.Surname,
			Email:   entry.Email,
			DNI:     entry.DNI,
			Role:    entry.Role,
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return result, err
		}
		byEmail[entry.Email] = user
		result.UsersCreated++
	}

	for _, groupEntry := range doc.Groups {
		target, err := s.buildTarget(ctx, groupEntry, byEmail)
		if err != nil {
			return result, err
		}

		if _, err := s.roster.Apply(ctx, nil, target); err != nil {
			return result, err
		}
		result.GroupsSeeded++
	}

	s.logger.Info().
		Int("users_created", result.UsersCreated).
		Int("users_skipped", result.UsersSkipped).
		Int("groups_seeded", result.GroupsSeeded).
		Msg("seed import applied")

	return result, nil
}

// buildTarget resolves the document's email references against the accounts
// created or found earlier in the run, falling back to the database for
// pre-existing users the document does not list.
func (s *seedService) buildTarget(ctx context.Context, entry seedGroup, byEmail map[string]models.User) (repository.RosterTarget, error) {
	owner, err := s.resolveUser(ctx, entry.OwnerEmail, byEmail)
	if err != nil {
		return repository.RosterTarget{}, err
	}
	if !owner.IsTeacher() {
		return repository.RosterTarget{}, &apperr.RoleViolation{Entity: "group owner", ExpectedRole: "teacher"}
	}

	target := repository.RosterTarget{
		Name:    entry.Name,
		OwnerID: owner.ID,
		Modules: make([]reconcile.Item[repository.ModulePayload], 0, len(entry.Modules)),
	}

	for _, moduleEntry := range entry.Modules {
		payload := repository.ModulePayload{
			Name:        moduleEntry.Name,
			Code:        moduleEntry.Code,
			Description: moduleEntry.Description,
		}

		if moduleEntry.StudentEmail != "" {
			student, err := s.resolveUser(ctx, moduleEntry.StudentEmail, byEmail)
			if err != nil {
				return repository.RosterTarget{}, err
			}
			if !student.IsStudent() {
				return repository.RosterTarget{}, &apperr.RoleViolation{Entity: "module student", ExpectedRole: "student"}
			}
			payload.StudentID = &student.ID
		}

		target.Modules = append(target.Modules, reconcile.Insert(payload))
	}

	return target, nil
}

func (s *seedService) resolveUser(ctx context.Context, email string, byEmail map[string]models.User) (models.User, error) {
	if user, ok := byEmail[email]; ok {
		return user, nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, &apperr.Validation{Field: "document", Reason: "unknown user email " + email}
		}
		return models.User{}, &apperr.Storage{Err: err}
	}

	byEmail[email] = user
	return user, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return constantTimeEqual(expected, strings.TrimSpace(token))
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}
