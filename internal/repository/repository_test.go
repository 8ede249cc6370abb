package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aulagest/aulagest-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Enrollment{},
		&models.Module{},
		&models.Practice{},
		&models.Rubric{},
		&models.Criterion{},
		&models.Submission{},
		&models.Grade{},
		&models.ActivityLog{},
	))

	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", strings.ToLower(name)),
		DNI:   fmt.Sprintf("dni-%s-%s", strings.ToLower(name), role),
		Role:  role,
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}
