package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/pbl-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// newTestDB opens an isolated in-memory database with every table migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func ptrInt(v int) *int {
	return &v
}

func seedProject(t *testing.T, db *gorm.DB, teacherID uint, title string) models.Project {
	t.Helper()
	project := models.Project{TeacherID: teacherID, Title: title}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func seedCriteria(t *testing.T, db *gorm.DB, projectID uint, name string, weight int) models.RubricCriteria {
	t.Helper()
	criteria := models.RubricCriteria{
		ProjectID: projectID,
		Criterion: name,
		Weight:    weight,
		Level1:    "Insuficiente",
		Level2:    "Regular",
		Level3:    "Bom",
		Level4:    "Excelente",
	}
	require.NoError(t, db.Create(&criteria).Error)
	return criteria
}

func isValidatorError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
