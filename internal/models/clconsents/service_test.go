package clconsents

import (
	"sync"
	"testing"
	"time"

	"littleconsent/internal/models/clprojects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ============= Setup =============

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = testDB.AutoMigrate(&clprojects.Project{}, &ConsentRecord{})
	require.NoError(t, err)

	return testDB
}

func createTestProject(t *testing.T, db *gorm.DB, ownerID string) *clprojects.Project {
	project := &clprojects.Project{
		OwnerID: ownerID,
		Domain:  "x.com",
	}
	require.NoError(t, clprojects.NewProjectService(db).Create(project))
	return project
}

func submitParams(projectID string, flags CategoryFlags) SubmitParams {
	return SubmitParams{
		ProjectID:  projectID,
		Categories: &flags,
		Domain:     "x.com",
		UserAgent:  "UA-A",
		ClientIP:   "1.2.3.4",
	}
}

// ============= Soumission =============

func TestSubmitCreatesConsent(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	id, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Analytics: true}))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var record ConsentRecord
	require.NoError(t, db.First(&record, "id = ?", id).Error)
	assert.Equal(t, project.ID, record.ProjectID)
	assert.True(t, record.Necessary)
	assert.True(t, record.Analytics)
	assert.False(t, record.Marketing)
	assert.Len(t, record.SessionFingerprint, 64)
	assert.NotEmpty(t, record.IPHash)
}

func TestSubmitValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)

	// projectId absent
	_, err := service.Submit(SubmitParams{Categories: &CategoryFlags{}})
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "projectId")

	// consents absent
	_, err = service.Submit(SubmitParams{ProjectID: "p1"})
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "consents")

	// les deux absents, les deux nommés
	_, err = service.Submit(SubmitParams{})
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "projectId")
	assert.Contains(t, err.Error(), "consents")
}

func TestSubmitUnknownProject(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)

	_, err := service.Submit(submitParams("inexistant", CategoryFlags{Necessary: true}))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSubmitInactiveProject(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	require.NoError(t, clprojects.NewProjectService(db).SoftDelete(project.ID))

	_, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true}))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestSubmitForcesNecessary(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	// Un client qui prétend refuser necessary est ignoré
	id, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: false}))
	require.NoError(t, err)

	var record ConsentRecord
	require.NoError(t, db.First(&record, "id = ?", id).Error)
	assert.True(t, record.Necessary)
}

// ============= Déduplication 24h =============

func TestSubmitUpdatesWithinWindow(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	first, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Analytics: true}))
	require.NoError(t, err)

	// Même visiteur (IP, UA, domaine identiques), nouvelle décision
	second, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Marketing: true}))
	require.NoError(t, err)

	// Même enregistrement, dernières valeurs uniquement
	assert.Equal(t, first, second)

	var count int64
	db.Model(&ConsentRecord{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	var record ConsentRecord
	require.NoError(t, db.First(&record, "id = ?", first).Error)
	assert.False(t, record.Analytics)
	assert.True(t, record.Marketing)
}

func TestSubmitCreatesAfterWindowExpiry(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	first, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true}))
	require.NoError(t, err)

	// Vieillir l'enregistrement au delà de la fenêtre
	require.NoError(t, db.Model(&ConsentRecord{}).
		Where("id = ?", first).
		Update("created_at", time.Now().Add(-25*time.Hour)).Error)

	second, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true}))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	var count int64
	db.Model(&ConsentRecord{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSubmitDistinctVisitors(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	params := submitParams(project.ID, CategoryFlags{Necessary: true})
	first, err := service.Submit(params)
	require.NoError(t, err)

	// Autre UA = autre visiteur = autre enregistrement
	params.UserAgent = "UA-B"
	second, err := service.Submit(params)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSubmitConcurrentSameVisitor(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	// Dix soumissions simultanées du même visiteur ne doivent produire
	// qu'une seule ligne
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Analytics: true}))
		}()
	}
	wg.Wait()

	var count int64
	db.Model(&ConsentRecord{}).Where("project_id = ?", project.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestWindowDefault(t *testing.T) {
	service := NewConsentService(nil, 0, nil)
	assert.Equal(t, 24*time.Hour, service.Window())
}
