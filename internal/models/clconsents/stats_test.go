package clconsents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============= Statistiques =============

func TestGetStatsEmptyProject(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	// Aucun consentement : des zéros, pas une erreur
	result, err := service.GetStats(project.ID, "user1", false)
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Stats.TotalConsents)
	assert.Equal(t, int64(0), result.Stats.AnalyticsConsents)
	assert.Empty(t, result.DailyStats)
	assert.Empty(t, result.Countries)
}

func TestGetStatsUnknownProject(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)

	_, err := service.GetStats("inexistant", "user1", false)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestGetStatsOwnership(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	// Mauvais propriétaire
	_, err := service.GetStats(project.ID, "user2", false)
	assert.ErrorIs(t, err, ErrForbidden)

	// Un admin passe outre
	_, err = service.GetStats(project.ID, "user2", true)
	assert.NoError(t, err)
}

func TestGetStatsReflectsLatestValues(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	// Première soumission : analytics accordé
	_, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Analytics: true}))
	require.NoError(t, err)

	// Changement d'avis dans la fenêtre : analytics retiré, marketing accordé
	_, err = service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Marketing: true}))
	require.NoError(t, err)

	result, err := service.GetStats(project.ID, "user1", false)
	require.NoError(t, err)

	// Seules les valeurs post-mise à jour comptent
	assert.Equal(t, int64(1), result.Stats.TotalConsents)
	assert.Equal(t, int64(0), result.Stats.AnalyticsConsents)
	assert.Equal(t, int64(1), result.Stats.MarketingConsents)
	assert.Equal(t, int64(1), result.Stats.NecessaryConsents)
	assert.Equal(t, int64(1), result.Stats.Last24Hours)
}

func TestGetStatsDailyBreakdown(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	// Deux visiteurs aujourd'hui
	_, err := service.Submit(submitParams(project.ID, CategoryFlags{Necessary: true, Analytics: true}))
	require.NoError(t, err)

	params := submitParams(project.ID, CategoryFlags{Necessary: true})
	params.UserAgent = "UA-B"
	_, err = service.Submit(params)
	require.NoError(t, err)

	// Un consentement d'il y a trois jours
	old := ConsentRecord{
		ID:                 "old-1",
		ProjectID:          project.ID,
		SessionFingerprint: "f-old",
		Necessary:          true,
		Marketing:          true,
		ConsentTimestamp:   time.Now().AddDate(0, 0, -3),
		CreatedAt:          time.Now().AddDate(0, 0, -3),
	}
	require.NoError(t, db.Create(&old).Error)

	result, err := service.GetStats(project.ID, "user1", false)
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.Stats.TotalConsents)
	assert.Equal(t, int64(2), result.Stats.Last24Hours)
	assert.Equal(t, int64(3), result.Stats.Last7Days)

	// Deux jours distincts, le plus récent d'abord
	require.Len(t, result.DailyStats, 2)
	assert.Equal(t, int64(2), result.DailyStats[0].Total)
	assert.Equal(t, int64(1), result.DailyStats[0].Analytics)
	assert.Equal(t, int64(1), result.DailyStats[1].Total)
	assert.Equal(t, int64(1), result.DailyStats[1].Marketing)
}

func TestGetStatsCountries(t *testing.T) {
	db := setupTestDB(t)
	service := NewConsentService(db, 24, nil)
	project := createTestProject(t, db, "user1")

	records := []ConsentRecord{
		{ID: "c1", ProjectID: project.ID, SessionFingerprint: "f1", CountryCode: "FR", Necessary: true, CreatedAt: time.Now()},
		{ID: "c2", ProjectID: project.ID, SessionFingerprint: "f2", CountryCode: "FR", Necessary: true, CreatedAt: time.Now()},
		{ID: "c3", ProjectID: project.ID, SessionFingerprint: "f3", CountryCode: "IT", Necessary: true, CreatedAt: time.Now()},
		{ID: "c4", ProjectID: project.ID, SessionFingerprint: "f4", CountryCode: "", Necessary: true, CreatedAt: time.Now()},
	}
	for i := range records {
		require.NoError(t, db.Create(&records[i]).Error)
	}

	result, err := service.GetStats(project.ID, "user1", false)
	require.NoError(t, err)

	// Le code pays vide (GeoIP désactivé) n'apparaît pas
	require.Len(t, result.Countries, 2)
	assert.Equal(t, "FR", result.Countries[0].Country)
	assert.Equal(t, int64(2), result.Countries[0].Count)
	assert.Equal(t, "IT", result.Countries[1].Country)
}

// ============= Rétention =============

func TestCleanupOldConsents(t *testing.T) {
	db := setupTestDB(t)
	project := createTestProject(t, db, "user1")

	recent := ConsentRecord{ID: "r1", ProjectID: project.ID, SessionFingerprint: "f1", Necessary: true, CreatedAt: time.Now()}
	old := ConsentRecord{ID: "r2", ProjectID: project.ID, SessionFingerprint: "f2", Necessary: true, CreatedAt: time.Now().AddDate(0, 0, -400)}
	require.NoError(t, db.Create(&recent).Error)
	require.NoError(t, db.Create(&old).Error)

	require.NoError(t, CleanupOldConsents(db, 365))

	var count int64
	db.Model(&ConsentRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var remaining ConsentRecord
	require.NoError(t, db.First(&remaining).Error)
	assert.Equal(t, "r1", remaining.ID)
}

func TestSetupRetentionCronDisabled(t *testing.T) {
	assert.Nil(t, SetupRetentionCron(nil, 0))
	assert.Nil(t, SetupRetentionCron(nil, -1))
}
