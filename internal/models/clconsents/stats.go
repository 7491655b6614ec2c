package clconsents

import (
	"context"
	"time"

	"littleconsent/internal/models/clprojects"

	"gorm.io/gorm"
)

// Stats est le résumé agrégé d'un projet. Un projet sans aucun
// consentement retourne des zéros, jamais une erreur.
type Stats struct {
	TotalConsents       int64 `json:"total_consents"`
	NecessaryConsents   int64 `json:"necessary_consents"`
	AnalyticsConsents   int64 `json:"analytics_consents"`
	MarketingConsents   int64 `json:"marketing_consents"`
	PreferencesConsents int64 `json:"preferences_consents"`
	Last24Hours         int64 `json:"last_24_hours"`
	Last7Days           int64 `json:"last_7_days"`
}

// DailyStat est le détail d'un jour calendaire
type DailyStat struct {
	Date        string `json:"date"`
	Total       int64  `json:"total"`
	Analytics   int64  `json:"analytics"`
	Marketing   int64  `json:"marketing"`
	Preferences int64  `json:"preferences"`
}

type CountryStat struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// StatsResult regroupe tout ce que le dashboard affiche
type StatsResult struct {
	Stats      Stats                  `json:"stats"`
	DailyStats []DailyStat            `json:"dailyStats"`
	Countries  []CountryStat          `json:"countries"`
	Realtime   map[string]interface{} `json:"realtime,omitempty"`
}

// GetStats calcule les agrégats d'un projet pour son propriétaire.
// Un admin passe outre la vérification de propriété. Lecture seule.
func (cs *ConsentService) GetStats(projectID, ownerID string, isAdmin bool) (*StatsResult, error) {
	var project clprojects.Project
	if err := cs.db.First(&project, "id = ?", projectID).Error; err != nil {
		if clprojects.IsNotFound(err) {
			return nil, ErrProjectNotFound
		}
		logStoreError(err, projectID, "stats_project_lookup")
		return nil, err
	}

	if !isAdmin && project.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	result := &StatsResult{
		DailyStats: []DailyStat{},
		Countries:  []CountryStat{},
	}

	base := cs.db.Model(&ConsentRecord{}).Where("project_id = ?", projectID)

	// 1. Totaux globaux et par catégorie
	type summaryRow struct {
		Total       int64
		Necessary   int64
		Analytics   int64
		Marketing   int64
		Preferences int64
	}
	var summary summaryRow
	err := base.Session(&gorm.Session{}).
		Select("COUNT(*) as total, " +
			"COALESCE(SUM(necessary), 0) as necessary, " +
			"COALESCE(SUM(analytics), 0) as analytics, " +
			"COALESCE(SUM(marketing), 0) as marketing, " +
			"COALESCE(SUM(preferences), 0) as preferences").
		Scan(&summary).Error
	if err != nil {
		logStoreError(err, projectID, "stats_summary")
		return nil, err
	}
	result.Stats.TotalConsents = summary.Total
	result.Stats.NecessaryConsents = summary.Necessary
	result.Stats.AnalyticsConsents = summary.Analytics
	result.Stats.MarketingConsents = summary.Marketing
	result.Stats.PreferencesConsents = summary.Preferences

	// 2. Fenêtres 24h et 7 jours
	now := time.Now()
	if err := base.Session(&gorm.Session{}).
		Where("created_at >= ?", now.Add(-24*time.Hour)).
		Count(&result.Stats.Last24Hours).Error; err != nil {
		logStoreError(err, projectID, "stats_last24h")
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Count(&result.Stats.Last7Days).Error; err != nil {
		logStoreError(err, projectID, "stats_last7d")
		return nil, err
	}

	// 3. Détail journalier des 30 derniers jours, plus récent d'abord
	thirtyDaysAgo := now.AddDate(0, 0, -30)
	err = base.Session(&gorm.Session{}).
		Select("DATE(created_at) as date, COUNT(*) as total, "+
			"COALESCE(SUM(analytics), 0) as analytics, "+
			"COALESCE(SUM(marketing), 0) as marketing, "+
			"COALESCE(SUM(preferences), 0) as preferences").
		Where("created_at >= ?", thirtyDaysAgo).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&result.DailyStats).Error
	if err != nil {
		logStoreError(err, projectID, "stats_daily")
		return nil, err
	}

	// 4. Répartition par pays si le GeoIP est actif
	err = base.Session(&gorm.Session{}).
		Select("country_code as country, COUNT(*) as count").
		Where("country_code != ''").
		Group("country_code").
		Order("count DESC").
		Limit(10).
		Scan(&result.Countries).Error
	if err != nil {
		logStoreError(err, projectID, "stats_countries")
		return nil, err
	}

	// 5. Compteurs temps réel Redis, best-effort
	if cs.redis != nil {
		if realtime, err := cs.redis.RealtimeStats(context.Background(), projectID); err == nil {
			result.Realtime = realtime
		}
	}

	return result, nil
}
