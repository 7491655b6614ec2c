package clconsents

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CleanupOldConsents supprime les consentements plus vieux que la
// durée de rétention configurée
func CleanupOldConsents(db *gorm.DB, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("created_at < ?", cutoff).Delete(&ConsentRecord{})
	if result.Error != nil {
		return result.Error
	}

	log.Info().
		Int64("deleted", result.RowsAffected).
		Int("retention_days", retentionDays).
		Msg("Purge des anciens consentements terminée")

	return nil
}

// SetupRetentionCron programme la purge quotidienne. Retourne nil si
// retentionDays <= 0 : la conservation est alors illimitée.
func SetupRetentionCron(db *gorm.DB, retentionDays int) *cron.Cron {
	if retentionDays <= 0 {
		return nil
	}

	c := cron.New()

	// Exécuter tous les jours à 2h du matin
	c.AddFunc("0 2 * * *", func() {
		if err := CleanupOldConsents(db, retentionDays); err != nil {
			log.Error().Err(err).Msg("Échec de la purge des consentements")
		}
	})

	c.Start()
	return c
}
