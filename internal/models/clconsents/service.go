package clconsents

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"littleconsent/internal/clredis"
	"littleconsent/internal/models/clfingerprint"
	"littleconsent/internal/models/clprojects"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ConsentService porte l'écriture idempotente des consentements et
// les agrégations de statistiques sur la même table
type ConsentService struct {
	db     *gorm.DB
	window time.Duration
	redis  *clredis.RedisStore // optionnel, compteurs temps réel

	// Sérialise find-or-insert par fingerprint pour éviter la course
	// check-then-act : deux soumissions simultanées du même visiteur
	// ne doivent produire qu'une seule ligne
	locks [256]sync.Mutex
}

// NewConsentService construit le service. redisStore peut être nil.
func NewConsentService(db *gorm.DB, windowHours int, redisStore *clredis.RedisStore) *ConsentService {
	if windowHours <= 0 {
		windowHours = 24
	}
	return &ConsentService{
		db:     db,
		window: time.Duration(windowHours) * time.Hour,
		redis:  redisStore,
	}
}

// SubmitParams est l'entrée d'une soumission de consentement
type SubmitParams struct {
	ProjectID    string
	Categories   *CategoryFlags // nil = absent du payload
	Domain       string
	UserAgent    string
	ClientIP     string
	CountryCode  string
	ClientTime   *time.Time // timestamp fourni par le script, sinon heure serveur
}

// Submit enregistre ou met à jour le consentement d'un visiteur.
// Retourne l'id de l'enregistrement, créé ou mis à jour.
func (cs *ConsentService) Submit(params SubmitParams) (string, error) {
	var missing []string
	if params.ProjectID == "" {
		missing = append(missing, "projectId")
	}
	if params.Categories == nil {
		missing = append(missing, "consents")
	}
	if len(missing) > 0 {
		return "", &ValidationError{Missing: missing}
	}

	fingerprint := clfingerprint.SessionFingerprint(params.ClientIP, params.UserAgent, params.Domain, params.ProjectID)
	ipHash := clfingerprint.IPHash(params.ClientIP, params.ProjectID)

	consentTime := time.Now()
	if params.ClientTime != nil {
		consentTime = *params.ClientTime
	}

	// necessary est forcé côté serveur, la valeur cliente est ignorée
	flags := *params.Categories
	flags.Necessary = true

	mu := cs.lockFor(fingerprint)
	mu.Lock()
	defer mu.Unlock()

	var consentID string
	now := time.Now()

	err := cs.db.Transaction(func(tx *gorm.DB) error {
		// Vérifier le projet dans la même transaction pour ne pas
		// écrire un consentement sur un projet supprimé entre temps
		var project clprojects.Project
		if err := tx.First(&project, "id = ? AND is_active = ?", params.ProjectID, true).Error; err != nil {
			if clprojects.IsNotFound(err) {
				return ErrProjectNotFound
			}
			return err
		}

		// Chercher un enregistrement vivant dans la fenêtre glissante
		var existing ConsentRecord
		err := tx.
			Where("project_id = ? AND session_fingerprint = ? AND created_at >= ?",
				params.ProjectID, fingerprint, now.Add(-cs.window)).
			Order("created_at DESC").
			First(&existing).Error

		switch {
		case err == nil:
			// Mise à jour : seules les dernières valeurs sont conservées,
			// created_at est rafraîchi pour faire glisser la fenêtre
			consentID = existing.ID
			return tx.Model(&existing).Updates(map[string]interface{}{
				"necessary":         flags.Necessary,
				"analytics":         flags.Analytics,
				"marketing":         flags.Marketing,
				"preferences":       flags.Preferences,
				"consent_timestamp": consentTime,
				"created_at":        now,
			}).Error

		case clprojects.IsNotFound(err):
			record := ConsentRecord{
				ID:                 uuid.NewString(),
				ProjectID:          params.ProjectID,
				SessionFingerprint: fingerprint,
				IPHash:             ipHash,
				UserAgent:          params.UserAgent,
				Domain:             params.Domain,
				CountryCode:        params.CountryCode,
				Necessary:          flags.Necessary,
				Analytics:          flags.Analytics,
				Marketing:          flags.Marketing,
				Preferences:        flags.Preferences,
				ConsentTimestamp:   consentTime,
				CreatedAt:          now,
			}
			consentID = record.ID
			return tx.Create(&record).Error

		default:
			return err
		}
	})
	if err != nil {
		return "", err
	}

	// Compteurs Redis mis à jour hors transaction, en best-effort
	if cs.redis != nil {
		go cs.redis.RecordConsent(context.Background(), params.ProjectID, fingerprint, map[string]bool{
			"necessary":   flags.Necessary,
			"analytics":   flags.Analytics,
			"marketing":   flags.Marketing,
			"preferences": flags.Preferences,
		})
	}

	return consentID, nil
}

// lockFor retourne le mutex de la partition du fingerprint.
// Le fingerprint est hexadécimal, ses deux premiers caractères
// donnent 256 partitions équiréparties.
func (cs *ConsentService) lockFor(fingerprint string) *sync.Mutex {
	var idx byte
	if len(fingerprint) >= 2 {
		if b, err := hex.DecodeString(fingerprint[:2]); err == nil && len(b) == 1 {
			idx = b[0]
		}
	}
	return &cs.locks[idx]
}

// Window expose la fenêtre de déduplication configurée
func (cs *ConsentService) Window() time.Duration {
	return cs.window
}

func logStoreError(err error, projectID string, operation string) {
	log.Error().
		Err(err).
		Str("project_id", projectID).
		Str("operation", operation).
		Msg("Erreur d'accès au stockage des consentements")
}
