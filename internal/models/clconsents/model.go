package clconsents

import "time"

// ConsentRecord représente le choix enregistré d'un visiteur pour un
// projet. Aucune donnée personnelle brute : le fingerprint et le hash
// d'IP sont des digests à sens unique.
type ConsentRecord struct {
	ID                 string    `json:"id" gorm:"primaryKey;size:36"`
	ProjectID          string    `json:"project_id" gorm:"not null;index:idx_project_fingerprint"`
	SessionFingerprint string    `json:"-" gorm:"not null;size:64;index:idx_project_fingerprint"`
	IPHash             string    `json:"-" gorm:"size:64"`
	UserAgent          string    `json:"user_agent"`
	Domain             string    `json:"domain"`
	CountryCode        string    `json:"country_code" gorm:"size:2;index"`
	Necessary          bool      `json:"necessary" gorm:"not null;default:true"`
	Analytics          bool      `json:"analytics"`
	Marketing          bool      `json:"marketing"`
	Preferences        bool      `json:"preferences"`
	ConsentTimestamp   time.Time `json:"consent_timestamp"`
	// CreatedAt est rafraîchi à chaque mise à jour dans la fenêtre :
	// la fenêtre de 24h glisse depuis la dernière soumission
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ConsentRecord) TableName() string {
	return "consents"
}

// CategoryFlags porte les quatre dimensions de consentement d'une
// soumission. Les champs absents du payload valent false, sauf
// necessary qui est forcé à true côté serveur.
type CategoryFlags struct {
	Necessary   bool `json:"necessary"`
	Analytics   bool `json:"analytics"`
	Marketing   bool `json:"marketing"`
	Preferences bool `json:"preferences"`
}
