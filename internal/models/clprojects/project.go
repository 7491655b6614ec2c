package clprojects

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Project est l'unité de configuration d'un tenant : un domaine,
// une bannière. Jamais supprimé physiquement, is_active sert de
// suppression douce.
type Project struct {
	ID         string       `json:"id" gorm:"primaryKey;size:36"`
	OwnerID    string       `json:"owner_id" gorm:"not null;index"`
	Domain     string       `json:"domain" gorm:"not null"`
	Language   string       `json:"language"`
	BannerJSON string       `json:"-" gorm:"column:banner_config;type:text"`
	Banner     BannerConfig `json:"banner" gorm:"-"`
	IsActive   bool         `json:"is_active" gorm:"default:true;index"`
	CreatedAt  time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Project) TableName() string {
	return "projects"
}

// Hooks GORM : la configuration typée est sérialisée en colonne texte,
// normalisée dans les deux sens
func (p *Project) BeforeSave(tx *gorm.DB) error {
	p.Banner.Normalize()
	data, err := json.Marshal(p.Banner)
	if err != nil {
		return err
	}
	p.BannerJSON = string(data)
	return nil
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Project) AfterFind(tx *gorm.DB) error {
	if p.BannerJSON != "" {
		if err := json.Unmarshal([]byte(p.BannerJSON), &p.Banner); err != nil {
			// Configuration corrompue : repli sur la bannière par défaut,
			// le script généré ne doit jamais en dépendre
			log.Warn().Err(err).Str("project_id", p.ID).Msg("Configuration de bannière illisible, repli sur les défauts")
			p.Banner = DefaultBannerConfig()
			return nil
		}
	}
	p.Banner.Normalize()
	return nil
}

// ProjectService gère le CRUD des projets pour le dashboard
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

func (ps *ProjectService) Create(project *Project) error {
	project.IsActive = true
	return ps.db.Create(project).Error
}

// GetByID retourne le projet, actif ou non
func (ps *ProjectService) GetByID(id string) (*Project, error) {
	var project Project
	if err := ps.db.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// GetActive retourne le projet seulement s'il est actif, c'est le
// chemin utilisé par la soumission publique de consentement
func (ps *ProjectService) GetActive(id string) (*Project, error) {
	var project Project
	if err := ps.db.First(&project, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (ps *ProjectService) List(ownerID string) ([]Project, error) {
	var projects []Project
	err := ps.db.
		Where("owner_id = ? AND is_active = ?", ownerID, true).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (ps *ProjectService) Update(project *Project) error {
	return ps.db.Save(project).Error
}

// SoftDelete désactive le projet sans toucher aux consentements
func (ps *ProjectService) SoftDelete(id string) error {
	result := ps.db.Model(&Project{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsNotFound indique si l'erreur est une absence d'enregistrement
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
