package clprojects

// Version courante du schéma de configuration de bannière.
// Les configurations stockées sans version sont normalisées vers celle-ci.
const BannerConfigVersion = 1

// BannerConfig est le schéma typé et versionné de la bannière.
// La configuration est validée et normalisée à la frontière (lecture
// en base, écriture depuis l'éditeur), jamais consommée en blob brut.
type BannerConfig struct {
	Version      int              `json:"version" yaml:"version"`
	Layout       string           `json:"layout" yaml:"layout"` // top ou bottom
	Colors       BannerColors     `json:"colors" yaml:"colors"`
	Texts        BannerTexts      `json:"texts" yaml:"texts"`
	Categories   BannerCategories `json:"categories" yaml:"categories"`
	FloatingIcon FloatingIcon     `json:"floating_icon" yaml:"floatingicon"`
	Integrations Integrations     `json:"integrations" yaml:"integrations"`
	LogoURL      string           `json:"logo_url" yaml:"logourl"`
}

// Intégrations tierces chargées par le script seulement si la
// catégorie correspondante a été accordée
type Integrations struct {
	AnalyticsTagID string `json:"analytics_tag_id" yaml:"analyticstagid"` // tag de mesure type G-XXXX
	AdsPixelID     string `json:"ads_pixel_id" yaml:"adspixelid"`         // pixel publicitaire
}

type BannerColors struct {
	Background string `json:"background" yaml:"background"`
	Text       string `json:"text" yaml:"text"`
	Button     string `json:"button" yaml:"button"`
	ButtonText string `json:"button_text" yaml:"buttontext"`
}

type BannerTexts struct {
	Title     string `json:"title" yaml:"title"`
	Message   string `json:"message" yaml:"message"`
	AcceptAll string `json:"accept_all" yaml:"acceptall"`
	RejectAll string `json:"reject_all" yaml:"rejectall"`
	Customize string `json:"customize" yaml:"customize"`
	Save      string `json:"save" yaml:"save"`
}

// Catégories proposées dans le panneau de personnalisation.
// "necessary" n'apparaît pas : toujours active, non désactivable.
type BannerCategories struct {
	Analytics   bool `json:"analytics" yaml:"analytics"`
	Marketing   bool `json:"marketing" yaml:"marketing"`
	Preferences bool `json:"preferences" yaml:"preferences"`
}

type FloatingIcon struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Position string `json:"position" yaml:"position"` // left ou right
}

// DefaultBannerConfig retourne la configuration de repli : couleurs
// fixes, textes italiens, toutes les catégories activées. Utilisée
// quand un projet n'a aucune configuration exploitable.
func DefaultBannerConfig() BannerConfig {
	return BannerConfig{
		Version: BannerConfigVersion,
		Layout:  "bottom",
		Colors: BannerColors{
			Background: "#1f2937",
			Text:       "#f9fafb",
			Button:     "#2563eb",
			ButtonText: "#ffffff",
		},
		Texts: BannerTexts{
			Title:     "Questo sito utilizza i cookie :cookie:",
			Message:   "Utilizziamo i cookie per migliorare la tua esperienza di navigazione. Puoi accettare tutti i cookie o personalizzare le tue preferenze.",
			AcceptAll: "Accetta tutti",
			RejectAll: "Rifiuta tutti",
			Customize: "Personalizza",
			Save:      "Salva preferenze",
		},
		Categories: BannerCategories{
			Analytics:   true,
			Marketing:   true,
			Preferences: true,
		},
		FloatingIcon: FloatingIcon{
			Enabled:  true,
			Position: "left",
		},
	}
}

// Normalize remplit chaque champ optionnel absent avec sa valeur par
// défaut, une seule fois à la frontière
func (b *BannerConfig) Normalize() {
	def := DefaultBannerConfig()

	if b.Version == 0 {
		b.Version = BannerConfigVersion
	}
	if b.Layout != "top" && b.Layout != "bottom" {
		b.Layout = def.Layout
	}

	if b.Colors.Background == "" {
		b.Colors.Background = def.Colors.Background
	}
	if b.Colors.Text == "" {
		b.Colors.Text = def.Colors.Text
	}
	if b.Colors.Button == "" {
		b.Colors.Button = def.Colors.Button
	}
	if b.Colors.ButtonText == "" {
		b.Colors.ButtonText = def.Colors.ButtonText
	}

	if b.Texts.Title == "" {
		b.Texts.Title = def.Texts.Title
	}
	if b.Texts.Message == "" {
		b.Texts.Message = def.Texts.Message
	}
	if b.Texts.AcceptAll == "" {
		b.Texts.AcceptAll = def.Texts.AcceptAll
	}
	if b.Texts.RejectAll == "" {
		b.Texts.RejectAll = def.Texts.RejectAll
	}
	if b.Texts.Customize == "" {
		b.Texts.Customize = def.Texts.Customize
	}
	if b.Texts.Save == "" {
		b.Texts.Save = def.Texts.Save
	}

	if b.FloatingIcon.Position != "left" && b.FloatingIcon.Position != "right" {
		b.FloatingIcon.Position = def.FloatingIcon.Position
	}
}
