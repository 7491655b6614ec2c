package clscript

import (
	"bytes"
	"encoding/json"
	"text/template"

	"littleconsent/internal/models/climages"
	"littleconsent/internal/models/clprojects"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

// Generator synthétise le script embarquable d'un projet.
// La génération est totale : quel que soit l'état du projet ou de sa
// configuration, un script valide est retourné, jamais une erreur.
type Generator struct {
	apiBase    string
	production bool
	minifier   *minify.M
}

func NewGenerator(apiBase string, production bool) *Generator {
	m := minify.New()
	m.AddFunc("application/javascript", js.Minify)

	return &Generator{
		apiBase:    apiBase,
		production: production,
		minifier:   m,
	}
}

// scriptConfig est la configuration résolue injectée en JSON dans le
// script. Les textes Markdown sont rendus côté serveur.
type scriptConfig struct {
	Layout       string                      `json:"layout"`
	Colors       clprojects.BannerColors     `json:"colors"`
	ButtonHover  string                      `json:"buttonHover"`
	Texts        clprojects.BannerTexts      `json:"texts"`
	TitleHTML    string                      `json:"titleHtml"`
	MessageHTML  string                      `json:"messageHtml"`
	MessagePlain string                      `json:"messagePlain"`
	Categories   clprojects.BannerCategories `json:"categories"`
	FloatingIcon clprojects.FloatingIcon     `json:"floatingIcon"`
	Integrations clprojects.Integrations     `json:"integrations"`
	LogoURL      string                      `json:"logoUrl"`
	Language     string                      `json:"language"`
}

type scriptData struct {
	ProjectID  string
	APIBase    string
	ConfigJSON string
}

// Generate produit le script de la bannière pour un projet chargé.
// Toute défaillance interne dégrade vers le script de repli.
func (g *Generator) Generate(project *clprojects.Project) string {
	if project == nil {
		return g.GenerateFallback("")
	}

	source, err := g.render(project.ID, project.Banner, project.Language)
	if err != nil {
		// Branche de repli explicite : la disponibilité du script prime
		// sur le signalement de l'erreur au site embarquant
		log.Warn().Err(err).Str("project_id", project.ID).Msg("Génération du script échouée, repli sur la bannière par défaut")
		return g.GenerateFallback(project.ID)
	}

	return g.minified(source)
}

// GenerateFallback produit le script avec la configuration par défaut.
// Utilisé pour un projet inconnu ou une configuration inexploitable :
// le site embarquant reçoit dans tous les cas une bannière.
func (g *Generator) GenerateFallback(projectID string) string {
	source, err := g.render(projectID, clprojects.DefaultBannerConfig(), "it")
	if err != nil {
		// Le template est statique, cette branche est un garde-fou
		log.Error().Err(err).Msg("Génération du script de repli échouée")
		return minimalScript
	}

	return g.minified(source)
}

func (g *Generator) render(projectID string, banner clprojects.BannerConfig, language string) (string, error) {
	banner.Normalize()

	hover := climages.HexToColor(banner.Colors.Button).Darken(20).ToHex()

	cfg := scriptConfig{
		Layout:       banner.Layout,
		Colors:       banner.Colors,
		ButtonHover:  hover,
		Texts:        banner.Texts,
		TitleHTML:    RenderInline(banner.Texts.Title),
		MessageHTML:  RenderMessage(banner.Texts.Message),
		MessagePlain: PlainText(banner.Texts.Message),
		Categories:   banner.Categories,
		FloatingIcon: banner.FloatingIcon,
		Integrations: banner.Integrations,
		LogoURL:      banner.LogoURL,
		Language:     language,
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = scriptTemplate.Execute(&buf, scriptData{
		ProjectID:  projectID,
		APIBase:    g.apiBase,
		ConfigJSON: string(configJSON),
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (g *Generator) minified(source string) string {
	if !g.production {
		return source
	}

	minified, err := g.minifier.String("application/javascript", source)
	if err != nil {
		return source
	}
	return minified
}

// minimalScript est le dernier filet de sécurité : bannière générique
// sans configuration, consentement stocké localement uniquement
const minimalScript = `(function(){"use strict";try{var k="lc_consent_fallback";if(localStorage.getItem(k))return;var b=document.createElement("div");b.setAttribute("style","position:fixed;bottom:0;left:0;right:0;background:#1f2937;color:#f9fafb;padding:16px;z-index:99999;font-family:sans-serif;text-align:center");b.innerHTML='Questo sito utilizza i cookie. <button id="lc-ok" style="margin-left:8px;padding:6px 14px;border:0;border-radius:4px;background:#2563eb;color:#fff;cursor:pointer">OK</button>';document.body.appendChild(b);document.getElementById("lc-ok").addEventListener("click",function(){try{localStorage.setItem(k,JSON.stringify({consents:{necessary:true},timestamp:new Date().toISOString(),version:1}))}catch(e){}b.remove()})}catch(e){}})();`

var scriptTemplate = template.Must(template.New("banner").Parse(bannerScriptSource))
