package clscript

import (
	"strings"
	"testing"

	"littleconsent/internal/models/clprojects"

	"github.com/stretchr/testify/assert"
)

// ============= Génération =============

func TestGenerateContainsProjectConfig(t *testing.T) {
	g := NewGenerator("https://api.example.com", false)

	project := &clprojects.Project{
		ID:       "p1",
		Domain:   "x.com",
		Language: "fr",
		Banner: clprojects.BannerConfig{
			Layout: "top",
			Colors: clprojects.BannerColors{Button: "#ff0000"},
			Texts:  clprojects.BannerTexts{Title: "Bonjour"},
		},
	}

	script := g.Generate(project)

	assert.Contains(t, script, `"p1"`)
	assert.Contains(t, script, "https://api.example.com")
	assert.Contains(t, script, `"top"`)
	assert.Contains(t, script, "#ff0000")
	assert.Contains(t, script, "Bonjour")
	assert.Contains(t, script, "lc_consent_")
}

func TestGenerateNilProject(t *testing.T) {
	g := NewGenerator("https://api.example.com", false)

	// Jamais de panique ni de chaîne vide
	script := g.Generate(nil)
	assert.NotEmpty(t, script)
	assert.Contains(t, script, "lc_consent_")
}

func TestGenerateFallbackUsesDefaults(t *testing.T) {
	g := NewGenerator("https://api.example.com", false)

	script := g.GenerateFallback("p-inconnu")

	assert.Contains(t, script, `"p-inconnu"`)
	assert.Contains(t, script, "Accetta tutti")
	assert.Contains(t, script, "https://api.example.com")
}

func TestGenerateEmptyBannerGetsDefaults(t *testing.T) {
	g := NewGenerator("https://api.example.com", false)

	// Configuration totalement vide : la normalisation fournit tout
	project := &clprojects.Project{ID: "p1"}
	script := g.Generate(project)

	assert.Contains(t, script, "Accetta tutti")
	assert.Contains(t, script, "#2563eb")
}

func TestGenerateMinifiedInProduction(t *testing.T) {
	dev := NewGenerator("https://api.example.com", false)
	prod := NewGenerator("https://api.example.com", true)

	project := &clprojects.Project{ID: "p1"}

	devScript := dev.Generate(project)
	prodScript := prod.Generate(project)

	assert.Less(t, len(prodScript), len(devScript))
	assert.Contains(t, prodScript, `"p1"`)
}

func TestGenerateDerivesHoverColor(t *testing.T) {
	g := NewGenerator("https://api.example.com", false)

	project := &clprojects.Project{
		ID: "p1",
		Banner: clprojects.BannerConfig{
			Colors: clprojects.BannerColors{Button: "#ff0000"},
		},
	}
	script := g.Generate(project)

	// #ff0000 assombri de 20% donne #cc0000
	assert.Contains(t, script, "#cc0000")
}

// ============= Rendu Markdown =============

func TestRenderMessage(t *testing.T) {
	html := RenderMessage("Nous utilisons des **cookies**")
	assert.Contains(t, html, "<strong>cookies</strong>")
}

func TestRenderMessageEmoji(t *testing.T) {
	html := RenderMessage("Cookies :cookie:")
	assert.Contains(t, html, "🍪")
}

func TestRenderInlineStripsParagraph(t *testing.T) {
	html := RenderInline("Titre **gras**")
	assert.False(t, strings.HasPrefix(html, "<p>"))
	assert.Contains(t, html, "<strong>gras</strong>")
}

func TestPlainTextStripsMarkdown(t *testing.T) {
	plain := PlainText("Un [lien](https://example.com) et du **gras**")
	assert.NotContains(t, plain, "](")
	assert.NotContains(t, plain, "**")
	assert.Contains(t, plain, "lien")
	assert.Contains(t, plain, "gras")
}
