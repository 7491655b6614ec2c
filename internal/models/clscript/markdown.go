package clscript

import (
	"bytes"
	"strings"

	stripmd "github.com/writeas/go-strip-markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithXHTML(),
	),
)

// RenderMessage convertit le message Markdown de la bannière en HTML
// injecté dans le DOM du site hôte. En cas d'échec le texte brut
// échappé est retourné, jamais une erreur.
func RenderMessage(markdown string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "<p>" + htmlEscape(markdown) + "</p>"
	}
	return strings.TrimSpace(buf.String())
}

// RenderInline rend une ligne (titre, libellé) sans le <p> englobant
func RenderInline(markdown string) string {
	rendered := RenderMessage(markdown)
	rendered = strings.TrimPrefix(rendered, "<p>")
	rendered = strings.TrimSuffix(rendered, "</p>")
	return rendered
}

// PlainText retourne le message sans balisage, utilisé pour
// l'aria-label de la bannière
func PlainText(markdown string) string {
	return strings.TrimSpace(stripmd.Strip(markdown))
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
