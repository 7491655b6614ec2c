package handlers_script

import (
	"fmt"
	"net/http"

	"littleconsent/internal/models/clprojects"
	"littleconsent/internal/models/clscript"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ScriptHandler struct {
	projects     *clprojects.ProjectService
	generator    *clscript.Generator
	cacheSeconds int
}

func NewScriptHandler(projects *clprojects.ProjectService, generator *clscript.Generator, cacheMinutes int) *ScriptHandler {
	return &ScriptHandler{
		projects:     projects,
		generator:    generator,
		cacheSeconds: cacheMinutes * 60,
	}
}

// Serve retourne le script embarquable d'un projet. Cette route ne
// répond jamais autre chose que 200 : un projet inconnu ou une base
// indisponible dégradent vers le script de repli, le site du client
// doit toujours recevoir une bannière fonctionnelle.
func (sh *ScriptHandler) Serve(c *gin.Context) {
	projectID := c.Param("projectid")

	var body string
	project, err := sh.projects.GetActive(projectID)
	if err != nil {
		if !clprojects.IsNotFound(err) {
			log.Error().Err(err).Str("project_id", projectID).Msg("Lecture projet impossible, script de repli servi")
		}
		body = sh.generator.GenerateFallback(projectID)
	} else {
		body = sh.generator.Generate(project)
	}

	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", sh.cacheSeconds))
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(body))
}
