package handlers_consent

import (
	"net/http"
	"time"

	"littleconsent/internal/models/clapp"
	"littleconsent/internal/models/clconsents"
	"littleconsent/internal/models/clfingerprint"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type ConsentHandler struct {
	service *clconsents.ConsentService
}

func NewConsentHandler(service *clconsents.ConsentService) *ConsentHandler {
	return &ConsentHandler{
		service: service,
	}
}

// SubmitConsentRequest est le payload envoyé par le script embarqué.
// Aucun champ n'est binding:required : la validation fine est dans le
// service pour nommer précisément les champs manquants.
type SubmitConsentRequest struct {
	ProjectID string                    `json:"projectId"`
	Domain    string                    `json:"domain"`
	Consents  *clconsents.CategoryFlags `json:"consents"`
	Timestamp string                    `json:"timestamp"`
}

// Submit enregistre un consentement visiteur, endpoint public
func (ch *ConsentHandler) Submit(c *gin.Context) {
	var req SubmitConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Payload JSON invalide",
		})
		return
	}

	var clientTime *time.Time
	if req.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			clientTime = &parsed
		}
	}

	consentID, err := ch.service.Submit(clconsents.SubmitParams{
		ProjectID:   req.ProjectID,
		Categories:  req.Consents,
		Domain:      req.Domain,
		UserAgent:   c.Request.UserAgent(),
		ClientIP:    clfingerprint.ClientIP(c),
		CountryCode: clapp.GetInstance().Geo.Country(clfingerprint.ClientIP(c)),
		ClientTime:  clientTime,
	})
	if err != nil {
		switch {
		case clconsents.IsValidation(err):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		case err == clconsents.ErrProjectNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Projet introuvable",
			})
		default:
			// Détail loggé côté service, réponse générique au client
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Erreur interne",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Consentement enregistré",
		"consentId": consentID,
	})
}

// GetStats retourne les agrégats d'un projet pour son propriétaire
func (ch *ConsentHandler) GetStats(c *gin.Context) {
	projectID := c.Query("projectId")
	userID := c.Query("userId")

	if projectID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "projectId et userId sont requis",
		})
		return
	}

	// Une session admin du dashboard passe outre la propriété
	session := sessions.Default(c)
	isAdmin := session.Get("authenticated") == true

	result, err := ch.service.GetStats(projectID, userID, isAdmin)
	if err != nil {
		switch err {
		case clconsents.ErrProjectNotFound:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Projet introuvable",
			})
		case clconsents.ErrForbidden:
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Accès refusé",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Erreur interne",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
