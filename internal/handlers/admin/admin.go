package handlers_admin

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"littleconsent/internal/models/clapp"
	"littleconsent/internal/models/climages"
	"littleconsent/internal/models/clprojects"

	"github.com/andskur/argon2-hashing"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AdminHandler struct {
	projects *clprojects.ProjectService
}

func NewAdminHandler(projects *clprojects.ProjectService) *AdminHandler {
	return &AdminHandler{
		projects: projects,
	}
}

type LoginRequest struct {
	Username      string `json:"username" binding:"required"`
	Password      string `json:"password" binding:"required"`
	CaptchaID     string `json:"captchaID"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

// Middleware d'authentification
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification requise"})
			c.Abort()
			return
		}
		c.Set("authenticated", true)
		c.Next()
	}
}

// Captcha retourne un nouveau captcha pour le formulaire de login
func (ah *AdminHandler) Captcha(c *gin.Context) {
	app := clapp.GetInstance()
	app.Captcha.CaptchaHandler(c, app.Configuration.Production)
}

func (ah *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	app := clapp.GetInstance()

	if err := app.Captcha.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	// Vérification login / pass
	err := argon2.CompareHashAndPassword([]byte(app.Configuration.User.Hash), []byte(req.Password))
	if err != nil || req.Username != app.Configuration.User.Login {
		log.Warn().Str("user", req.Username).Str("ip", c.ClientIP()).Msg("Tentative de connexion échouée")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}
	log.Info().Str("user", req.Username).Str("ip", c.ClientIP()).Msg("Connexion réussie")

	// Créer la session
	session := sessions.Default(c)
	session.Set("user_id", "admin")
	session.Set("username", req.Username)
	session.Set("authenticated", true)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Connexion réussie",
	})
}

func (ah *AdminHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}

// ============= GESTION DES PROJETS =============

type ProjectRequest struct {
	Domain   string                   `json:"domain" binding:"required"`
	Language string                   `json:"language"`
	OwnerID  string                   `json:"ownerId"`
	Banner   *clprojects.BannerConfig `json:"banner"`
}

func (ah *AdminHandler) ListProjects(c *gin.Context) {
	ownerID := c.Query("ownerId")
	if ownerID == "" {
		ownerID = sessionOwner(c)
	}

	projects, err := ah.projects.List(ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (ah *AdminHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain est requis"})
		return
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = sessionOwner(c)
	}

	project := &clprojects.Project{
		OwnerID:  ownerID,
		Domain:   req.Domain,
		Language: req.Language,
	}
	if req.Banner != nil {
		project.Banner = *req.Banner
	}

	if err := ah.projects.Create(project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Projet créé",
		"project": project,
	})
}

func (ah *AdminHandler) GetProject(c *gin.Context) {
	project, err := ah.projects.GetByID(c.Param("id"))
	if err != nil {
		if clprojects.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Projet introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func (ah *AdminHandler) UpdateProject(c *gin.Context) {
	project, err := ah.projects.GetByID(c.Param("id"))
	if err != nil {
		if clprojects.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Projet introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "domain est requis"})
		return
	}

	project.Domain = req.Domain
	if req.Language != "" {
		project.Language = req.Language
	}
	if req.Banner != nil {
		project.Banner = *req.Banner
	}

	if err := ah.projects.Update(project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Projet mis à jour",
		"project": project,
	})
}

func (ah *AdminHandler) DeleteProject(c *gin.Context) {
	if err := ah.projects.SoftDelete(c.Param("id")); err != nil {
		if clprojects.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Projet introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Projet désactivé"})
}

// UploadLogo reçoit le logo affiché dans la bannière d'un projet, le
// redimensionne et enregistre son URL dans la configuration
func (ah *AdminHandler) UploadLogo(c *gin.Context) {
	project, err := ah.projects.GetByID(c.Param("id"))
	if err != nil {
		if clprojects.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Projet introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier non trouvé"})
		return
	}
	defer file.Close()

	// Vérifier le type MIME
	buffer := make([]byte, 512)
	if _, err = file.Read(buffer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture fichier"})
		return
	}

	contentType := http.DetectContentType(buffer)
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le fichier doit être une image"})
		return
	}

	// Un logo de bannière reste petit
	if header.Size > 2*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop grande (max 2MB)"})
		return
	}

	// Réinitialiser le curseur du fichier
	file.Seek(0, 0)

	img, format, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur décodage image"})
		return
	}

	// Redimensionner pour l'affichage dans la bannière
	processedImg := climages.Resize(img, 256)

	uploadsDir := "./static/uploads"
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création dossier"})
		return
	}

	var ext string
	switch format {
	case "jpeg", "jpg":
		ext = ".jpg"
	case "png":
		ext = ".png"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "seules les images jpg et png sont supportées"})
		return
	}

	filename := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.NewString()[:8], ext)
	destination := filepath.Join(uploadsDir, filename)

	out, err := os.Create(destination)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création fichier"})
		return
	}
	defer out.Close()

	switch format {
	case "png":
		// Garder le PNG pour préserver la transparence
		err = png.Encode(out, processedImg)
	default:
		err = jpeg.Encode(out, processedImg, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur encodage image"})
		return
	}

	project.Banner.LogoURL = "/static/uploads/" + filename
	if err := ah.projects.Update(project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logo uploadé",
		"url":     project.Banner.LogoURL,
	})
}

func sessionOwner(c *gin.Context) string {
	session := sessions.Default(c)
	if username, ok := session.Get("username").(string); ok {
		return username
	}
	return "admin"
}
