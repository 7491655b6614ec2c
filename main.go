package main

import (
	"flag"
	"fmt"
	"os"

	"littleconsent/internal/clconfig"
	"littleconsent/internal/clmiddleware"
	handlers_admin "littleconsent/internal/handlers/admin"
	handlers_consent "littleconsent/internal/handlers/consent"
	handlers_script "littleconsent/internal/handlers/script"
	"littleconsent/internal/models/clapp"
	"littleconsent/internal/models/cllog"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const VERSION string = "0.3.0"

var (
	configuration *clconfig.Config
	BuildID       string
)

func initConfiguration() {
	configFile, shouldCreateExample, versionDisplay, err := parseCommandLineArgs()
	if err != nil {
		fmt.Println("Usage:")
		fmt.Println("  littleconsent -config littleconsent.yaml")
		fmt.Println("  littleconsent -example  (pour créer un fichier exemple)")
		fmt.Println("  littleconsent -version  (affiche la version)")
		os.Exit(1)
	}

	if versionDisplay {
		println(VERSION)
		os.Exit(0)
	}

	clconfig.CreateExample(shouldCreateExample, configFile)

	// Load and validate configuration
	conf, err := clconfig.LoadConfig(configFile)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if err := clconfig.ValidateConfig(conf, configFile); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	configuration = conf
}

func newServer() *gin.Engine {
	if configuration.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	if configuration.TrustedProxies != nil {
		r.SetTrustedProxies(configuration.TrustedProxies)
	}
	if configuration.TrustedPlatform != "" {
		switch configuration.TrustedPlatform {
		case "cloudflare":
			r.TrustedPlatform = "CF-Connecting-IP"
		case "google":
			r.TrustedPlatform = gin.PlatformGoogleAppEngine
		case "flyio":
			r.TrustedPlatform = gin.PlatformFlyIO
		default:
			r.TrustedPlatform = configuration.TrustedPlatform
		}
	}

	return r
}

func setRoutes(r *gin.Engine, app *clapp.Littleconsent) {
	consentHandler := handlers_consent.NewConsentHandler(app.Consents)
	scriptHandler := handlers_script.NewScriptHandler(app.Projects, app.Script, configuration.Script.CacheMinutes)
	adminHandler := handlers_admin.NewAdminHandler(app.Projects)

	// middleware rate limiter
	loginLimiter := clmiddleware.NewLimiter()
	consentLimiter := clmiddleware.NewConsentLimiter()

	// Logos uploadés depuis le dashboard
	r.Static("/static/", "./static")

	// Routes publiques, appelées depuis les sites des clients
	r.POST("/consents", consentLimiter, consentHandler.Submit)
	r.GET("/consents", consentHandler.GetStats)
	r.GET("/script/:projectid", scriptHandler.Serve)

	// Routes d'authentification
	r.GET("/files/captcha", adminHandler.Captcha)
	r.POST("/admin/login", loginLimiter, adminHandler.Login)
	r.POST("/admin/logout", adminHandler.Logout)

	// API du dashboard, protégée
	api := r.Group("/api")
	api.Use(handlers_admin.AuthRequired())
	{
		api.GET("/projects", adminHandler.ListProjects)
		api.POST("/projects", adminHandler.CreateProject)
		api.GET("/projects/:id", adminHandler.GetProject)
		api.PUT("/projects/:id", adminHandler.UpdateProject)
		api.DELETE("/projects/:id", adminHandler.DeleteProject)
		api.POST("/projects/:id/logo", adminHandler.UploadLogo)
	}
}

func startServer(r *gin.Engine) {
	log.Info().Msgf("Website démarré sur http://%s", configuration.Listen.Website)
	log.Info().Msgf("Script embarquable: http://%s/script/:projectid", configuration.Listen.Website)
	r.Run(configuration.Listen.Website)
}

func parseCommandLineArgs() (configFile string, shouldCreateExample bool, versionDisplay bool, err error) {
	var config = flag.String("config", "", "Fichier de configuration YAML")
	var example = flag.Bool("example", false, "Créer un fichier de configuration exemple")
	var version = flag.Bool("version", false, "version du produit")
	flag.Parse()

	if *version {
		return "", false, true, nil
	}

	if *example {
		return "", true, false, nil
	}

	if *config == "" {
		return "", false, false, fmt.Errorf("fichier de configuration requis")
	}

	return *config, false, false, nil
}

func main() {
	if BuildID == "" {
		BuildID = VERSION
	}

	initConfiguration()
	cllog.InitLogger(configuration.Logger, configuration.Production)

	app := clapp.Init(configuration, VERSION, BuildID)
	defer app.Shutdown()

	r := newServer()

	clmiddleware.InitMiddleware(r, configuration.Production)
	setRoutes(r, app)

	startServer(r)
}
