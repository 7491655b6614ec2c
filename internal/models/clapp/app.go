package clapp

import (
	"fmt"
	"log"

	"littleconsent/internal/clconfig"
	"littleconsent/internal/clredis"
	"littleconsent/internal/gormzerologger"
	"littleconsent/internal/models/clcaptchas"
	"littleconsent/internal/models/clconsents"
	"littleconsent/internal/models/clgeo"
	"littleconsent/internal/models/clprojects"
	"littleconsent/internal/models/clscript"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	instance *Littleconsent
)

// Littleconsent regroupe les services partagés par tous les handlers.
// La connexion base est unique et ouverte une seule fois au démarrage,
// jamais par requête.
type Littleconsent struct {
	Db            *gorm.DB
	Configuration *clconfig.Config
	Captcha       *clcaptchas.Captchas
	Redis         *clredis.RedisStore
	Geo           *clgeo.Resolver
	Consents      *clconsents.ConsentService
	Projects      *clprojects.ProjectService
	Script        *clscript.Generator
	RetentionCron *cron.Cron
	Version       string
	BuildID       string
}

func GetInstance() *Littleconsent {
	if instance == nil {
		instance = &Littleconsent{}
	}
	return instance
}

func Init(config *clconfig.Config, version string, buildid string) *Littleconsent {
	instance = &Littleconsent{
		Configuration: config,
		Version:       version,
		BuildID:       buildid,
	}
	instance.initDatabase()
	instance.initRedis()
	instance.initCaptcha()
	instance.initGeo()
	instance.initServices()
	return instance
}

func (lc *Littleconsent) initCaptcha() {
	lc.Captcha = clcaptchas.New(lc.Configuration.Database.Redis.Addr, lc.Configuration.Database.Redis.Db)
}

func (lc *Littleconsent) initRedis() {
	if lc.Configuration.Database.Redis.Addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{
		Addr: lc.Configuration.Database.Redis.Addr,
		DB:   lc.Configuration.Database.Redis.Db,
	})
	lc.Redis = clredis.New(client)
}

func (lc *Littleconsent) initGeo() {
	lc.Geo = clgeo.New(lc.Configuration.GeoIP.Path)
}

func (lc *Littleconsent) initDatabase() {
	var err error

	// Créer le logger GORM avec Zerolog
	level := "warn"
	if lc.Configuration.Logger.Level == "debug" || !lc.Configuration.Production {
		level = "trace"
	}
	gormLogger := gormzerologger.New(level)

	var db *gorm.DB
	switch lc.Configuration.Database.Db {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(lc.Configuration.Database.Path), &gorm.Config{
			Logger: gormLogger,
		})
	case "mysql":
		db, err = gorm.Open(mysql.Open(lc.Configuration.Database.Dsn), &gorm.Config{
			Logger: gormLogger,
		})
	default:
		err = fmt.Errorf("le type de database doit etre sqlite ou mysql")
	}

	if err != nil {
		log.Fatal(err, "Erreur connexion base de données:")
	}

	err = db.AutoMigrate(&clprojects.Project{}, &clconsents.ConsentRecord{})
	if err != nil {
		log.Fatal(err, "Erreur migration:")
	}

	lc.Db = db
}

func (lc *Littleconsent) initServices() {
	lc.Projects = clprojects.NewProjectService(lc.Db)
	lc.Consents = clconsents.NewConsentService(lc.Db, lc.Configuration.Consent.WindowHours, lc.Redis)
	lc.Script = clscript.NewGenerator(lc.Configuration.Script.APIBase, lc.Configuration.Production)
	lc.RetentionCron = clconsents.SetupRetentionCron(lc.Db, lc.Configuration.Consent.RetentionDays)
}

// Shutdown libère les ressources à l'arrêt du serveur
func (lc *Littleconsent) Shutdown() {
	if lc.RetentionCron != nil {
		lc.RetentionCron.Stop()
	}
	if lc.Geo != nil {
		lc.Geo.Close()
	}
}
