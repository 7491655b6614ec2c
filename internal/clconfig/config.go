package clconfig

import (
	"fmt"
	"log/syslog"
	"os"
	"strings"

	"github.com/andskur/argon2-hashing"
	"gopkg.in/yaml.v3"
)

type Config struct {
	TrustedProxies  []string       `yaml:"trustedproxies"`
	TrustedPlatform string         `yaml:"trustedplatform"`
	Database        DatabaseConfig `yaml:"database"`
	User            UserConfig     `yaml:"user"`
	Production      bool           `yaml:"production"`
	Listen          ListenConfig   `yaml:"listen"`
	Logger          LoggerConfig   `yaml:"logger"`
	Consent         ConsentConfig  `yaml:"consent"`
	Script          ScriptConfig   `yaml:"script"`
	GeoIP           GeoIPConfig    `yaml:"geoip"`
}

type ConsentConfig struct {
	// Fenêtre glissante pendant laquelle une re-soumission met à jour
	// l'enregistrement existant au lieu d'en créer un nouveau
	WindowHours int `yaml:"windowhours"`
	// 0 = conservation illimitée
	RetentionDays int `yaml:"retentiondays"`
}

type ScriptConfig struct {
	// URL publique de l'API, injectée dans le script généré
	APIBase string `yaml:"apibase"`
	// Durée du Cache-Control sur /script/:projectid
	CacheMinutes int `yaml:"cacheminutes"`
}

type GeoIPConfig struct {
	// Chemin vers la base MaxMind (GeoLite2-Country.mmdb), vide = désactivé
	Path string `yaml:"path"`
}

type LoggerConfig struct {
	Level  string             `yaml:"level"`
	File   LoggerFileConfig   `yaml:"file"`
	Syslog LoggerSyslogConfig `yaml:"syslog"`
}

type LoggerFileConfig struct {
	Enable     bool   `yaml:"enable"`
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxsize"`
	MaxBackups int    `yaml:"maxbackups"`
	MaxAge     int    `yaml:"maxage"`
	Compress   bool   `yaml:"compress"`
}

type LoggerSyslogConfig struct {
	Enable   bool            `yaml:"enable"`
	Protocol string          `yaml:"protocol"`
	Address  string          `yaml:"address"`
	Tag      string          `yaml:"tag"`
	Priority syslog.Priority `yaml:"priority"`
}

type ListenConfig struct {
	Website string `yaml:"website"`
}

type UserConfig struct {
	Login string `yaml:"login"`
	Pass  string `yaml:"pass"`
	Hash  string `yaml:"hash"`
}

type DatabaseConfig struct {
	Redis RedisConfig `yaml:"redis"`
	Db    string      `yaml:"db"`
	Path  string      `yaml:"path"`
	Dsn   string      `yaml:"dsn"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
	Db   int    `yaml:"db"`
}

func CreateExampleConfig(filename string) (string, error) {
	example := &Config{
		Database: DatabaseConfig{
			Db:   "sqlite",
			Path: "./littleconsent.db",
		},
		User: UserConfig{
			Login: "admin",
			Pass:  "admin1234",
		},
		Production: false,
		Logger: LoggerConfig{
			Level: "info",
			File: LoggerFileConfig{
				Enable: false,
			},
			Syslog: LoggerSyslogConfig{
				Enable: false,
			},
		},
		Listen: ListenConfig{
			Website: "0.0.0.0:8080",
		},
		Consent: ConsentConfig{
			WindowHours:   24,
			RetentionDays: 0,
		},
		Script: ScriptConfig{
			APIBase:      "http://localhost:8080",
			CacheMinutes: 5,
		},
	}

	if filename == "/etc/" {
		example.Listen.Website = "127.0.0.1:8000"
		example.Production = true
		example.Database.Path = "/var/lib/littleconsent/sqlite.db"
		example.Logger.File = LoggerFileConfig{
			Enable:     true,
			Path:       "/var/log/littleconsent/littleconsent.log",
			MaxSize:    100,
			MaxBackups: 30,
			MaxAge:     7,
			Compress:   true,
		}
		filename = "/etc/littleconsent/config.yaml"
	}

	return filename, WriteConfigYaml(filename, example)
}

func WriteConfigYaml(filename string, conf *Config) error {
	data, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}

	return os.WriteFile(filename, data, 0644)
}

// Charger la configuration YAML
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("impossible de lire le fichier %s: %v", filename, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("erreur de parsing YAML: %v", err)
	}

	return &config, nil
}

// Valider la configuration et appliquer les valeurs par défaut.
// Si user.pass est renseigné, il est hashé en argon2 dans user.hash
// et le fichier est réécrit sans le mot de passe en clair.
func ValidateConfig(conf *Config, configFile string) error {
	if conf.Database.Db == "sqlite" && conf.Database.Path == "" {
		return fmt.Errorf("database.path ne peut pas être vide")
	}
	if conf.Database.Db == "mysql" && conf.Database.Dsn == "" {
		return fmt.Errorf("database.dsn ne peut pas être vide")
	}
	if conf.Database.Db == "" {
		return fmt.Errorf("database.db ne peut pas être vide")
	}

	if conf.Listen.Website == "" {
		conf.Listen.Website = "localhost:8080"
	}
	if strings.HasPrefix(conf.Listen.Website, ":") {
		conf.Listen.Website = "localhost" + conf.Listen.Website
	}

	if conf.Consent.WindowHours <= 0 {
		conf.Consent.WindowHours = 24
	}
	if conf.Script.CacheMinutes <= 0 {
		conf.Script.CacheMinutes = 5
	}
	if conf.Script.APIBase == "" {
		conf.Script.APIBase = "http://" + conf.Listen.Website
	}
	conf.Script.APIBase = strings.TrimSuffix(conf.Script.APIBase, "/")

	if conf.User.Pass != "" {
		if len(conf.User.Pass) < 8 {
			return fmt.Errorf("le mot de passe doit contenir au moins 8 caractères")
		}

		hash, err := argon2.GenerateFromPassword([]byte(conf.User.Pass), argon2.DefaultParams)
		if err != nil {
			return err
		}
		conf.User.Hash = string(hash)
		conf.User.Pass = ""
		if err := WriteConfigYaml(configFile, conf); err != nil {
			return err
		}
	}

	return nil
}

func CreateExample(shouldCreateExample bool, configFile string) {
	// Handle example creation
	if shouldCreateExample {
		if err := handleExampleCreation(configFile); err != nil {
			fmt.Printf("❌ %v\n", err)
		}
		os.Exit(1)
	}

	_, err := os.Stat(configFile)
	if err != nil && os.IsNotExist(err) {
		if err := handleExampleCreation(configFile); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}

	}
}

func handleExampleCreation(filename string) error {
	if filename == "" {
		filename = "littleconsent.yaml"
	}
	filename, err := CreateExampleConfig(filename)
	if err != nil {
		return fmt.Errorf("erreur création exemple: %v", err)
	}

	fmt.Printf("✅ Fichier exemple créé: %s\n", filename)
	fmt.Println("⚠️  user.pass sera automatiquement hashé en argon2 dans user.hash au premier lancement")
	return nil
}
