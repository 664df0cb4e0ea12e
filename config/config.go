// Package config loads service configuration from an optional YAML file
// with environment-variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	Database Database `yaml:"database"`

	// UploadRoot is the directory served under the /uploads URL prefix.
	// Accident photos live in AccidentsDir below it; generated documents
	// go to PDFDir below it.
	UploadRoot   string `yaml:"upload_root"`
	AccidentsDir string `yaml:"accidents_dir"`
	PDFDir       string `yaml:"pdf_dir"`

	Fonts Fonts `yaml:"fonts"`
}

type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Fonts lists candidate font files per role, highest priority first.
type Fonts struct {
	Latin []string `yaml:"latin"`
	CJK   []string `yaml:"cjk"`
}

// Load reads the YAML file at path (skipped if path is empty or the file
// does not exist), then applies defaults and environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:   ":2607",
		UploadRoot:   "./uploads",
		AccidentsDir: "accidents",
		PDFDir:       "pdfs",
		Database: Database{
			Host: "localhost",
			Port: "3306",
			User: "server",
			Name: "driveeasy",
		},
		Fonts: Fonts{
			Latin: []string{
				"/usr/share/fonts/truetype/noto/NotoSansThai-Regular.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"./assets/fonts/NotoSansThai-Regular.ttf",
			},
			CJK: []string{
				"/usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttf",
				"./assets/fonts/NotoSansCJK-Regular.otf",
			},
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg.ListenAddr, "LISTEN_ADDR")
	applyEnv(&cfg.UploadRoot, "UPLOAD_PATH")
	applyEnv(&cfg.Database.Host, "DB_HOST")
	applyEnv(&cfg.Database.Port, "DB_PORT")
	applyEnv(&cfg.Database.User, "DB_USER")
	applyEnv(&cfg.Database.Password, "DB_PASSWORD")
	applyEnv(&cfg.Database.Name, "DB_NAME")
	return cfg, nil
}

func applyEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// DSN renders the go-sql-driver connection string. parseTime is required
// so DATETIME columns scan as time.Time.
func (d Database) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		d.User, d.Password, d.Host, d.Port, d.Name)
}
