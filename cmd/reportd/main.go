// Command reportd serves bilingual accident-report PDF generation.
package main

import (
	"database/sql"
	"flag"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"github.com/driveeasy/reportkit/config"
	"github.com/driveeasy/reportkit/fontkit"
	"github.com/driveeasy/reportkit/render"
	"github.com/driveeasy/reportkit/server"
	"github.com/driveeasy/reportkit/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)
	if err := db.Ping(); err != nil {
		log.Fatalf("connecting to database: %v", err)
	}

	fonts := fontkit.New(fontkit.Paths{
		Latin: cfg.Fonts.Latin,
		CJK:   cfg.Fonts.CJK,
	})
	renderer := render.New(fonts, render.Options{
		UploadRoot:   cfg.UploadRoot,
		AccidentsDir: cfg.AccidentsDir,
	})
	srv := server.New(store.New(db), renderer, cfg)

	log.Infof("reportd listening on %s", cfg.ListenAddr)
	if err := srv.Router().Run(cfg.ListenAddr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
