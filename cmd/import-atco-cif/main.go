// Command import-atco-cif ingests an ATCO-CIF archive (one or more fixed-
// width .cif members, optionally nested inside zips) into the timetable
// store, following app/gtfs-loader/main.go's conf.Parse + run(log) error
// shape.
package main

import (
	"bytes"
	"fmt"
	logger "log"
	"os"
	"strings"

	"github.com/ardanlabs/conf"

	"github.com/transitstream/timetables/business/ingest"
	"github.com/transitstream/timetables/business/parser/atcocif"
	"github.com/transitstream/timetables/foundation/database"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "IMPORT_ATCO_CIF : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Import an ATCO-CIF archive into the timetable store"
	if err := conf.Parse(os.Args[1:], "IMPORT_ATCO_CIF", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("IMPORT_ATCO_CIF", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("IMPORT_ATCO_CIF", &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	path := cfg.Args.Num(0)
	if path == "" {
		usage, err := conf.Usage("IMPORT_ATCO_CIF", &cfg)
		if err != nil {
			return fmt.Errorf("generating config usage: %w", err)
		}
		fmt.Println("usage: import-atco-cif <archive-path>")
		fmt.Println(usage)
		return nil
	}

	log.Printf("main: Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	db, err := database.Open(database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	entries, err := ingest.WalkArchive(data)
	if err != nil {
		// not every archive is wrapped in a zip; a bare .cif member is
		// valid input too.
		entries = []ingest.Entry{{Name: path, Data: data}}
	}

	var imports []ingest.Import
	for _, e := range entries {
		if !strings.Contains(strings.ToLower(e.Name), "cif") {
			continue
		}
		sched, warnings, err := atcocif.Parse(bytes.NewReader(e.Data), e.Name)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", e.Name, err)
		}
		for _, w := range warnings {
			log.Printf("main: warning in %s line %d: %s", e.Name, w.Line, w.Reason)
		}
		imports = append(imports, ingest.Import{
			SourceName: atcocif.SourceNameFromFilename(e.Name),
			Filename:   e.Name,
			Mtime:      info.ModTime(),
			Content:    e.Data,
			Schedule:   sched,
		})
	}
	if len(imports) == 0 {
		return fmt.Errorf("no ATCO-CIF members found in %s", path)
	}

	log.Printf("main: parsed %d ATCO-CIF member(s) from %s", len(imports), path)
	return ingest.IngestMany(log, db, imports)
}
