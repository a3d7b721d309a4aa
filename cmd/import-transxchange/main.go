// Command import-transxchange ingests a TransXChange archive (one or more
// XML documents, typically bundled in a zip the way BODS publishes them)
// into the timetable store, following app/gtfs-loader/main.go's conf.Parse
// + run(log) error shape.
package main

import (
	"bytes"
	"fmt"
	logger "log"
	"os"
	"strings"

	"github.com/ardanlabs/conf"

	"github.com/transitstream/timetables/business/ingest"
	"github.com/transitstream/timetables/business/parser/transxchange"
	"github.com/transitstream/timetables/foundation/database"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "IMPORT_TRANSXCHANGE : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
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
		Source struct {
			Name     string `conf:"default:"`
			Complete bool   `conf:"default:false"`
			Ticketer bool   `conf:"default:false"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Import a TransXChange archive into the timetable store"
	if err := conf.Parse(os.Args[1:], "IMPORT_TRANSXCHANGE", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("IMPORT_TRANSXCHANGE", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("IMPORT_TRANSXCHANGE", &cfg)
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
		usage, err := conf.Usage("IMPORT_TRANSXCHANGE", &cfg)
		if err != nil {
			return fmt.Errorf("generating config usage: %w", err)
		}
		fmt.Println("usage: import-transxchange <archive-path>")
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
		entries = []ingest.Entry{{Name: path, Data: data}}
	}

	sourceName := cfg.Source.Name
	if sourceName == "" {
		sourceName = baseName(path)
	}

	var imports []ingest.Import
	for _, e := range entries {
		if !strings.HasSuffix(strings.ToLower(e.Name), ".xml") {
			continue
		}
		sched, warnings, err := transxchange.Parse(bytes.NewReader(e.Data), e.Name, transxchange.Options{})
		if err != nil {
			return fmt.Errorf("parsing %s: %w", e.Name, err)
		}
		for _, w := range warnings {
			log.Printf("main: warning in %s: %s", e.Name, w)
		}
		imports = append(imports, ingest.Import{
			SourceName: sourceName,
			Filename:   e.Name,
			Mtime:      info.ModTime(),
			Content:    e.Data,
			Schedule:   sched,
			Complete:   cfg.Source.Complete,
			Ticketer:   cfg.Source.Ticketer,
		})
	}
	if len(imports) == 0 {
		return fmt.Errorf("no TransXChange documents found in %s", path)
	}

	log.Printf("main: parsed %d TransXChange document(s) from %s", len(imports), path)
	return ingest.IngestMany(log, db, imports)
}

func baseName(path string) string {
	name := path
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".zip")
}
