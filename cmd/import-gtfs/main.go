// Command import-gtfs ingests a GTFS static feed zip into the timetable
// store, following app/gtfs-loader/main.go's conf.Parse + run(log) error
// shape.
package main

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	logger "log"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/conf"

	"github.com/transitstream/timetables/business/ingest"
	"github.com/transitstream/timetables/business/parser/gtfs"
	"github.com/transitstream/timetables/foundation/database"
	"github.com/transitstream/timetables/foundation/httpclient"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "IMPORT_GTFS : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
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
			Name                string `conf:"default:"`
			Complete            bool   `conf:"default:true"`
			RouteIDPrefixFilter string `conf:"default:"`
			UTC                 bool   `conf:"default:false"`
			Location            string `conf:"default:UTC"`
		}
		GTFS struct {
			URL     string `conf:"default:"`
			TempDir string `conf:"default:gtfs_tmp"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Import a GTFS static feed into the timetable store"
	if err := conf.Parse(os.Args[1:], "IMPORT_GTFS", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("IMPORT_GTFS", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("IMPORT_GTFS", &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	path := cfg.Args.Num(0)
	if path == "" && cfg.GTFS.URL == "" {
		usage, err := conf.Usage("IMPORT_GTFS", &cfg)
		if err != nil {
			return fmt.Errorf("generating config usage: %w", err)
		}
		fmt.Println("usage: import-gtfs <feed-path.zip>  (or set GTFS_URL to fetch one)")
		fmt.Println(usage)
		return nil
	}

	log.Printf("main: Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	if cfg.GTFS.URL != "" {
		if err := os.MkdirAll(cfg.GTFS.TempDir, 0o755); err != nil {
			return fmt.Errorf("creating temp dir %s: %w", cfg.GTFS.TempDir, err)
		}
		dest := cfg.GTFS.TempDir + "/gtfs.zip"
		if etag, mtime, ok := readCachedFileInfo(cfg.GTFS.TempDir); ok {
			info, err := httpclient.GetRemoteFileInfo(cfg.GTFS.URL)
			if err == nil && !info.IsDifferent(etag, mtime) {
				log.Printf("main: %s unchanged since last fetch, reusing %s", cfg.GTFS.URL, dest)
				path = dest
			}
		}
		if path == "" {
			log.Printf("main: downloading %s to %s", cfg.GTFS.URL, dest)
			downloaded, err := httpclient.DownloadRemoteFile(dest, cfg.GTFS.URL)
			if err != nil {
				return fmt.Errorf("downloading %s: %w", cfg.GTFS.URL, err)
			}
			path = downloaded.LocalFilePath
			writeCachedFileInfo(cfg.GTFS.TempDir, downloaded.RemoteFileInfo)
		}
	}

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

	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening %s as zip: %w", path, err)
	}
	defer zr.Close()

	opts := gtfs.Options{RouteIDPrefixFilter: cfg.Source.RouteIDPrefixFilter}
	if cfg.Source.UTC {
		loc, err := time.LoadLocation(cfg.Source.Location)
		if err != nil {
			return fmt.Errorf("loading location %q: %w", cfg.Source.Location, err)
		}
		opts.UTC = true
		opts.Location = loc
	}

	sched, warnings, err := gtfs.Parse(&zr.Reader, path, opts)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, w := range warnings {
		log.Printf("main: warning in %s: %s", w.File, w.Reason)
	}

	stops, err := gtfs.StopRows(&zr.Reader)
	if err != nil {
		return fmt.Errorf("reading stops.txt from %s: %w", path, err)
	}

	sourceName := cfg.Source.Name
	if sourceName == "" {
		sourceName = path
	}

	log.Printf("main: parsed %d route(s) and %d stop(s) from %s", len(sched.Routes), len(stops), path)
	return ingest.IngestArchive(log, db, ingest.Import{
		SourceName: sourceName,
		Filename:   path,
		Mtime:      info.ModTime(),
		Content:    data,
		Schedule:   sched,
		Complete:   cfg.Source.Complete,
		Stops:      stops,
	})
}

// cachedFileInfoPath holds the ETag/Last-Modified of the last successful
// download, so a re-run against an unchanged GTFS_URL can skip re-fetching.
func cachedFileInfoPath(tempDir string) string {
	return filepath.Join(tempDir, "gtfs.etag.json")
}

func readCachedFileInfo(tempDir string) (etag string, mtime int64, ok bool) {
	data, err := os.ReadFile(cachedFileInfoPath(tempDir))
	if err != nil {
		return "", 0, false
	}
	var info httpclient.RemoteFileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return "", 0, false
	}
	return info.ETag, info.LastModifiedTimestamp, true
}

func writeCachedFileInfo(tempDir string, info httpclient.RemoteFileInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	_ = os.WriteFile(cachedFileInfoPath(tempDir), data, 0o644)
}
