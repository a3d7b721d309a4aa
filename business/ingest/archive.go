package ingest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Entry is one parseable file recovered from an archive, possibly several
// zip levels deep.
type Entry struct {
	Name string
	Data []byte
}

// WalkArchive reads every file in a zip archive, recursing into any member
// that is itself a zip file, and skipping macOS metadata (the __MACOSX/
// directory and .DS_Store files BODS and Traveline archives commonly carry),
// per §4.6 step 2.
func WalkArchive(data []byte) ([]Entry, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	var entries []Entry
	if err := walkZipReader(r, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func walkZipReader(r *zip.Reader, entries *[]Entry) error {
	for _, f := range r.File {
		if f.FileInfo().IsDir() || isMacMetadata(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", f.Name, err)
		}
		contents, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.Name, err)
		}
		if strings.HasSuffix(strings.ToLower(f.Name), ".zip") {
			nested, err := zip.NewReader(bytes.NewReader(contents), int64(len(contents)))
			if err != nil {
				return fmt.Errorf("opening nested archive %s: %w", f.Name, err)
			}
			if err := walkZipReader(nested, entries); err != nil {
				return err
			}
			continue
		}
		*entries = append(*entries, Entry{Name: f.Name, Data: contents})
	}
	return nil
}

func isMacMetadata(name string) bool {
	return strings.HasPrefix(name, "__MACOSX/") || strings.HasSuffix(name, ".DS_Store")
}
