package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/matryer/is"
)

func writeZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestWalkArchiveSkipsMacMetadata(t *testing.T) {
	is := is.New(t)
	data := writeZip(t, map[string]string{
		"route1.xml":          "<doc/>",
		"__MACOSX/route1.xml": "junk",
		".DS_Store":           "junk",
	})
	entries, err := WalkArchive(data)
	is.NoErr(err)
	is.Equal(len(entries), 1)
	is.Equal(entries[0].Name, "route1.xml")
}

func TestWalkArchiveRecursesNestedZip(t *testing.T) {
	is := is.New(t)
	inner := writeZip(t, map[string]string{"a.cif": "QD..."})
	outer := writeZip(t, map[string]string{"bundle.zip": string(inner), "top.cif": "QS..."})
	entries, err := WalkArchive(outer)
	is.NoErr(err)
	is.Equal(len(entries), 2)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	is.True(contains(names, "a.cif"))
	is.True(contains(names, "top.cif"))
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func TestContentHashStableForSameBytes(t *testing.T) {
	is := is.New(t)
	is.Equal(ContentHash([]byte("hello")), ContentHash([]byte("hello")))
	is.True(ContentHash([]byte("hello")) != ContentHash([]byte("world")))
}
