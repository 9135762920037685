// Package migrations embeds SQL migration files.
package migrations

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql
var PostgresFS embed.FS

//go:embed sqlite/*.sql
var SQLiteFS embed.FS

const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)

// File is one migration script.
type File struct {
	// Version is the file name without the _up.sql/_down.sql suffix.
	Version string
	SQL     string
}

// Up lists the *_up.sql files of dir in ascending order.
func Up(fsys fs.FS, dir string) ([]File, error) { return list(fsys, dir, "_up.sql", false) }

// Down lists the *_down.sql files of dir, most recent first.
func Down(fsys fs.FS, dir string) ([]File, error) { return list(fsys, dir, "_down.sql", true) }

func list(fsys fs.FS, dir, suffix string, reverse bool) ([]File, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var out []File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}
		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, File{Version: strings.TrimSuffix(name, suffix), SQL: string(b)})
	}
	sort.Slice(out, func(i, j int) bool {
		if reverse {
			return out[i].Version > out[j].Version
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}
