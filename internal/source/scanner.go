package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir lists the scenario files directly inside dir, sorted by name.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []DiscoveredFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		format, err := FormatFor(path)
		if err != nil {
			continue
		}
		files = append(files, DiscoveredFile{
			Path:   path,
			Name:   baseName(path),
			Format: format,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Resolve turns a --scenario value into a file path. A bare name such as
// "retirement" is looked up in dir; anything with an extension or a path
// separator is returned unchanged.
func Resolve(ref, dir string) string {
	if ref == "" || filepath.Ext(ref) != "" || strings.ContainsAny(ref, `/\`) {
		return ref
	}

	files, err := ScanDir(dir)
	if err == nil {
		for _, f := range files {
			if f.Name == ref {
				return f.Path
			}
		}
	}
	return filepath.Join(dir, ref+".toml")
}
