package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"resource-dispatcher/internal/api"
	"resource-dispatcher/internal/config"
)

// layout describes how manifest files are arranged in the folder: files with
// one of the extensions at the root or in a subdirectory one level down.
type layout struct {
	folder     string
	extensions []string
	kinds      []config.KindMapping
}

// files lists manifest files in lexical order.
func (l layout) files() ([]string, error) {
	var patterns []string
	for _, ext := range l.extensions {
		patterns = append(patterns,
			filepath.Join(l.folder, "*"+ext),
			filepath.Join(l.folder, "*", "*"+ext),
		)
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest pattern %s: %w", pattern, err)
		}
		for _, match := range matches {
			if isRegularFile(match) {
				files = append(files, match)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// desiredCounts counts the manifest files in each tracked kind's subdirectory.
func (l layout) desiredCounts() (map[api.KindID]int, error) {
	counts := make(map[api.KindID]int)
	for _, mapping := range l.kinds {
		dir := filepath.Join(l.folder, mapping.Directory)
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to inspect %s: %w", dir, err)
		}
		if !info.IsDir() {
			continue
		}

		count := 0
		for _, ext := range l.extensions {
			matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
			if err != nil {
				return nil, fmt.Errorf("invalid manifest pattern in %s: %w", dir, err)
			}
			for _, match := range matches {
				if isRegularFile(match) {
					count++
				}
			}
		}
		counts[mapping.Kind] = count
	}
	return counts, nil
}

// checkFolder reports a missing or unreadable manifest folder.
func (l layout) checkFolder() error {
	info, err := os.Stat(l.folder)
	if err != nil {
		return fmt.Errorf("manifest folder %s: %w", l.folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("manifest folder %s is not a directory", l.folder)
	}
	return nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
