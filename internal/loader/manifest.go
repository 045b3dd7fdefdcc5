package loader

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/jyutdb/internal/model"
)

// Discover returns every *.json file under dir, recursively, sorted by path.
// Files listed in exclude (compared as absolute paths) are skipped.
func Discover(dir string, exclude ...string) ([]string, error) {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		if abs, err := filepath.Abs(e); err == nil {
			skip[abs] = true
		}
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover partitions in %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ReadManifest reads partition paths from a file, one per line, in merge order.
// Blank lines and # comments are skipped, duplicates keep their first position,
// and relative paths are taken relative to the manifest's directory.
func ReadManifest(manifestPath string) ([]string, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(manifestPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	return paths, nil
}

// Paths decides which partitions a run merges: explicit args win, then the
// configured manifest, then discovery under the data directory.
func Paths(cfg model.DataConfig, args []string, exclude ...string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if cfg.Manifest != "" {
		return ReadManifest(cfg.Manifest)
	}
	if cfg.Dir == "" {
		return nil, ErrNoPartitions
	}
	return Discover(cfg.Dir, exclude...)
}
