// Package ingest turns command-line paths into the list of purchase-order
// files to process.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/po-tracker/constants"
)

// File is one discovered input file.
type File struct {
	Path         string
	HashHex      string
	Deduplicated bool // same content as an earlier file
}

type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Deduplicated uint32
	Failed       uint32
}

// Scanner discovers input files.
type Scanner struct {
	SkipHidden bool
	logger     *slog.Logger
}

func NewScanner(skipHidden bool, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{SkipHidden: skipHidden, logger: logger}
}

// Collect expands directories into the supported files they contain, in
// lexical order, and keeps explicit file arguments as given. Files whose
// content was already seen are returned with Deduplicated set.
func (s *Scanner) Collect(paths []string) ([]File, DirStats, error) {
	var (
		out   []File
		stats DirStats
	)
	seenPath := map[string]struct{}{}
	seenHash := map[string]string{}

	add := func(path string) {
		if _, ok := seenPath[path]; ok {
			return
		}
		seenPath[path] = struct{}{}
		stats.Matched++

		f := File{Path: path}
		sum, err := HashFile(path)
		if err != nil {
			s.logger.Warn("hash failed", "path", path, "error", err)
			stats.Failed++
		} else {
			f.HashHex = sum
			if first, ok := seenHash[sum]; ok {
				f.Deduplicated = true
				stats.Deduplicated++
				s.logger.Info("duplicate file content", "path", path, "same_as", first)
			} else {
				seenHash[sum] = path
			}
		}
		out = append(out, f)
	}

	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return nil, stats, errors.New("empty path")
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, stats, err
		}
		if !info.IsDir() {
			stats.Scanned++
			add(p)
			continue
		}
		found, err := s.walk(p, &stats)
		if err != nil {
			return nil, stats, fmt.Errorf("walk: %w", err)
		}
		for _, f := range found {
			add(f)
		}
	}

	s.logger.Debug("ingest collected files",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return out, stats, nil
}

func (s *Scanner) walk(root string, stats *DirStats) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && s.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if constants.IsAllowedExt(filepath.Ext(path)) {
			found = append(found, path)
		}
		return nil
	})
	sort.Strings(found)
	return found, err
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
