package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// ManifestPattern selects project manifests under the seed directory
const ManifestPattern = "**/project.{yaml,yml,toml,json}"

// Manifest describes a prebuilt project on disk. Source and Tests are
// paths relative to the manifest; Code and TestCode are inline fallbacks.
type Manifest struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Language Language `json:"language" yaml:"language" toml:"language"`
	Source   string   `json:"source" yaml:"source" toml:"source"`
	Tests    string   `json:"tests" yaml:"tests" toml:"tests"`
	Code     string   `json:"code" yaml:"code" toml:"code"`
	TestCode string   `json:"testCode" yaml:"testCode" toml:"testCode"`
}

// SeedResult counts what a seeding pass did
type SeedResult struct {
	Loaded  int `json:"loaded"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Seeder loads prebuilt projects from a directory tree
type Seeder struct {
	store  Store
	dir    string
	logger *zap.Logger
}

// NewSeeder creates a seeder for dir
func NewSeeder(store Store, dir string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, dir: dir, logger: logger}
}

// Seed creates a project for every manifest whose name is not taken yet.
// A missing directory is not an error.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	if _, err := os.Stat(s.dir); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Seed directory not found", zap.String("dir", s.dir))
		return result, nil
	}

	manifests, err := s.discover()
	if err != nil {
		return result, err
	}

	for _, path := range manifests {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		created, err := s.load(ctx, path)
		switch {
		case err != nil:
			s.logger.Warn("Failed to seed project", zap.String("manifest", path), zap.Error(err))
			result.Failed++
		case created:
			result.Loaded++
		default:
			result.Skipped++
		}
	}

	s.logger.Info("Seeding complete",
		zap.Int("loaded", result.Loaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

// discover walks the tree and returns manifest paths in lexical order
func (s *Seeder) discover() ([]string, error) {
	var (
		mu    sync.Mutex
		found []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(ManifestPattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		mu.Lock()
		found = append(found, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.dir, err)
	}

	sort.Strings(found)
	return found, nil
}

// load seeds one manifest, reporting whether a project was created
func (s *Seeder) load(ctx context.Context, path string) (bool, error) {
	m, err := ParseManifest(path)
	if err != nil {
		return false, err
	}

	in, err := m.Input(filepath.Dir(path))
	if err != nil {
		return false, err
	}
	in.Normalize()

	if _, err := s.store.GetByName(ctx, in.Name); err == nil {
		s.logger.Debug("Project already exists", zap.String("name", in.Name))
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	p, err := s.store.Create(ctx, in)
	if err != nil {
		return false, err
	}
	s.logger.Info("Seeded project", zap.String("name", p.Name), zap.String("id", p.ID))
	return true, nil
}

// ParseManifest decodes a manifest by file extension
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".json":
		err = sonic.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return &m, nil
}

// Input resolves file references against dir
func (m Manifest) Input(dir string) (Input, error) {
	in := Input{Name: m.Name, Language: m.Language, Code: m.Code, TestCode: m.TestCode}

	if m.Source != "" {
		code, err := readRelative(dir, m.Source)
		if err != nil {
			return Input{}, fmt.Errorf("reading source: %w", err)
		}
		in.Code = code
	}
	if m.Tests != "" {
		tests, err := readRelative(dir, m.Tests)
		if err != nil {
			return Input{}, fmt.Errorf("reading tests: %w", err)
		}
		in.TestCode = tests
	}
	return in, nil
}

func readRelative(dir, name string) (string, error) {
	if filepath.IsAbs(name) || !filepath.IsLocal(name) {
		return "", fmt.Errorf("path %q escapes the manifest directory", name)
	}
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
