// Package file implements ports.ConfigRepository as a TOML document on disk,
// for users who keep their visualizer settings next to their dotfiles.
package file

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/tejashwikalptaru/vizwave/internal/domain"
	"github.com/tejashwikalptaru/vizwave/internal/ports"
)

// DefaultFileName is the file name used when only a directory is known.
const DefaultFileName = "vizwave.toml"

// document is the on-disk layout.
type document struct {
	Source     sourceSection `toml:"source"`
	Visualizer domain.Config `toml:"visualizer"`
}

type sourceSection struct {
	LastPath string `toml:"last_path"`
}

// TOMLRepository stores the configuration in a TOML file. Keys missing from
// the file keep their defaults, so a hand-written file only needs the
// settings it changes.
//
// Thread-safe: All operations protected by sync.Mutex.
type TOMLRepository struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewTOMLRepository creates a repository backed by the file at path. The
// file and its directory are created on first save.
func NewTOMLRepository(path string, logger *slog.Logger) *TOMLRepository {
	return &TOMLRepository{path: path, logger: logger}
}

// Path returns the backing file.
func (r *TOMLRepository) Path() string {
	return r.path
}

// SaveConfig writes cfg, keeping the stored source path.
func (r *TOMLRepository) SaveConfig(cfg domain.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		r.logger.Warn("replacing unreadable config file", slog.String("path", r.path), slog.Any("error", err))
		doc = defaultDocument()
	}
	doc.Visualizer = cfg.Clone()
	return r.write(doc)
}

// LoadConfig reads the configuration. A missing file yields the defaults.
// Sub-configs that fail validation are reset to their defaults on their own.
func (r *TOMLRepository) LoadConfig() (domain.Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return domain.DefaultConfig(), err
	}

	cfg := doc.Visualizer.WithDefaults()
	if err := cfg.Circular.Validate(); err != nil {
		r.resetting(err)
		def := domain.DefaultCircularConfig()
		cfg.Circular = &def
	}
	if err := cfg.Bars.Validate(); err != nil {
		r.resetting(err)
		def := domain.DefaultBarsConfig()
		cfg.Bars = &def
	}
	if err := cfg.Waveform.Validate(); err != nil {
		r.resetting(err)
		def := domain.DefaultWaveformConfig()
		cfg.Waveform = &def
	}
	return cfg, nil
}

func (r *TOMLRepository) resetting(err error) {
	r.logger.Warn("config section out of range, using defaults", slog.String("path", r.path), slog.Any("error", err))
}

// SaveSourcePath remembers the last opened file.
func (r *TOMLRepository) SaveSourcePath(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		doc = defaultDocument()
	}
	doc.Source.LastPath = path
	return r.write(doc)
}

// LoadSourcePath returns the last opened file, or "".
func (r *TOMLRepository) LoadSourcePath() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return "", err
	}
	return doc.Source.LastPath, nil
}

// Clear deletes the file.
func (r *TOMLRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return domain.NewRepositoryError("clear", "toml", "failed to remove config file",
			errors.Wrapf(err, "remove %s", r.path))
	}
	return nil
}

func defaultDocument() document {
	return document{Visualizer: domain.DefaultConfig()}
}

// read loads the file and overlays it on the default document. Must be
// called with r.mu held.
func (r *TOMLRepository) read() (document, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return defaultDocument(), nil
	}
	if err != nil {
		return document{}, domain.NewRepositoryError("load", "toml", "failed to read config file",
			errors.Wrapf(err, "read %s", r.path))
	}

	user, err := toml.LoadBytes(data)
	if err != nil {
		return document{}, domain.NewRepositoryError("load", "toml", "failed to parse config file",
			errors.Wrapf(err, "parse %s", r.path))
	}

	base, err := defaultTree()
	if err != nil {
		return document{}, domain.NewRepositoryError("load", "toml", "failed to build defaults", err)
	}
	overlay(base, user)

	var doc document
	if err := base.Unmarshal(&doc); err != nil {
		return document{}, domain.NewRepositoryError("load", "toml", "failed to decode config file",
			errors.Wrapf(err, "decode %s", r.path))
	}
	return doc, nil
}

// write replaces the file atomically. Must be called with r.mu held.
func (r *TOMLRepository) write(doc document) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return domain.NewRepositoryError("save", "toml", "failed to encode config", errors.Wrap(err, "encode"))
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewRepositoryError("save", "toml", "failed to create config directory",
			errors.Wrapf(err, "mkdir %s", dir))
	}

	tmp, err := os.CreateTemp(dir, ".vizwave-*.toml")
	if err != nil {
		return domain.NewRepositoryError("save", "toml", "failed to create temp file", errors.Wrap(err, "create temp"))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return domain.NewRepositoryError("save", "toml", "failed to write config", errors.Wrap(err, "write"))
	}
	if err := tmp.Close(); err != nil {
		return domain.NewRepositoryError("save", "toml", "failed to write config", errors.Wrap(err, "close"))
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return domain.NewRepositoryError("save", "toml", "failed to replace config file",
			errors.Wrapf(err, "rename to %s", r.path))
	}
	return nil
}

func defaultTree() (*toml.Tree, error) {
	data, err := toml.Marshal(defaultDocument())
	if err != nil {
		return nil, errors.Wrap(err, "marshal defaults")
	}
	return toml.LoadBytes(data)
}

// overlay copies every key of top into base, descending into tables both
// sides have.
func overlay(base, top *toml.Tree) {
	for _, key := range top.Keys() {
		v := top.GetPath([]string{key})
		if sub, ok := v.(*toml.Tree); ok {
			if b, ok := base.GetPath([]string{key}).(*toml.Tree); ok {
				overlay(b, sub)
				continue
			}
		}
		base.SetPath([]string{key}, v)
	}
}

var _ ports.ConfigRepository = (*TOMLRepository)(nil)
