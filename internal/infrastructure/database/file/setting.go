// Package file stores settings in a small key/value text document, JSON by
// default or YAML when the file name ends in .yaml or .yml.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"breakreminder/internal/domain/repository"
	"breakreminder/internal/pkg/logger"
)

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatFor(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

type settingRepository struct {
	fs     afero.Fs
	path   string
	format format
	log    logger.Logger
	mu     sync.Mutex
}

// NewSettingRepository creates a SettingRepository backed by the document at
// path on fsys. A missing document reads as empty.
func NewSettingRepository(fsys afero.Fs, path string, log logger.Logger) repository.SettingRepository {
	return &settingRepository{
		fs:     fsys,
		path:   path,
		format: formatFor(path),
		log:    log,
	}
}

// Get returns the value stored under key.
func (r *settingRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

// Set stores value under key and rewrites the document atomically.
func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		// An unreadable document is replaced rather than blocking every write.
		r.log.Warn(fmt.Sprintf("Replacing unreadable settings document %s, other keys are lost: %v", r.path, err))
		doc = map[string]string{}
	}
	doc[key] = value

	data, err := r.encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode settings document %s: %w", r.path, err)
	}
	return r.writeAtomic(data)
}

func (r *settingRepository) load() (map[string]string, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings document %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}

	raw := map[string]interface{}{}
	switch r.format {
	case formatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings document %s: %w", r.path, err)
	}

	doc := make(map[string]string, len(raw))
	for k, v := range raw {
		doc[k] = stringify(v)
	}
	return doc, nil
}

// stringify accepts scalar values written by hand, e.g. `Frequency: 2` in YAML.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}

func (r *settingRepository) encode(doc map[string]string) ([]byte, error) {
	if r.format == formatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (r *settingRepository) writeAtomic(data []byte) error {
	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}
	tmp, err := afero.TempFile(r.fs, dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to write temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}
	if err := r.fs.Rename(tmpName, r.path); err != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace settings document %s: %w", r.path, err)
	}
	return nil
}
