package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"respondapi/internal/apitemplate"
	"respondapi/internal/config"
	"respondapi/internal/model"
	"respondapi/internal/storage"
)

// ErrNoObjectStorage is returned when templates are expected in a bucket but
// no object storage is configured.
var ErrNoObjectStorage = errors.New("api templates object key set without object storage")

const templatesContentType = "application/yaml"

// TemplateLoader builds the API template registry at startup.
//
// Sources, first match wins: an object in storage (cfg.ObjectKey), a local
// file (cfg.Path), the embedded defaults.
type TemplateLoader struct {
	store    storage.Storage
	cfg      config.TemplatesConfig
	defaults fs.FS
	log      *slog.Logger
}

// NewTemplateLoader wires the loader. store may be nil when object storage is
// not configured.
func NewTemplateLoader(store storage.Storage, cfg config.TemplatesConfig, defaults fs.FS, log *slog.Logger) *TemplateLoader {
	if log == nil {
		log = slog.Default()
	}
	return &TemplateLoader{store: store, cfg: cfg, defaults: defaults, log: log}
}

// Load returns the registry and a short description of where it came from.
func (l *TemplateLoader) Load(ctx context.Context) (*apitemplate.Registry, string, error) {
	reg, source, err := l.load(ctx)
	if err != nil {
		return nil, source, err
	}

	if name := l.cfg.DefaultTemplate; name != "" {
		if _, err := reg.Template(model.UserAPIName, name); err != nil {
			return nil, source, fmt.Errorf("default api template: %w", err)
		}
	}

	l.log.Info("api_templates_loaded",
		"component", "apitemplate",
		"source", source,
		"models", reg.Models(),
	)
	return reg, source, nil
}

func (l *TemplateLoader) load(ctx context.Context) (*apitemplate.Registry, string, error) {
	switch {
	case l.cfg.ObjectKey != "":
		source := "object:" + l.cfg.ObjectKey
		if l.store == nil {
			return nil, source, ErrNoObjectStorage
		}
		rc, _, err := l.store.Get(ctx, l.cfg.ObjectKey)
		if err != nil {
			return nil, source, fmt.Errorf("fetch api templates: %w", err)
		}
		defer rc.Close()
		reg, err := apitemplate.Load(rc)
		return reg, source, err
	case l.cfg.Path != "":
		reg, err := apitemplate.LoadFile(l.cfg.Path)
		return reg, "file:" + l.cfg.Path, err
	default:
		reg, err := apitemplate.LoadFS(l.defaults)
		return reg, "embedded", err
	}
}

// PublishTemplates validates a definition document and uploads it under key.
// Invalid documents are never uploaded.
func PublishTemplates(ctx context.Context, store storage.Storage, key string, data []byte) (storage.ObjectInfo, error) {
	if key == "" {
		return storage.ObjectInfo{}, errors.New("object key is required")
	}
	if _, err := apitemplate.Load(bytes.NewReader(data)); err != nil {
		return storage.ObjectInfo{}, err
	}
	info, err := store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: templatesContentType,
	})
	if err != nil {
		return storage.ObjectInfo{}, fmt.Errorf("upload api templates: %w", err)
	}
	return info, nil
}
