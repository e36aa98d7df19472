package app

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/assets"
	"github.com/Faultbox/skyscene/internal/config"
	"github.com/Faultbox/skyscene/internal/engine/texture"
	"github.com/Faultbox/skyscene/internal/importer"
	"github.com/Faultbox/skyscene/internal/logger"
	"github.com/Faultbox/skyscene/internal/sceneinfo"
)

// Sources are the decoded inputs of a run, before anything is uploaded.
type Sources struct {
	Asset *importer.Asset
	Info  *sceneinfo.Info
	// InfoPath is the resolved metadata file, empty when none was loaded.
	InfoPath string
	// Skybox faces in cube map order; all nil when no skybox is configured.
	Skybox [6]*image.RGBA
}

// HasSkybox reports whether skybox faces were loaded.
func (s *Sources) HasSkybox() bool { return s.Skybox[0] != nil }

// NewAssetManager returns a manager searching the working directory and the
// configured scene and skybox directories. Missing directories are skipped.
func NewAssetManager(cfg *config.Config) *assets.Manager {
	m := assets.NewManager()
	for _, dir := range []string{cfg.Scene.SkyboxDir, cfg.Scene.Dir} {
		if dir == "" {
			continue
		}
		if err := m.AddRoot(dir); err != nil {
			logger.Debug("asset root skipped", zap.String("dir", dir), zap.Error(err))
		}
	}
	return m
}

// LoadSources reads the scene file, its metadata and the skybox named by
// cfg. Any failure is fatal for the run.
func LoadSources(m *assets.Manager, cfg *config.Config) (*Sources, error) {
	scenePath, err := m.Resolve(cfg.Scene.File)
	if err != nil {
		return nil, fmt.Errorf("scene file: %w", err)
	}
	asset, err := importer.Load(scenePath)
	if err != nil {
		return nil, err
	}
	src := &Sources{Asset: asset, Info: sceneinfo.Empty()}

	if cfg.Scene.Info != "" {
		path, err := m.Resolve(cfg.Scene.Info)
		if err != nil {
			return nil, fmt.Errorf("scene info: %w", err)
		}
		data, err := m.Load(path)
		if err != nil {
			return nil, fmt.Errorf("scene info: %w", err)
		}
		if src.Info, err = sceneinfo.Parse(data); err != nil {
			return nil, fmt.Errorf("scene info %s: %w", path, err)
		}
		src.InfoPath = path
	}

	if cfg.Scene.Skybox != "" {
		dir := cfg.Scene.SkyboxDir
		if resolved, err := m.Resolve(dir); err == nil {
			dir = resolved
		}
		if src.Skybox, err = texture.LoadCubeFaces(dir, cfg.Scene.Skybox); err != nil {
			return nil, err
		}
	}

	logger.Info("scene loaded",
		zap.String("scene", filepath.Base(scenePath)),
		zap.Int("nodes", asset.Graph.Len()),
		zap.Int("meshes", len(asset.Graph.Meshes)),
		zap.Bool("animated", asset.Clip != nil),
		zap.Int("lights", len(src.Info.Lights)),
		zap.Bool("skybox", src.HasSkybox()),
	)
	return src, nil
}

// errNoScene is returned by New when sources carry no graph.
var errNoScene = errors.New("no scene to render")
