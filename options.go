package planner

import (
	"log/slog"

	"github.com/google/uuid"
)

// FileName is the name exported documents are saved under.
const FileName = "planner.pdf"

// editorConfig holds internal configuration for an Editor.
type editorConfig struct {
	logger      *slog.Logger
	newID       func() string
	thumbScale  float64
	exportScale float64
	fileName    string
}

func defaultConfig() editorConfig {
	return editorConfig{
		logger:      slog.Default(),
		newID:       func() string { return uuid.Must(uuid.NewV7()).String() },
		thumbScale:  0.15,
		exportScale: 1,
		fileName:    FileName,
	}
}

// Option configures an [Editor].
type Option func(*editorConfig)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *editorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator sets the page id generator. Defaults to UUIDv7 strings.
func WithIDGenerator(gen func() string) Option {
	return func(c *editorConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithThumbnailScale sets the thumbnail size relative to the page.
// Defaults to 0.15. Non-positive values keep the default.
func WithThumbnailScale(scale float64) Option {
	return func(c *editorConfig) {
		if scale > 0 {
			c.thumbScale = scale
		}
	}
}

// WithExportScale sets the raster resolution of exported pages in pixels
// per point. Defaults to 1. Values above 1 give sharper pages and larger
// files. Non-positive values keep the default.
func WithExportScale(scale float64) Option {
	return func(c *editorConfig) {
		if scale > 0 {
			c.exportScale = scale
		}
	}
}

// WithFileName overrides the name used by [Editor.ExportFile].
func WithFileName(name string) Option {
	return func(c *editorConfig) {
		if name != "" {
			c.fileName = name
		}
	}
}
