package config

import (
	"net"
	"time"

	"github.com/jackzampolin/folio/internal/segmentation"
)

// Config holds folio configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server       ServerCfg       `mapstructure:"server" yaml:"server"`
	Books        BooksCfg        `mapstructure:"books" yaml:"books"`
	Engine       EngineCfg       `mapstructure:"engine" yaml:"engine"`
	Translation  TranslationCfg  `mapstructure:"translation" yaml:"translation"`
	Segmentation SegmentationCfg `mapstructure:"segmentation" yaml:"segmentation"`
	Store        StoreCfg        `mapstructure:"store" yaml:"store"`
	Log          LogCfg          `mapstructure:"log" yaml:"log"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// Addr returns host:port.
func (s ServerCfg) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// BooksCfg configures book discovery.
type BooksCfg struct {
	// Path is the directory holding one subdirectory or PDF per book.
	// Empty means {home}/books.
	Path string `mapstructure:"path" yaml:"path"`
	// ImageFilter lists the page image extensions to pick up.
	ImageFilter []string `mapstructure:"image_filter" yaml:"image_filter"`
	// PDFDPI is the resolution PDF pages are measured at.
	PDFDPI float64 `mapstructure:"pdf_dpi" yaml:"pdf_dpi"`
}

// EngineCfg configures the external segmentation engine.
type EngineCfg struct {
	URL            string          `mapstructure:"url" yaml:"url"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int             `mapstructure:"max_retries" yaml:"max_retries"`
	Docker         EngineDockerCfg `mapstructure:"docker" yaml:"docker"`
}

// Timeout returns the per-request engine timeout.
func (e EngineCfg) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// EngineDockerCfg holds engine container configuration.
type EngineDockerCfg struct {
	// ContainerName is the Docker container name (default: folio-engine)
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	// Image is the Docker image to run
	Image string `mapstructure:"image" yaml:"image"`
	// Port is the host port to bind (default: 8181)
	Port string `mapstructure:"port" yaml:"port"`
}

// TranslationCfg configures settings translation.
type TranslationCfg struct {
	// Strict rejects malformed position outlines instead of dropping them.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// SegmentationCfg holds the engine parameters new books start with.
type SegmentationCfg struct {
	TextDilationX  int    `mapstructure:"text_dilation_x" yaml:"text_dilation_x"`
	TextDilationY  int    `mapstructure:"text_dilation_y" yaml:"text_dilation_y"`
	ImageDilationX int    `mapstructure:"image_dilation_x" yaml:"image_dilation_x"`
	ImageDilationY int    `mapstructure:"image_dilation_y" yaml:"image_dilation_y"`
	CombineImages  bool   `mapstructure:"combine_images" yaml:"combine_images"`
	ImageSegType   string `mapstructure:"image_seg_type" yaml:"image_seg_type"`
}

// Defaults converts the section into engine parameter defaults.
func (s SegmentationCfg) Defaults() (segmentation.Defaults, error) {
	segType, err := segmentation.ParseImageSegType(s.ImageSegType)
	if err != nil {
		return segmentation.Defaults{}, err
	}
	return segmentation.Defaults{
		Knobs: segmentation.Knobs{
			TextDilationX:  s.TextDilationX,
			TextDilationY:  s.TextDilationY,
			ImageDilationX: s.ImageDilationX,
			ImageDilationY: s.ImageDilationY,
		},
		CombineImages: s.CombineImages,
		ImageSegType:  segType,
	}, nil
}

// StoreCfg configures annotation storage.
type StoreCfg struct {
	// RedisURL selects the Redis store; empty keeps annotations in memory.
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
}

// LogCfg configures the process logger.
type LogCfg struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	knobs := segmentation.DefaultKnobs()
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Books: BooksCfg{
			ImageFilter: []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".webp", ".bmp"},
			PDFDPI:      300,
		},
		Engine: EngineCfg{
			URL:            "http://localhost:8181",
			TimeoutSeconds: 120,
			MaxRetries:     3,
			Docker: EngineDockerCfg{
				ContainerName: "folio-engine",
				Image:         "ghcr.io/folio/segmentation-engine:latest",
				Port:          "8181",
			},
		},
		Segmentation: SegmentationCfg{
			TextDilationX:  knobs.TextDilationX,
			TextDilationY:  knobs.TextDilationY,
			ImageDilationX: knobs.ImageDilationX,
			ImageDilationY: knobs.ImageDilationY,
			ImageSegType:   string(segmentation.ImageSegStraightRect),
		},
		Log: LogCfg{
			Level:  "info",
			Format: "text",
		},
	}
}
