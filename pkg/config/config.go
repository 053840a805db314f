package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when Load is given no path and the file exists.
const DefaultPath = "comics.yaml"

type Config struct {
	Addr        string `yaml:"addr"`
	IndexPath   string `yaml:"index_path"`
	UsersPath   string `yaml:"users_path"`
	ImagesDir   string `yaml:"images_dir"`
	CacheDir    string `yaml:"cache_dir"`
	PublicDir   string `yaml:"public_dir"`
	PageWidth   int    `yaml:"page_width"`
	Prod        bool   `yaml:"prod"`
	WarmWorkers int    `yaml:"warm_workers"`
	LogFile     string `yaml:"log_file"`
	Debug       bool   `yaml:"debug"`
}

func defaultConfig() Config {
	return Config{
		Addr:        "localhost:3000",
		IndexPath:   "data/index.json",
		UsersPath:   "data/users.json",
		ImagesDir:   "data/images",
		CacheDir:    "data/cache",
		PublicDir:   "public",
		PageWidth:   900,
		Prod:        false,
		WarmWorkers: 4,
	}
}

// Load loads configuration from env and an optional YAML file.
// Precedence: env > file > defaults
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" && fileExists(DefaultPath) {
		path = DefaultPath
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"COMICS_ADDR":       &cfg.Addr,
		"COMICS_INDEX_PATH": &cfg.IndexPath,
		"COMICS_USERS_PATH": &cfg.UsersPath,
		"COMICS_IMAGES_DIR": &cfg.ImagesDir,
		"COMICS_CACHE_DIR":  &cfg.CacheDir,
		"COMICS_PUBLIC_DIR": &cfg.PublicDir,
		"COMICS_LOG_FILE":   &cfg.LogFile,
	}
	for name, dst := range strs {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"COMICS_PAGE_WIDTH":   &cfg.PageWidth,
		"COMICS_WARM_WORKERS": &cfg.WarmWorkers,
	}
	for name, dst := range ints {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, v, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"COMICS_PROD":  &cfg.Prod,
		"COMICS_DEBUG": &cfg.Debug,
	}
	for name, dst := range bools {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v == "1" || strings.ToLower(v) == "true"
		}
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.IndexPath == "" {
		errs = append(errs, errors.New("index_path is required"))
	}
	if c.ImagesDir == "" {
		errs = append(errs, errors.New("images_dir is required"))
	}
	if c.CacheDir == "" {
		errs = append(errs, errors.New("cache_dir is required"))
	}
	if c.PageWidth <= 0 || c.PageWidth > 1<<16 {
		errs = append(errs, fmt.Errorf("page_width must be between 1 and %d, got %d", 1<<16, c.PageWidth))
	}
	if c.WarmWorkers < 1 {
		errs = append(errs, fmt.Errorf("warm_workers must be at least 1, got %d", c.WarmWorkers))
	}
	return errors.Join(errs...)
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
