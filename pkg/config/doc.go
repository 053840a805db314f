// Package config provides configuration loading and validation for the
// comics server and CLI.
//
// Configuration is loaded with the following precedence (highest to lowest):
//  1. Environment variables (COMICS_ADDR, COMICS_IMAGES_DIR, etc.)
//  2. YAML config file (the --config flag, or comics.yaml if present)
//  3. Built-in defaults
//
// Key configuration fields:
//   - Addr       - Listen address of the web server
//   - IndexPath  - JSON list of comics, in reading order
//   - ImagesDir  - Root of the source images referenced by the index
//   - CacheDir   - Where resized images and size sidecars are written
//   - PageWidth  - Width comic images are fitted to
//   - Prod       - Production mode: cache headers, compiled assets
//
// Example usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
