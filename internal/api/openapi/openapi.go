// Package openapi embeds the HTTP API contract.
//
// Import Path: vme-analyzer.io/analyzer/internal/api/openapi
package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// BasePath is the prefix all contract paths are served under.
const BasePath = "/api/v1"

//go:embed openapi.yaml
var spec []byte

var (
	loadOnce sync.Once
	loaded   *openapi3.T
	loadErr  error
)

// Spec returns the raw YAML document.
func Spec() []byte { return spec }

// Load parses and validates the embedded document. The result is cached and
// must not be modified.
func Load() (*openapi3.T, error) {
	loadOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(spec)
		if err != nil {
			loadErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			loadErr = fmt.Errorf("validate openapi document: %w", err)
			return
		}
		loaded = doc
	})
	return loaded, loadErr
}
