package http

import (
	"context"
	_ "embed"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

var loadSpec = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
})

// Spec returns the parsed and validated API description served at /openapi.yaml.
func Spec() (*openapi3.T, error) {
	return loadSpec()
}

// APIVersion returns info.version of the API description, or "unknown".
func APIVersion() string {
	doc, err := Spec()
	if err != nil || doc.Info == nil {
		return "unknown"
	}
	return doc.Info.Version
}
