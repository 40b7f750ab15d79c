package v1alpha1

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openapiDocument []byte

// GetSwagger loads the embedded OpenAPI document of the review API.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	swagger, err := loader.LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("error loading openapi document: %w", err)
	}
	if err := swagger.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return swagger, nil
}
