package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// ContractValidator checks HTTP requests and responses against the OpenAPI
// document the API publishes, so the implementation and its contract cannot
// drift apart silently.
type ContractValidator struct {
	loader *openapi3.Loader
	doc    *openapi3.T
	router routers.Router
}

// NewContractValidator creates a validator from an OpenAPI spec file.
func NewContractValidator(specPath string) (*ContractValidator, error) {
	loader := &openapi3.Loader{Context: context.Background(), IsExternalRefsAllowed: true}

	doc, err := loader.LoadFromFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	return &ContractValidator{
		loader: loader,
		doc:    doc,
		router: router,
	}, nil
}

// ValidateRequest validates an HTTP request against the OpenAPI spec.
func (cv *ContractValidator) ValidateRequest(req *http.Request) error {
	route, pathParams, err := cv.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("no matching route found: %w", err)
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      route,
	}

	if err := openapi3filter.ValidateRequest(cv.loader.Context, input); err != nil {
		return fmt.Errorf("request validation failed: %w", err)
	}
	return nil
}

// ValidateResponse validates a response's status, headers, and body bytes
// against the OpenAPI spec.
func (cv *ContractValidator) ValidateResponse(req *http.Request, status int, header http.Header, body []byte) error {
	route, pathParams, err := cv.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("no matching route found: %w", err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: status,
		Header: header,
	}
	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(cv.loader.Context, input); err != nil {
		return fmt.Errorf("response validation failed: %w", err)
	}
	return nil
}

// ValidateSchema validates a value against a named component schema.
func (cv *ContractValidator) ValidateSchema(schemaName string, data interface{}) error {
	schema := cv.doc.Components.Schemas[schemaName]
	if schema == nil {
		return fmt.Errorf("schema %s not found", schemaName)
	}

	if err := schema.Value.VisitJSON(data); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
