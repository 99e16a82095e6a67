package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var openAPISpec []byte

// LoadDocument parses and validates the embedded API description.
func LoadDocument(ctx context.Context) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("server: load openapi document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("server: validate openapi document: %w", err)
	}
	return doc, nil
}

var pathParam = regexp.MustCompile(`\{([^}]+)\}`)

// requestValidator checks requests against the operation registered for a
// mux route before the handler runs.
type requestValidator struct {
	doc     *openapi3.T
	options *openapi3filter.Options
}

func newRequestValidator(doc *openapi3.T) *requestValidator {
	return &requestValidator{
		doc: doc,
		options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
}

// wrap binds next to the operation at (method, path). It fails fast when the
// document has no such operation.
func (v *requestValidator) wrap(method, path string, next http.Handler) (http.Handler, error) {
	item := v.doc.Paths.Find(path)
	if item == nil {
		return nil, fmt.Errorf("server: openapi path %s not documented", path)
	}
	op := item.GetOperation(method)
	if op == nil {
		return nil, fmt.Errorf("server: openapi operation %s %s not documented", method, path)
	}
	route := &routers.Route{
		Spec:      v.doc,
		Path:      path,
		PathItem:  item,
		Method:    method,
		Operation: op,
	}
	names := pathParam.FindAllStringSubmatch(path, -1)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string, len(names))
		for _, match := range names {
			params[match[1]] = r.PathValue(match[1])
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    v.options,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequest, requestErrorMessage(err))
			return
		}
		next.ServeHTTP(w, r)
	}), nil
}

func requestErrorMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) && schemaErr.Reason != "" {
			return "Invalid request: " + schemaErr.Reason
		}
		if reqErr.Reason != "" {
			return "Invalid request: " + reqErr.Reason
		}
	}
	return "Invalid request"
}
