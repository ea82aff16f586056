package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// validator checks incoming requests against the OpenAPI description.
type validator struct {
	server *Server
	router routers.Router
}

func newValidator(s *Server, doc *openapi3.T) (*validator, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &validator{server: s, router: router}, nil
}

func (v *validator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := v.router.FindRoute(r)
		if err != nil {
			// Routes outside the API description (docs, metrics) are not validated.
			var routeErr *routers.RouteError
			if errors.As(err, &routeErr) {
				next.ServeHTTP(w, r)
				return
			}
			v.server.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    &openapi3filter.Options{MultiError: false},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.server.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		next.ServeHTTP(w, r)
	})
}
