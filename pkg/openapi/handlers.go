package openapi

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rifkidocs/headless-firebase-sub000/pkg/httputil"
	"github.com/rifkidocs/headless-firebase-sub000/pkg/observability"
)

var swaggerUI = template.Must(template.New("swagger").Parse(swaggerUITemplate))

// Handlers serves the generated document and an interactive viewer
type Handlers struct {
	service *Service
}

// NewHandlers creates HTTP handlers backed by service
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the documentation routes with the router
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/openapi.json", h.serveDocument(FormatJSON)).Methods("GET")
	router.HandleFunc("/openapi.yaml", h.serveDocument(FormatYAML)).Methods("GET")
	router.HandleFunc("/openapi", h.serveRequestedFormat).Methods("GET")
	router.HandleFunc("/swagger-ui", h.serveSwaggerUI).Methods("GET")
	router.HandleFunc("/api-docs", h.serveSwaggerUI).Methods("GET") // Alias
}

func (h *Handlers) serveDocument(format Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := h.service.Document(r.Context(), format)
		if err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("failed to build openapi document")
			httputil.WriteInternalError(w, "failed to build API documentation")
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// serveRequestedFormat picks the format from ?format=, defaulting to JSON
func (h *Handlers) serveRequestedFormat(w http.ResponseWriter, r *http.Request) {
	format, err := ParseFormat(httputil.ParseQueryString(r, "format", string(FormatJSON)))
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	h.serveDocument(format)(w, r)
}

func (h *Handlers) serveSwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := swaggerUI.Execute(w, nil); err != nil {
		httputil.WriteInternalError(w, "failed to render swagger ui")
	}
}

const swaggerUITemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Headless CMS API - Swagger UI</title>
  <link rel="stylesheet" type="text/css" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/swagger-ui.css" />
  <style>
    html { box-sizing: border-box; overflow-y: scroll; }
    *, *:before, *:after { box-sizing: inherit; }
    body { margin: 0; padding: 0; }
  </style>
</head>
<body>
<div id="swagger-ui"></div>

<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/swagger-ui-bundle.js" charset="UTF-8"></script>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5.10.5/swagger-ui-standalone-preset.js" charset="UTF-8"></script>
<script>
window.onload = function() {
  window.ui = SwaggerUIBundle({
    url: "/openapi.json",
    dom_id: '#swagger-ui',
    deepLinking: true,
    presets: [
      SwaggerUIBundle.presets.apis,
      SwaggerUIStandalonePreset
    ],
    layout: "StandaloneLayout",
    requestInterceptor: function(request) {
      const token = localStorage.getItem('headless_api_token');
      if (token) {
        request.headers['Authorization'] = 'Bearer ' + token;
      }
      return request;
    }
  });
};
</script>
</body>
</html>`
