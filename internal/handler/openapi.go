package handler

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deppfellow/bridge-api/internal/model"
	"github.com/deppfellow/bridge-api/internal/schema"
	"github.com/deppfellow/bridge-api/internal/server"
	"github.com/labstack/echo/v4"
	"gopkg.in/yaml.v3"
)

//go:embed static/openapi.html
var staticFiles embed.FS

const apiVersion = "1.0.0"

// OpenAPIHandler serves the OpenAPI document and the docs UI.
//
// The document is generated once from the schema registry so the record
// shape it advertises always matches the columns the service selects.
type OpenAPIHandler struct {
	Handler
	json []byte
	yaml []byte
}

func NewOpenAPIHandler(s *server.Server, registry *schema.Registry) (*OpenAPIHandler, error) {
	doc := buildOpenAPIDocument(registry)

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document as JSON: %w", err)
	}
	yamlBytes, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI document as YAML: %w", err)
	}

	return &OpenAPIHandler{
		Handler: NewHandler(s),
		json:    jsonBytes,
		yaml:    yamlBytes,
	}, nil
}

// ServeJSON handles GET /openapi.json.
func (h *OpenAPIHandler) ServeJSON(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, h.json)
}

// ServeYAML handles GET /openapi.yaml.
func (h *OpenAPIHandler) ServeYAML(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/yaml", h.yaml)
}

// ServeOpenAPIUI serves the embedded docs page, which loads /openapi.json.
//
// Cache-Control is set to "no-cache" so clients do not reuse old docs UI.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := staticFiles.ReadFile("static/openapi.html")

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, templateBytes); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}

type openAPIDocument struct {
	OpenAPI    string                          `json:"openapi" yaml:"openapi"`
	Info       openAPIInfo                     `json:"info" yaml:"info"`
	Paths      map[string]map[string]operation `json:"paths" yaml:"paths"`
	Components components                      `json:"components" yaml:"components"`
}

type openAPIInfo struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
}

type operation struct {
	OperationID string              `json:"operationId" yaml:"operationId"`
	Summary     string              `json:"summary" yaml:"summary"`
	Tags        []string            `json:"tags" yaml:"tags"`
	RequestBody *requestBody        `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   map[string]response `json:"responses" yaml:"responses"`
}

type requestBody struct {
	Required bool                 `json:"required" yaml:"required"`
	Content  map[string]mediaType `json:"content" yaml:"content"`
}

type response struct {
	Description string               `json:"description" yaml:"description"`
	Content     map[string]mediaType `json:"content,omitempty" yaml:"content,omitempty"`
}

type mediaType struct {
	Schema schemaObject `json:"schema" yaml:"schema"`
}

type schemaObject struct {
	Ref         string                  `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Type        string                  `json:"type,omitempty" yaml:"type,omitempty"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Nullable    bool                    `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Required    []string                `json:"required,omitempty" yaml:"required,omitempty"`
	Properties  map[string]schemaObject `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items       *schemaObject           `json:"items,omitempty" yaml:"items,omitempty"`
}

type components struct {
	Schemas map[string]schemaObject `json:"schemas" yaml:"schemas"`
}

func ref(name string) schemaObject {
	return schemaObject{Ref: "#/components/schemas/" + name}
}

func jsonContent(s schemaObject) map[string]mediaType {
	return map[string]mediaType{echo.MIMEApplicationJSON: {Schema: s}}
}

func errorResponses(extra map[string]response) map[string]response {
	responses := map[string]response{
		"429": {Description: "Too many requests", Content: jsonContent(ref("Error"))},
		"500": {Description: "Internal error or SCHEMA_MISMATCH", Content: jsonContent(ref("Error"))},
		"503": {Description: "Database unavailable or timed out", Content: jsonContent(ref("Error"))},
	}
	for code, r := range extra {
		responses[code] = r
	}
	return responses
}

func buildOpenAPIDocument(registry *schema.Registry) *openAPIDocument {
	recordProps := make(map[string]schemaObject, registry.Len())
	for _, col := range registry.Columns() {
		prop := schemaObject{Nullable: true}
		if col == model.ProjectCodeColumn {
			prop.Type = "string"
			prop.Description = "Bridge project code. Not unique."
		}
		recordProps[col] = prop
	}

	recordList := schemaObject{Type: "array", Items: &schemaObject{Ref: "#/components/schemas/BridgeRecord"}}
	badRequest := response{Description: "Invalid request body", Content: jsonContent(ref("Error"))}

	return &openAPIDocument{
		OpenAPI: "3.0.3",
		Info: openAPIInfo{
			Title:       "Bridge API",
			Description: "Read-only access to bridge survey records.",
			Version:     apiVersion,
		},
		Paths: map[string]map[string]operation{
			"/data_by_bridge_code": {
				"post": {
					OperationID: "getByProjectCode",
					Summary:     "Records whose Project_Code equals the given code",
					Tags:        []string{"bridges"},
					RequestBody: &requestBody{Required: true, Content: jsonContent(ref("ProjectCodeRequest"))},
					Responses: errorResponses(map[string]response{
						"200": {Description: "Matching records, possibly empty", Content: jsonContent(recordList)},
						"400": badRequest,
					}),
				},
			},
			"/all_data": {
				"post": {
					OperationID: "getAll",
					Summary:     "Every record in the table",
					Tags:        []string{"bridges"},
					Responses: errorResponses(map[string]response{
						"200": {Description: "All records", Content: jsonContent(recordList)},
					}),
				},
			},
			"/predict": {
				"post": {
					OperationID: "predict",
					Summary:     "Placeholder prediction",
					Tags:        []string{"prediction"},
					RequestBody: &requestBody{Required: true, Content: jsonContent(ref("PredictRequest"))},
					Responses: errorResponses(map[string]response{
						"200": {Description: "Prediction", Content: jsonContent(ref("PredictResponse"))},
						"400": badRequest,
					}),
				},
			},
			"/status": {
				"get": {
					OperationID: "status",
					Summary:     "Service health",
					Tags:        []string{"system"},
					Responses: map[string]response{
						"200": {Description: "Healthy or degraded"},
						"503": {Description: "Database unreachable"},
					},
				},
			},
		},
		Components: components{
			Schemas: map[string]schemaObject{
				"BridgeRecord": {
					Type:        "object",
					Description: "One survey row. Keys follow the registry column order.",
					Properties:  recordProps,
				},
				"ProjectCodeRequest": {
					Type:       "object",
					Required:   []string{model.ProjectCodeColumn},
					Properties: map[string]schemaObject{model.ProjectCodeColumn: {Type: "string"}},
				},
				"PredictRequest": {
					Type:     "object",
					Required: []string{"input1", "output2"},
					Properties: map[string]schemaObject{
						"input1":  {Type: "string"},
						"output2": {Type: "string"},
					},
				},
				"PredictResponse": {
					Type:       "object",
					Properties: map[string]schemaObject{"prediction": {Type: "string"}},
				},
				"Error": {
					Type: "object",
					Properties: map[string]schemaObject{
						"code":     {Type: "string"},
						"message":  {Type: "string"},
						"status":   {Type: "integer"},
						"override": {Type: "boolean"},
						"errors": {
							Type: "array",
							Items: &schemaObject{
								Type: "object",
								Properties: map[string]schemaObject{
									"field": {Type: "string"},
									"error": {Type: "string"},
								},
							},
						},
					},
				},
			},
		},
	}
}
