// Package swagger registers the Folio OpenAPI document with swag.
// Regenerate with `go generate ./docs`.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/jackzampolin/folio"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "Returns ok while the HTTP server is responding",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Server health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Returns ok only when the segmentation engine answers its health check",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Server readiness",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/endpoints.HealthResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Detailed status of the engine container, engine health and library",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Server status",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/metrics": {
            "get": {
                "description": "Translation, engine and segmentation counters in Prometheus text format",
                "produces": ["text/plain"],
                "tags": ["health"],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}}
                }
            }
        },
        "/segment": {
            "post": {
                "description": "Runs the segmentation engine on one page using the book settings.\nFixed segments and cuts of the page are preserved. With allowToLoadLocal\na stored annotation is returned instead of re-running the engine.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["segmentation"],
                "summary": "Segment a page",
                "parameters": [
                    {"description": "Settings and page", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/endpoints.SegmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/segmentation.PageAnnotations"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/emptysegment": {
            "post": {
                "description": "Returns annotations with no segments for a page",
                "produces": ["application/json"],
                "tags": ["segmentation"],
                "summary": "Empty segmentation",
                "parameters": [
                    {"type": "integer", "description": "Book id", "name": "bookid", "in": "query", "required": true},
                    {"type": "integer", "description": "Page id", "name": "pageid", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/segmentation.PageAnnotations"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/segmentedpages": {
            "post": {
                "description": "Lists the ids of pages that have a stored annotation",
                "produces": ["application/json"],
                "tags": ["segmentation"],
                "summary": "Segmented pages",
                "parameters": [
                    {"type": "integer", "description": "Book id", "name": "bookid", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/segmentation/settings": {
            "post": {
                "description": "Returns the saved settings of a book, or settings built from the\ndefault parameters when none are saved",
                "produces": ["application/json"],
                "tags": ["segmentation"],
                "summary": "Book settings",
                "parameters": [
                    {"type": "integer", "description": "Book id", "name": "bookid", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/api/translate": {
            "post": {
                "description": "Shows the engine parameters the settings translate to for a page\nsize, along with every diagnostic. The engine is not called.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["segmentation"],
                "summary": "Translate settings",
                "parameters": [
                    {"description": "Settings and page size", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/endpoints.TranslateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/api/books": {
            "get": {
                "description": "List all books in the library",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List books",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.ListBooksResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/api/books/{id}": {
            "get": {
                "description": "Get a book with the pixel size of each page",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get book",
                "parameters": [
                    {"type": "integer", "description": "Book id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/endpoints.BookDetail"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/api/books/{id}/settings": {
            "put": {
                "description": "Validates and saves the settings of a book. They are returned by\n/segmentation/settings from then on.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Save book settings",
                "parameters": [
                    {"type": "integer", "description": "Book id", "name": "id", "in": "path", "required": true},
                    {"description": "Book settings", "name": "settings", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        },
        "/api/books/{id}/pages/{page}/annotation": {
            "delete": {
                "description": "Forgets the stored annotation of a page so the next segmentation runs the engine",
                "tags": ["books"],
                "summary": "Delete stored annotation",
                "parameters": [
                    {"type": "integer", "description": "Book id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Page id", "name": "page", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/endpoints.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "endpoints.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "endpoints.HealthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string"}, "engine": {"type": "string"}}
        },
        "endpoints.SegmentRequest": {
            "type": "object",
            "properties": {
                "settings": {"type": "object"},
                "page": {"type": "integer"},
                "allowToLoadLocal": {"type": "boolean"}
            }
        },
        "endpoints.TranslateRequest": {
            "type": "object",
            "properties": {
                "settings": {"type": "object"},
                "width": {"type": "number"},
                "height": {"type": "number"},
                "page": {"type": "integer"},
                "strict": {"type": "boolean"}
            }
        },
        "endpoints.BookSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "pdf": {"type": "boolean"},
                "page_count": {"type": "integer"}
            }
        },
        "endpoints.ListBooksResponse": {
            "type": "object",
            "properties": {
                "books": {"type": "array", "items": {"$ref": "#/definitions/endpoints.BookSummary"}}
            }
        },
        "endpoints.PageDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "pdf_page": {"type": "integer"},
                "width": {"type": "integer"},
                "height": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "endpoints.BookDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "pdf": {"type": "boolean"},
                "pages": {"type": "array", "items": {"$ref": "#/definitions/endpoints.PageDetail"}}
            }
        },
        "geometry.Point": {
            "type": "object",
            "properties": {"x": {"type": "number"}, "y": {"type": "number"}}
        },
        "geometry.Region": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "points": {"type": "array", "items": {"$ref": "#/definitions/geometry.Point"}},
                "fixed": {"type": "boolean"}
            }
        },
        "segmentation.PageAnnotations": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "width": {"type": "integer"},
                "height": {"type": "integer"},
                "id": {"type": "integer"},
                "segments": {"type": "object", "additionalProperties": {"$ref": "#/definitions/geometry.Region"}},
                "readingOrder": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Folio API",
	Description:      "Page layout segmentation service: translates book settings into engine\nparameters, runs the segmentation engine and keeps accepted annotations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
