package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "GW Dashboard API",
        "description": "Merged student/teacher issue dashboards and the breakeven calculator",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "tags": [
        {"name": "Sessions", "description": "Upload batches and filtered views"},
        {"name": "Exports", "description": "CSV/XLSX/PDF downloads and stored snapshots"},
        {"name": "Calculator", "description": "Breakeven model after owner payout"},
        {"name": "Metrics", "description": "Runtime counters"}
    ],
    "paths": {
        "/screens": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List dashboard screens",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/screens/{screen}/sessions": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Upload a batch of CSV/XLSX files into a new session",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "screen", "in": "path", "required": true, "type": "string", "enum": ["student-issues", "teacher-issues"]},
                    {"name": "files", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No files or invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown screen", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Session metadata and per-file reports",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "410": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/query": {
            "post": {
                "tags": ["Sessions"],
                "summary": "Evaluate filters, search and paging over a session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/QueryRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/sessions/{id}/export": {
            "post": {
                "tags": ["Exports"],
                "summary": "Download the merged or filtered view",
                "produces": ["text/csv", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/sessions/{id}/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a stored snapshot export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {"202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/{jobId}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [{"name": "jobId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a stored export via signed token",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Export not ready", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/calculator/defaults": {
            "get": {
                "tags": ["Calculator"],
                "summary": "Calculator default inputs and step sizes",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calculator/compute": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Recompute the breakeven model",
                "parameters": [
                    {"name": "curve", "in": "query", "type": "boolean"},
                    {"name": "payload", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/calculator/report": {
            "post": {
                "tags": ["Calculator"],
                "summary": "Download the breakeven comparison report",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "xlsx", "pdf"], "default": "pdf"},
                    {"name": "payload", "in": "body", "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Aggregated runtime metrics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "QueryRequest": {
            "type": "object",
            "properties": {
                "selections": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "search": {"type": "string"},
                "page": {"type": "integer", "maximum": 1000000},
                "pageSize": {"type": "integer", "maximum": 1000}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "xlsx", "pdf"]},
                "scope": {"type": "string", "enum": ["filtered", "all"]},
                "selections": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}},
                "search": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
