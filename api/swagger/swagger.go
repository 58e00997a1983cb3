package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UEP Attendance Analytics API",
        "description": "Attendance analytics over event check-ins: academic KPIs, punctuality, no-show estimates and exports. No-show figures are capacity based estimates.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login and current user"},
        {"name": "Analytics", "description": "Academic and per-event attendance analytics"},
        {"name": "Export", "description": "CSV and PDF downloads"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Inactive account", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/filters": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Observed faculties, event types and date span",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/academic": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Cross-event attendance analytics (admin)",
                "description": "A missing faculty or type parameter selects every observed value; a present but empty one selects none.",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "faculty", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "type", "in": "query", "type": "array", "items": {"type": "string", "enum": ["talk", "workshop", "seminar"]}, "collectionFormat": "multi"},
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Records unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/academic/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Export filtered events (admin)",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"},
                    {"name": "faculty", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "type", "in": "query", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "date_from", "in": "query", "type": "string", "format": "date"},
                    {"name": "date_to", "in": "query", "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "Document", "schema": {"type": "file"}},
                    "400": {"description": "Invalid filter or format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/events/{id}": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Single event report (organizer, admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/events/{id}/attendees/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Export the attendee list of an event (organizer, admin)",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Document", "schema": {"type": "file"}},
                    "404": {"description": "Unknown event", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/analytics/refresh": {
            "post": {
                "tags": ["Analytics"],
                "summary": "Drop the record snapshot and cached analytics (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Refreshed"}
                }
            }
        },
        "/analytics/system": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Instrumentation snapshot (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"}
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
