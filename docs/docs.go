// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["health"], "summary": "Readiness probe", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}},
        "/healthz": {"get": {"tags": ["health"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}},
        "/workspace": {"get": {"tags": ["workspace"], "summary": "Workspace snapshot", "produces": ["application/json"], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}}}},
        "/workspace/files": {"post": {"tags": ["workspace"], "summary": "Add files to the workspace", "consumes": ["multipart/form-data"], "produces": ["application/json"],
            "parameters": [{"type": "file", "description": "files to ingest", "name": "files", "in": "formData", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ingestResult"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}}}},
        "/workspace/documents/{id}": {"delete": {"tags": ["workspace"], "summary": "Remove a document",
            "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
            "responses": {"204": {"description": "No Content"}}}},
        "/workspace/documents/{id}/toggle": {"post": {"tags": ["workspace"], "summary": "Toggle a document's selection",
            "parameters": [{"type": "string", "description": "document id", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}}}},
        "/workspace/active": {
            "put": {"tags": ["workspace"], "summary": "Open a document in preview", "consumes": ["application/json"],
                "parameters": [{"description": "document to preview", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"id": {"type": "string"}}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}}},
            "delete": {"tags": ["workspace"], "summary": "Close the preview", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}}}
        },
        "/workspace/selection": {
            "post": {"tags": ["workspace"], "summary": "Select all documents", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}}},
            "delete": {"tags": ["workspace"], "summary": "Deselect all documents", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}}}
        },
        "/workspace/selection/toggle": {"post": {"tags": ["workspace"], "summary": "Select all, or deselect all when everything is selected", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/snapshot"}}}}},
        "/workspace/sources": {"get": {"tags": ["workspace"], "summary": "Selected sources", "responses": {"200": {"description": "OK"}}}},
        "/workspace/blobs/{handle}": {"get": {"tags": ["workspace"], "summary": "Referenced file content",
            "parameters": [{"type": "string", "description": "object reference", "name": "handle", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}}},
        "/workspace/drag": {
            "get": {"tags": ["dragdrop"], "summary": "Drag affordance state", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dragState"}}}},
            "post": {"tags": ["dragdrop"], "summary": "Report a drag event", "consumes": ["application/json"],
                "parameters": [{"description": "drag event", "name": "body", "in": "body", "required": true, "schema": {"type": "object", "properties": {"kind": {"type": "string", "enum": ["dragover", "dragleave"]}, "target": {"type": "string", "enum": ["local", "page"]}, "from_child": {"type": "boolean"}}}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/dragState"}}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}}}
        },
        "/workspace/drop": {"post": {"tags": ["dragdrop"], "summary": "Drop files", "consumes": ["multipart/form-data"],
            "parameters": [
                {"type": "file", "description": "dropped files", "name": "files", "in": "formData"},
                {"type": "string", "description": "local or page", "name": "target", "in": "formData", "required": true},
                {"type": "string", "description": "identifies the gesture across listeners", "name": "gesture_id", "in": "formData"}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}}}},
        "/upload": {"post": {"tags": ["uploads"], "summary": "Upload one file", "consumes": ["multipart/form-data"], "produces": ["application/json"],
            "parameters": [{"type": "file", "description": "file to upload", "name": "file", "in": "formData", "required": true}],
            "responses": {"200": {"description": "true", "schema": {"type": "boolean"}}, "400": {"description": "false", "schema": {"type": "boolean"}}, "500": {"description": "false", "schema": {"type": "boolean"}}}}},
        "/uploads": {"get": {"tags": ["uploads"], "summary": "List uploads",
            "parameters": [
                {"type": "integer", "default": 10, "description": "page size", "name": "limit", "in": "query"},
                {"type": "integer", "default": 0, "description": "offset", "name": "offset", "in": "query"}
            ],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}}}},
        "/uploads/{id}/content": {"get": {"tags": ["uploads"], "summary": "Upload content", "produces": ["application/octet-stream"],
            "parameters": [{"type": "string", "description": "upload id", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}}},
        "/uploads/{id}/download": {"get": {"tags": ["uploads"], "summary": "Upload download link",
            "parameters": [{"type": "string", "description": "upload id", "name": "id", "in": "path", "required": true}],
            "responses": {"302": {"description": "Found"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}}},
        "/uploads/{id}": {
            "get": {"tags": ["uploads"], "summary": "Get an upload",
                "parameters": [{"type": "string", "description": "upload id", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/upload"}}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}},
            "delete": {"tags": ["uploads"], "summary": "Delete an upload",
                "parameters": [{"type": "string", "description": "upload id", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}}}
        }
    },
    "definitions": {
        "document": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "size": {"type": "integer"}, "type": {"type": "string"},
            "category": {"type": "string", "enum": ["image", "pdf", "word_document", "text", "generic"]},
            "content": {"type": "string"}, "size_label": {"type": "string"}, "blob_url": {"type": "string"}}},
        "snapshot": {"type": "object", "properties": {
            "revision": {"type": "integer"}, "documents": {"type": "array", "items": {"$ref": "#/definitions/document"}},
            "selected_ids": {"type": "array", "items": {"type": "string"}}, "active_view_id": {"type": "string"},
            "all_selected": {"type": "boolean"}, "count": {"type": "integer"}}},
        "ingestResult": {"type": "object", "properties": {
            "documents": {"type": "array", "items": {"$ref": "#/definitions/document"}},
            "errors": {"type": "array", "items": {"type": "object", "properties": {"filename": {"type": "string"}, "error": {"type": "string"}}}}}},
        "dragState": {"type": "object", "properties": {"local_active": {"type": "boolean"}, "global_active": {"type": "boolean"}, "overlay": {"type": "boolean"}}},
        "upload": {"type": "object", "properties": {
            "id": {"type": "string"}, "filename": {"type": "string"}, "original_name": {"type": "string"}, "storage_path": {"type": "string"},
            "size": {"type": "integer"}, "content_type": {"type": "string"}, "created_at": {"type": "string"}}},
        "error": {"type": "object", "properties": {
            "request_id": {"type": "string"},
            "error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Document Workspace API",
	Description:      "Ingests files into an in-memory document workspace and manages selection, preview and drag and drop.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
