// Package docs registers the swagger document for the task API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{.Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/api/tasks": {
            "get": {
                "tags": ["Tasks"],
                "summary": "List tasks",
                "produces": ["application/json"],
                "responses": {
                    "200": {
                        "description": "All tasks in insertion order",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/Task"}}
                    },
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "post": {
                "tags": ["Tasks"],
                "summary": "Create a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {"$ref": "#/definitions/CreateTaskRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created task", "schema": {"$ref": "#/definitions/Task"}},
                    "400": {"description": "Missing or empty text", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/api/tasks/{id}": {
            "get": {
                "tags": ["Tasks"],
                "summary": "Get a task",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task", "schema": {"$ref": "#/definitions/Task"}},
                    "404": {"description": "Unknown id", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "put": {
                "tags": ["Tasks"],
                "summary": "Partially update a task",
                "description": "Only the fields present in the body are overwritten",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true},
                    {
                        "in": "body",
                        "name": "task",
                        "required": true,
                        "schema": {"$ref": "#/definitions/UpdateTaskRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Updated task", "schema": {"$ref": "#/definitions/Task"}},
                    "400": {"description": "Malformed body or empty text", "schema": {"$ref": "#/definitions/Error"}},
                    "404": {"description": "Unknown id", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/Error"}}
                }
            },
            "delete": {
                "tags": ["Tasks"],
                "summary": "Delete a task",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Message"}},
                    "404": {"description": "Unknown id", "schema": {"$ref": "#/definitions/Error"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {"200": {"description": "Server is healthy"}}
            }
        }
    },
    "definitions": {
        "Task": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "text": {"type": "string"},
                "details": {"type": "string"},
                "status": {"type": "string", "example": "todo"}
            }
        },
        "CreateTaskRequest": {
            "type": "object",
            "required": ["text"],
            "properties": {
                "text": {"type": "string"},
                "details": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "UpdateTaskRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "details": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "Message": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "Error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Task List API",
	Description:      "List, create, update and delete tasks",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
