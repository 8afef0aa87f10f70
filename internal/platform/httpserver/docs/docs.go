// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g internal/platform/httpserver/server.go -o internal/platform/httpserver/docs
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
        "/api/voting/status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Current voting session snapshot",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/voting/start": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Start a voting session",
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Another session is active"},
                    "502": {"description": "Device error"}
                }
            }
        },
        "/api/voting/stop": {
            "post": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Stop the active voting session",
                "responses": {
                    "200": {"description": "OK"},
                    "502": {"description": "Device error"}
                }
            }
        },
        "/api/voting/device": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Check polling hardware presence",
                "responses": {
                    "200": {"description": "OK"},
                    "502": {"description": "Device error"}
                }
            }
        },
        "/api/voting/votes/{target}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Live per-keypad vote records for a target",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/voting/result/{target}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Finalize and return the aggregate result",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "No poll kind recorded for target"}
                }
            }
        },
        "/api/voting/device-result/{target}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voting"],
                "summary": "Hardware-side tally for cross-checking",
                "responses": {
                    "200": {"description": "OK"},
                    "502": {"description": "Device error"}
                }
            }
        },
        "/api/voting/anonymize/{target}": {
            "post": {
                "tags": ["voting"],
                "summary": "Strip keypad and participant linkage from records",
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Session for target still active"}
                }
            }
        },
        "/api/keypads/import/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keypad-import"],
                "summary": "Validate a bulk keypad import batch",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/api/keypads/import": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keypad-import"],
                "summary": "Validate and commit a bulk keypad import batch",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quorum Voting API",
	Description:      "Voting-session coordination, vote reconciliation and keypad import.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
