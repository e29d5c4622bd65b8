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
        "/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a user",
                "parameters": [
                    {
                        "description": "Identity-provider uid and email",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.registerRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/get-user-status/{uid}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user status",
                "parameters": [
                    {"type": "string", "description": "User uid", "name": "uid", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.userStatusResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/verify-purchase": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "The purchase token is accepted without store-side verification.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Verify a purchase",
                "parameters": [
                    {
                        "description": "Purchase details",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.verifyPurchaseRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.messageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        },
        "/speak": {
            "post": {
                "description": "Consumes one daily credit when available. With ad_proof_token set, an exhausted quota is bypassed without consuming a credit.",
                "consumes": ["application/json"],
                "produces": ["audio/mpeg"],
                "tags": ["speech"],
                "summary": "Synthesize speech",
                "parameters": [
                    {
                        "description": "Synthesis request",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.speakRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "file"},
                        "headers": {"X-Remaining-Credits": {"type": "integer", "description": "Credits left today"}}
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {
                "details": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "handler.messageResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["email", "uid"],
            "properties": {
                "email": {"type": "string"},
                "uid": {"type": "string"}
            }
        },
        "handler.speakRequest": {
            "type": "object",
            "required": ["uid"],
            "properties": {
                "ad_proof_token": {"type": "string"},
                "mood": {"type": "string"},
                "text": {"type": "string"},
                "uid": {"type": "string"},
                "voice": {"type": "string"}
            }
        },
        "handler.userStatusResponse": {
            "type": "object",
            "properties": {
                "daily_limit": {"type": "integer"},
                "generations_today": {"type": "integer"},
                "plan_type": {"type": "string"},
                "uid": {"type": "string"}
            }
        },
        "handler.verifyPurchaseRequest": {
            "type": "object",
            "required": ["plan_type", "uid"],
            "properties": {
                "plan_type": {"type": "string"},
                "purchase_token": {"type": "string"},
                "uid": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "voxgate TTS gateway",
	Description:      "Quota-gated text-to-speech proxy with optional emotional SSML enrichment.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
