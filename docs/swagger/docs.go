// Package swagger holds the OpenAPI description served under /docs
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
	"schemes": {{ marshal .Schemes }},
	"swagger": "2.0",
	"info": {
		"description": "{{escape .Description}}",
		"title": "{{.Title}}",
		"contact": {},
		"license": {
			"name": "MIT",
			"url": "https://opensource.org/licenses/MIT"
		},
		"version": "{{.Version}}"
	},
	"host": "{{.Host}}",
	"basePath": "{{.BasePath}}",
	"paths": {
		"/": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"health"
				],
				"summary": "Service version",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"additionalProperties": {
								"type": "string"
							}
						}
					}
				}
			}
		},
		"/health": {
			"get": {
				"description": "Reports database and synthesis queue status",
				"produces": [
					"application/json"
				],
				"tags": [
					"health"
				],
				"summary": "Health check",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.HealthResponse"
						}
					},
					"503": {
						"description": "Service Unavailable",
						"schema": {
							"$ref": "#/definitions/types.HealthResponse"
						}
					}
				}
			}
		},
		"/api/v1/stories": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"stories"
				],
				"summary": "List stories",
				"parameters": [
					{
						"type": "integer",
						"default": 20,
						"description": "Page size (1-100)",
						"name": "limit",
						"in": "query"
					},
					{
						"type": "integer",
						"default": 0,
						"description": "Number of stories to skip",
						"name": "offset",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.StoriesResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			},
			"post": {
				"description": "Splits the text into chunks and schedules synthesis with a reference voice.\nPass voice_id of a registered voice, or upload a voice sample as \"voice\".",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"stories"
				],
				"summary": "Create a story",
				"parameters": [
					{
						"type": "string",
						"description": "Story text",
						"name": "text",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Story title",
						"name": "title",
						"in": "formData",
						"required": false
					},
					{
						"type": "string",
						"description": "Language code",
						"name": "language",
						"in": "formData",
						"required": false,
						"default": "en"
					},
					{
						"type": "integer",
						"description": "Maximum characters per chunk",
						"name": "chunk_size",
						"in": "formData",
						"required": false
					},
					{
						"type": "string",
						"description": "Registered voice id",
						"name": "voice_id",
						"in": "formData",
						"required": false
					},
					{
						"type": "file",
						"description": "Reference voice sample (3-30 seconds)",
						"name": "voice",
						"in": "formData",
						"required": false
					}
				],
				"responses": {
					"202": {
						"description": "Accepted",
						"schema": {
							"$ref": "#/definitions/types.StoryCreatedResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"503": {
						"description": "Synthesis queue is full",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/stories/{id}": {
			"get": {
				"description": "progress counts ready chunks only; attempted_progress also counts failed chunks.",
				"produces": [
					"application/json"
				],
				"tags": [
					"stories"
				],
				"summary": "Story status",
				"parameters": [
					{
						"type": "string",
						"description": "Story ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/stories.StoryStatus"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/stories/{id}/chunks/{index}": {
			"get": {
				"produces": [
					"audio/wav"
				],
				"tags": [
					"stories"
				],
				"summary": "Chunk audio",
				"parameters": [
					{
						"type": "string",
						"description": "Story ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"type": "integer",
						"description": "Chunk index",
						"name": "index",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					},
					"404": {
						"description": "Unknown story or chunk",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"409": {
						"description": "Chunk not ready yet",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"500": {
						"description": "Chunk generation failed",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/voices": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"voices"
				],
				"summary": "List voices",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.VoicesResponse"
						}
					}
				}
			},
			"post": {
				"description": "Stores a 3-30 second reference sample that stories can be narrated with.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"application/json"
				],
				"tags": [
					"voices"
				],
				"summary": "Register a voice",
				"parameters": [
					{
						"type": "string",
						"description": "Display name",
						"name": "name",
						"in": "formData",
						"required": false
					},
					{
						"type": "string",
						"description": "Language of the sample",
						"name": "language",
						"in": "formData",
						"required": false
					},
					{
						"type": "file",
						"description": "Reference voice sample",
						"name": "voice",
						"in": "formData",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/types.VoiceResponse"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/voices/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"voices"
				],
				"summary": "Get a voice",
				"parameters": [
					{
						"type": "string",
						"description": "Voice ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/types.VoiceResponse"
						}
					},
					"404": {
						"description": "Not Found",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		},
		"/api/v1/tts/preview": {
			"post": {
				"description": "Synthesizes one short text with a reference voice without creating a story.",
				"consumes": [
					"multipart/form-data"
				],
				"produces": [
					"audio/wav"
				],
				"tags": [
					"tts"
				],
				"summary": "Preview synthesis",
				"parameters": [
					{
						"type": "string",
						"description": "Text, at most the maximum chunk size",
						"name": "text",
						"in": "formData",
						"required": true
					},
					{
						"type": "string",
						"description": "Language code",
						"name": "language",
						"in": "formData",
						"required": false,
						"default": "en"
					},
					{
						"type": "string",
						"description": "Registered voice id",
						"name": "voice_id",
						"in": "formData",
						"required": false
					},
					{
						"type": "file",
						"description": "Reference voice sample",
						"name": "voice",
						"in": "formData",
						"required": false
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "file"
						}
					},
					"400": {
						"description": "Bad Request",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					},
					"502": {
						"description": "Synthesis backend failed",
						"schema": {
							"$ref": "#/definitions/types.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"types.ErrorResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"error": {
					"type": "string"
				},
				"details": {
					"type": "object",
					"additionalProperties": true
				}
			}
		},
		"types.HealthResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"timestamp": {
					"type": "string"
				},
				"version": {
					"type": "string"
				},
				"services": {
					"type": "object",
					"additionalProperties": true
				}
			}
		},
		"types.StoryCreatedResponse": {
			"type": "object",
			"properties": {
				"story_id": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"total_chunks": {
					"type": "integer"
				}
			}
		},
		"stories.StorySummary": {
			"type": "object",
			"properties": {
				"story_id": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"language": {
					"type": "string"
				},
				"total_chunks": {
					"type": "integer"
				},
				"completed_chunks": {
					"type": "integer"
				},
				"progress": {
					"type": "number"
				},
				"total_duration_seconds": {
					"type": "number"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"types.StoriesResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"stories": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/stories.StorySummary"
					}
				},
				"count": {
					"type": "integer"
				},
				"total": {
					"type": "integer"
				},
				"limit": {
					"type": "integer"
				},
				"offset": {
					"type": "integer"
				}
			}
		},
		"stories.ChunkStatus": {
			"type": "object",
			"properties": {
				"index": {
					"type": "integer"
				},
				"status": {
					"type": "string"
				},
				"progress": {
					"type": "number"
				},
				"duration_seconds": {
					"type": "number"
				},
				"error": {
					"type": "string"
				}
			}
		},
		"stories.StoryStatus": {
			"type": "object",
			"properties": {
				"story_id": {
					"type": "string"
				},
				"status": {
					"type": "string"
				},
				"title": {
					"type": "string"
				},
				"language": {
					"type": "string"
				},
				"total_chunks": {
					"type": "integer"
				},
				"completed_chunks": {
					"type": "integer"
				},
				"failed_chunks": {
					"type": "integer"
				},
				"progress": {
					"type": "number"
				},
				"attempted_progress": {
					"type": "number"
				},
				"total_duration_seconds": {
					"type": "number"
				},
				"created_at": {
					"type": "string"
				},
				"completed_at": {
					"type": "string"
				},
				"chunks": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/stories.ChunkStatus"
					}
				}
			}
		},
		"models.Voice": {
			"type": "object",
			"properties": {
				"id": {
					"type": "string"
				},
				"name": {
					"type": "string"
				},
				"language": {
					"type": "string"
				},
				"duration_sec": {
					"type": "number"
				},
				"created_at": {
					"type": "string"
				}
			}
		},
		"types.VoiceResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"voice": {
					"$ref": "#/definitions/models.Voice"
				}
			}
		},
		"types.VoicesResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"message": {
					"type": "string"
				},
				"voices": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/models.Voice"
					}
				},
				"count": {
					"type": "integer"
				}
			}
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Story Teller API",
	Description:      "Splits stories into chunks and narrates them with a reference voice",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
