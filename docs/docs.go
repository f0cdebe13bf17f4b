// Package docs holds the Swagger 2.0 document served at /api/swagger.
// Regenerate it from the handler annotations with `go generate ./cmd/server`.
// internal/server tests fail when a route is missing from the document.
package docs

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
			"email": "support@writescape.dev"
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
		"/auth/register": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Register",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/validation.RawRegister"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"$ref": "#/definitions/server.authResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/login": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Login",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object",
							"properties": {
								"username": {
									"type": "string"
								},
								"password": {
									"type": "string"
								}
							}
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/server.authResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/logout": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Logout",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"message": {
									"type": "string"
								}
							}
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"503": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/auth/ws-ticket": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Issue a websocket ticket",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"ticket": {
									"type": "string"
								},
								"expires_in": {
									"type": "integer"
								}
							}
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"503": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/feature-flags": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"meta"
				],
				"summary": "Feature flags",
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object"
						}
					}
				}
			}
		},
		"/users/exists/username": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Check username availability",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object",
							"properties": {
								"username": {
									"type": "string"
								}
							}
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"exists": {
									"type": "boolean"
								}
							}
						}
					}
				}
			}
		},
		"/users/exists/email": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"users"
				],
				"summary": "Check email availability",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object",
							"properties": {
								"email": {
									"type": "string"
								}
							}
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"exists": {
									"type": "boolean"
								}
							}
						}
					}
				}
			}
		},
		"/profiles/{username}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profiles"
				],
				"summary": "Profile summary",
				"parameters": [
					{
						"type": "string",
						"description": "username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.ProfileSummary"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/profiles/{username}/posts": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profiles"
				],
				"summary": "Posts by a user",
				"parameters": [
					{
						"type": "string",
						"description": "username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.Post"
							}
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/profiles/{username}/followers": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profiles"
				],
				"summary": "Followers of a user",
				"parameters": [
					{
						"type": "string",
						"description": "username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.FollowUser"
							}
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/profiles/{username}/following": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"profiles"
				],
				"summary": "Users a user follows",
				"parameters": [
					{
						"type": "string",
						"description": "username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.FollowUser"
							}
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Create a post",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/validation.RawPost"
						}
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"type": "object",
							"properties": {
								"id": {
									"type": "integer"
								}
							}
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/search": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Search posts",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"type": "object",
							"properties": {
								"searchTerm": {
									"type": "string"
								}
							}
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.Post"
							}
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/posts/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Get a post",
				"parameters": [
					{
						"type": "integer",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/models.Post"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Update a post",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Request body",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/validation.RawPost"
						}
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"$ref": "#/definitions/server.updatePostResponse"
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Delete a post",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "id",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"status": {
									"type": "string"
								}
							}
						}
					},
					"403": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/feed": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"posts"
				],
				"summary": "Home feed",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "array",
							"items": {
								"$ref": "#/definitions/models.Post"
							}
						}
					},
					"401": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		},
		"/follow/{username}": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"follows"
				],
				"summary": "Follow a user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"201": {
						"description": "Created",
						"schema": {
							"type": "object",
							"properties": {
								"message": {
									"type": "string"
								}
							}
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"409": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"follows"
				],
				"summary": "Stop following a user",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "string",
						"description": "username",
						"name": "username",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "OK",
						"schema": {
							"type": "object",
							"properties": {
								"message": {
									"type": "string"
								}
							}
						}
					},
					"400": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					},
					"404": {
						"description": "Error",
						"schema": {
							"$ref": "#/definitions/models.ErrorResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"models.ErrorResponse": {
			"type": "object",
			"properties": {
				"error": {
					"type": "string"
				},
				"code": {
					"type": "string"
				},
				"errors": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		},
		"models.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"username": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"models.Post": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"title": {
					"type": "string"
				},
				"body": {
					"type": "string"
				},
				"author_id": {
					"type": "integer"
				},
				"author": {
					"$ref": "#/definitions/models.User"
				},
				"created_at": {
					"type": "string"
				},
				"is_owner": {
					"type": "boolean"
				}
			}
		},
		"models.FollowUser": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				}
			}
		},
		"models.ProfileSummary": {
			"type": "object",
			"properties": {
				"username": {
					"type": "string"
				},
				"avatar": {
					"type": "string"
				},
				"post_count": {
					"type": "integer"
				},
				"follower_count": {
					"type": "integer"
				},
				"following_count": {
					"type": "integer"
				},
				"is_following": {
					"type": "boolean"
				},
				"is_visitor_profile": {
					"type": "boolean"
				}
			}
		},
		"validation.RawPost": {
			"type": "object",
			"properties": {
				"title": {},
				"body": {}
			}
		},
		"validation.RawRegister": {
			"type": "object",
			"properties": {
				"username": {},
				"email": {},
				"password": {}
			}
		},
		"server.authResponse": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/models.User"
				}
			}
		},
		"server.updatePostResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				},
				"post": {
					"$ref": "#/definitions/models.Post"
				},
				"errors": {
					"type": "array",
					"items": {
						"type": "string"
					}
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and JWT token.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8375",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "Writescape API",
	Description:      "Blogging API with posts, follows, a home feed, search and live chat",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
