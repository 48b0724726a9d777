package api

import (
	"net/http"

	"github.com/oscillatelabsllc/sidequest/internal/models"
)

// jsonContent wraps a schema in an application/json content block
func jsonContent(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"application/json": map[string]interface{}{
			"schema": schema,
		},
	}
}

func ref(name string) map[string]interface{} {
	return map[string]interface{}{"$ref": "#/components/schemas/" + name}
}

func okResponse(description, schema string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content":     jsonContent(ref(schema)),
	}
}

func pathParam(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "path",
		"required":    true,
		"description": description,
		"schema":      map[string]interface{}{"type": "string"},
	}
}

var errorResponses = map[string]interface{}{
	"400": okResponse("Invalid input", "ErrorResponse"),
	"500": okResponse("Persistence failure", "ErrorResponse"),
}

func withErrors(ok map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"200": ok}
	for k, v := range errorResponses {
		out[k] = v
	}
	return out
}

// handleOpenAPISpec returns the OpenAPI 3.0 specification
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	categories := make([]string, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		categories = append(categories, c.String())
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Sidequest Adventure Tracker API",
			"description": "Log shared adventures between friends, query buddies, trends and badges, and get activity recommendations",
			"version":     "1.0.0",
			"contact": map[string]interface{}{
				"name": "Oscillate Labs",
				"url":  "https://github.com/oscillatelabsllc/sidequest",
			},
			"license": map[string]interface{}{
				"name": "MIT",
				"url":  "https://opensource.org/licenses/MIT",
			},
		},
		"servers": []map[string]interface{}{
			{
				"url":         "http://localhost:" + s.port,
				"description": "Local development server",
			},
		},
		"paths": map[string]interface{}{
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"operationId": "getHealth",
					"responses":   map[string]interface{}{"200": okResponse("Server is healthy", "StatusMessage")},
				},
			},
			"/api/v1/adventures": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Log an adventure",
					"description": "Credit every pair of participants, in both directions, with one adventure of the category on the date",
					"operationId": "logAdventure",
					"requestBody": map[string]interface{}{
						"required": true,
						"content":  jsonContent(ref("LogAdventureRequest")),
					},
					"responses": withErrors(okResponse("Adventure logged", "LogAdventureResponse")),
				},
			},
			"/api/v1/adventures/{date}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Adventure history for a date",
					"operationId": "getHistory",
					"parameters":  []interface{}{pathParam("date", "Date as YYYY-MM-DD")},
					"responses":   map[string]interface{}{"200": okResponse("Entries recorded on the date", "HistoryResponse")},
				},
			},
			"/api/v1/users/{user}/buddies": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Top adventure buddies",
					"operationId": "getBuddies",
					"parameters": []interface{}{
						pathParam("user", "User name"),
						map[string]interface{}{
							"name":        "limit",
							"in":          "query",
							"description": "Maximum partners to return, 0 for all",
							"schema":      map[string]interface{}{"type": "integer", "minimum": 0},
						},
					},
					"responses": map[string]interface{}{"200": okResponse("Partners by count, then name", "BuddiesResponse")},
				},
			},
			"/api/v1/users/{user}/trend": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Adventure totals per category",
					"operationId": "getTrend",
					"parameters":  []interface{}{pathParam("user", "User name")},
					"responses":   map[string]interface{}{"200": okResponse("Category totals", "TrendResponse")},
				},
			},
			"/api/v1/users/{user}/badge": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Badge tier",
					"operationId": "getBadge",
					"parameters":  []interface{}{pathParam("user", "User name")},
					"responses":   map[string]interface{}{"200": okResponse("Highest tier and every tier unlocked", "BadgeResponse")},
				},
			},
			"/api/v1/recommendations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Recommend activities",
					"description": "Categories from records whose pair label contains the group key, most common first. Trains the model on first use.",
					"operationId": "getRecommendations",
					"parameters": []interface{}{
						map[string]interface{}{
							"name":        "group",
							"in":          "query",
							"required":    true,
							"description": "Group key such as Amit-Rahul",
							"schema":      map[string]interface{}{"type": "string"},
						},
					},
					"responses": withErrors(okResponse("Recommendations, or an empty list with a message", "RecommendResponse")),
				},
			},
			"/api/v1/model": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Rebuild the recommendation model",
					"operationId": "rebuildModel",
					"responses":   withErrors(okResponse("Model rebuilt", "ModelResponse")),
				},
				"delete": map[string]interface{}{
					"summary":     "Invalidate the recommendation model",
					"operationId": "invalidateModel",
					"responses":   withErrors(okResponse("Model deleted", "StatusMessage")),
				},
			},
			"/api/v1/status": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "System status",
					"operationId": "getStatus",
					"responses":   map[string]interface{}{"200": okResponse("Ledger size and model state", "StatusResponse")},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"Category": map[string]interface{}{
					"type": "string",
					"enum": categories,
				},
				"LogAdventureRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"participants", "category"},
					"properties": map[string]interface{}{
						"participants": map[string]interface{}{
							"type":        "array",
							"minItems":    2,
							"uniqueItems": true,
							"items":       map[string]interface{}{"type": "string"},
						},
						"category": ref("Category"),
						"date": map[string]interface{}{
							"type":        "string",
							"format":      "date",
							"description": "Defaults to today",
						},
					},
				},
				"LogAdventureResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":      map[string]interface{}{"type": "boolean"},
						"date":         map[string]interface{}{"type": "string"},
						"category":     ref("Category"),
						"participants": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					},
				},
				"Entry": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"date":     map[string]interface{}{"type": "string"},
						"a":        map[string]interface{}{"type": "string"},
						"b":        map[string]interface{}{"type": "string"},
						"category": ref("Category"),
						"count":    map[string]interface{}{"type": "integer"},
					},
				},
				"HistoryResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"date":    map[string]interface{}{"type": "string"},
						"entries": map[string]interface{}{"type": "array", "items": ref("Entry")},
						"count":   map[string]interface{}{"type": "integer"},
					},
				},
				"BuddiesResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"user": map[string]interface{}{"type": "string"},
						"buddies": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"name":  map[string]interface{}{"type": "string"},
									"count": map[string]interface{}{"type": "integer"},
								},
							},
						},
					},
				},
				"TrendResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"user": map[string]interface{}{"type": "string"},
						"trend": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"category": ref("Category"),
									"count":    map[string]interface{}{"type": "integer"},
								},
							},
						},
					},
				},
				"BadgeResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"user":     map[string]interface{}{"type": "string"},
						"total":    map[string]interface{}{"type": "integer"},
						"badge":    map[string]interface{}{"type": "string"},
						"unlocked": map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
					},
				},
				"RecommendResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"group":           map[string]interface{}{"type": "string"},
						"recommendations": map[string]interface{}{"type": "array", "items": ref("Category")},
						"message":         map[string]interface{}{"type": "string"},
					},
				},
				"ModelResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":  map[string]interface{}{"type": "boolean"},
						"model_id": map[string]interface{}{"type": "string"},
						"records":  map[string]interface{}{"type": "integer"},
						"built_at": map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
				"StatusResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"status":      map[string]interface{}{"type": "string"},
						"backend":     map[string]interface{}{"type": "string"},
						"dates":       map[string]interface{}{"type": "integer"},
						"entries":     map[string]interface{}{"type": "integer"},
						"model_state": map[string]interface{}{"type": "string", "enum": []string{"no_model", "model_ready"}},
						"top_n":       map[string]interface{}{"type": "integer"},
						"categories":  map[string]interface{}{"type": "array", "items": ref("Category")},
					},
				},
				"StatusMessage": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"status":  map[string]interface{}{"type": "string"},
						"message": map[string]interface{}{"type": "string"},
					},
				},
				"ErrorResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"error": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}

	successResponse(w, spec)
}
