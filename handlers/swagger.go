package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>culturequest — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the main content and leaderboard endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "culturequest", "version": "v0.1.0" },
  "paths": {
    "/api/contents": {
      "post": {
        "summary": "Submit lesson content for screening",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"contributorId":{"type":"string"},"topicId":{"type":"string"},"title":{"type":"string"},"body":{"type":"string"}}}}}},
        "responses": { "201": { "description": "stored content with post-screening status" }, "400": { "description": "empty title or body" }, "404": { "description": "unknown contributor or topic" } }
      }
    },
    "/api/contents/queue": {
      "get": { "summary": "List content awaiting manual review", "responses": { "200": { "description": "pending content" } } }
    },
    "/api/contents/search": {
      "get": { "summary": "Case-insensitive title search", "parameters": [{"name":"keyword","in":"query","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "matching content" } } }
    },
    "/api/contents/{id}": {
      "get": { "summary": "Get content by id", "responses": { "200": { "description": "content" }, "404": { "description": "not found" } } }
    },
    "/api/contents/{id}/moderation": {
      "get": { "summary": "Get the screening verdict for a content item", "responses": { "200": { "description": "verdict" }, "404": { "description": "not screened yet" } } }
    },
    "/api/contents/{id}/approve": {
      "put": { "summary": "Manually approve pending content", "responses": { "200": { "description": "approved" }, "404": { "description": "not found" }, "409": { "description": "not in pending state" } } }
    },
    "/api/contents/{id}/reject": {
      "put": { "summary": "Manually reject pending content", "responses": { "200": { "description": "rejected" }, "404": { "description": "not found" }, "409": { "description": "not in pending state" } } }
    },
    "/api/leaderboard": {
      "get": { "summary": "Top learners by XP", "parameters": [{"name":"limit","in":"query","schema":{"type":"integer","maximum":100}}], "responses": { "200": { "description": "ranked entries" } } }
    },
    "/api/leaderboard/{learnerId}": {
      "get": { "summary": "Rank and XP for one learner", "responses": { "200": { "description": "entry" }, "404": { "description": "unknown or unranked learner" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
