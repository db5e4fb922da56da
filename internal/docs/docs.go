// Package docs serves the OpenAPI description of the finboard API.
// Regenerate with: swag init -g cmd/api/main.go -o internal/docs
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
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "User registered and tokens generated"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Login user", "responses": {"200": {"description": "User authenticated and tokens generated"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh tokens", "responses": {"200": {"description": "New tokens"}}}},
        "/profile": {"get": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Get user profile", "responses": {"200": {"description": "User profile"}}}},
        "/transactions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List transactions", "responses": {"200": {"description": "Paginated transactions"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Create a transaction", "responses": {"201": {"description": "Transactions created"}}}
        },
        "/transactions/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Get transaction by ID", "responses": {"200": {"description": "Transaction details"}}}},
        "/transactions/categories": {"get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "List used categories", "responses": {"200": {"description": "Categories"}}}},
        "/transactions/export": {"get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Export transactions", "responses": {"200": {"description": "XLSX workbook"}}}},
        "/transactions/changes": {"get": {"security": [{"BearerAuth": []}], "tags": ["transactions"], "summary": "Stream transaction changes", "responses": {"200": {"description": "Event stream"}}}},
        "/dashboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Dashboard summary", "responses": {"200": {"description": "Dashboard summary"}}}},
        "/dashboard/totals": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Totals", "responses": {"200": {"description": "Totals"}}}},
        "/dashboard/running-balance": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Running balance", "responses": {"200": {"description": "Balance series"}}}},
        "/dashboard/monthly": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Monthly series", "responses": {"200": {"description": "Monthly series"}}}},
        "/dashboard/comparison": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Month comparison", "responses": {"200": {"description": "Comparison"}}}},
        "/dashboard/categories": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Category distribution", "responses": {"200": {"description": "Distribution"}}}},
        "/dashboard/projection": {"get": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Annual projection", "responses": {"200": {"description": "Projection"}}}},
        "/dashboard/savings-goal": {"post": {"security": [{"BearerAuth": []}], "tags": ["dashboard"], "summary": "Savings goal calculator", "responses": {"200": {"description": "Plan"}}}},
        "/hooks/transactions-changed": {"post": {"tags": ["hooks"], "summary": "Notify transaction change", "responses": {"202": {"description": "Accepted"}}}}
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
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Finboard API",
	Description:      "Finboard is a personal finance dashboard: record income and expenses, then read totals, monthly savings, comparisons, category breakdowns and projections.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
