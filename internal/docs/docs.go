// Package docs holds the OpenAPI document served under /swagger. Keep it in
// step with the handler annotations when routes or payloads change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "description": "Authenticate a user and get a token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {
                        "description": "User login credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "User authenticated and token generated", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Register a new user with name, email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {
                        "description": "User registration data",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.RegisterRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "User registered and token generated", "schema": {"$ref": "#/definitions/handlers.AuthResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/profile": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get the authenticated user's profile and preferences",
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Get user profile",
                "responses": {
                    "200": {"description": "User profile", "schema": {"$ref": "#/definitions/handlers.UserResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/profile/preferences": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Update currency, theme, notification and monthly budget preferences",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Update preferences",
                "parameters": [
                    {
                        "description": "Preference changes",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.UpdatePreferencesRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Updated profile", "schema": {"$ref": "#/definitions/handlers.UserResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/profile/push-token": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Store or clear the Expo push token for the authenticated user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Set push token",
                "parameters": [
                    {
                        "description": "Push token",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.PushTokenRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Token stored", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}}
                }
            }
        },
        "/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a paginated, filterable list of transactions, newest first",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get transactions",
                "parameters": [
                    {"type": "string", "description": "Start date (RFC3339 or YYYY-MM-DD, inclusive)", "name": "from_date", "in": "query"},
                    {"type": "string", "description": "End date (RFC3339 or YYYY-MM-DD, inclusive)", "name": "to_date", "in": "query"},
                    {"type": "string", "description": "Filter by type (income/expense)", "name": "type", "in": "query"},
                    {"type": "string", "description": "Filter by category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Minimum amount", "name": "min_amount", "in": "query"},
                    {"type": "string", "description": "Maximum amount", "name": "max_amount", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Paginated transactions", "schema": {"$ref": "#/definitions/pagination.PageResponse-models_Transaction"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Record a new income or expense",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Create a transaction",
                "parameters": [
                    {
                        "description": "Transaction details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CreateTransactionRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Transaction created", "schema": {"$ref": "#/definitions/handlers.TransactionResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/transactions/categories": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get the total and transactions of every category the user has recorded",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get category breakdown",
                "responses": {
                    "200": {
                        "description": "Totals keyed by category",
                        "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/engine.CategoryTotal"}}
                    }
                }
            }
        },
        "/transactions/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get total income, total expense and balance across all transactions",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get transaction summary",
                "responses": {
                    "200": {"description": "Totals", "schema": {"$ref": "#/definitions/engine.TransactionSummary"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a specific transaction by ID",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get transaction by ID",
                "parameters": [{"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Transaction details", "schema": {"$ref": "#/definitions/handlers.TransactionResponse"}},
                    "403": {"description": "Transaction belongs to another user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Update an existing transaction. Only supplied fields change.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Fields to update",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.UpdateTransactionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Updated transaction", "schema": {"$ref": "#/definitions/handlers.TransactionResponse"}},
                    "403": {"description": "Transaction belongs to another user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete a transaction by ID",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Delete transaction",
                "parameters": [{"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Transaction deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "403": {"description": "Transaction belongs to another user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/budgets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a paginated list of budgets for the authenticated user, newest first",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Get budgets",
                "parameters": [
                    {"type": "boolean", "description": "Filter by active status", "name": "is_active", "in": "query"},
                    {"type": "string", "description": "Filter by period (weekly/monthly/quarterly/yearly)", "name": "period", "in": "query"},
                    {"type": "integer", "description": "Page number (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Items per page (default 20, max 100)", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Paginated budgets", "schema": {"$ref": "#/definitions/pagination.PageResponse-models_Budget"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Create a new spending limit for a category",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Create a budget",
                "parameters": [
                    {
                        "description": "Budget details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.CreateBudgetRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Budget created", "schema": {"$ref": "#/definitions/handlers.BudgetResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/budgets/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "List budgets at or above their notification threshold, or report that notifications are disabled",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Check budget notifications",
                "responses": {
                    "200": {"description": "Notification check result", "schema": {"$ref": "#/definitions/engine.NotificationResult"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/budgets/summary": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get spent, remaining and percentage for every active budget in its current window",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Get budget summary",
                "responses": {
                    "200": {"description": "Budget statuses", "schema": {"$ref": "#/definitions/handlers.BudgetSummaryResponse"}}
                }
            }
        },
        "/budgets/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get a specific budget by ID",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Get budget by ID",
                "parameters": [{"type": "string", "description": "Budget ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Budget details", "schema": {"$ref": "#/definitions/handlers.BudgetResponse"}},
                    "403": {"description": "Budget belongs to another user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Budget not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Delete a budget by ID (soft delete)",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Delete budget",
                "parameters": [{"type": "string", "description": "Budget ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Budget deleted", "schema": {"$ref": "#/definitions/handlers.MessageResponse"}},
                    "403": {"description": "Budget belongs to another user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Budget not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/budgets/{id}/status": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Get spending status for a budget in its current window",
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Get budget status",
                "parameters": [{"type": "string", "description": "Budget ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Budget status", "schema": {"$ref": "#/definitions/handlers.BudgetStatusResponse"}},
                    "403": {"description": "Budget belongs to another user", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Budget not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "engine.BudgetStatus": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "category": {"type": "string"},
                "amount": {"type": "number"},
                "period": {"type": "string", "enum": ["weekly", "monthly", "quarterly", "yearly"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "is_active": {"type": "boolean"},
                "notification_threshold": {"type": "number"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "total_spent": {"type": "number"},
                "percentage_spent": {"type": "number"},
                "remaining": {"type": "number"},
                "is_over_budget": {"type": "boolean"}
            }
        },
        "engine.CategoryTotal": {
            "type": "object",
            "properties": {
                "total": {"type": "number"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/models.Transaction"}}
            }
        },
        "engine.Notification": {
            "type": "object",
            "properties": {
                "budget_id": {"type": "string"},
                "category": {"type": "string"},
                "budget_amount": {"type": "number"},
                "amount_spent": {"type": "number"},
                "percentage_spent": {"type": "string"},
                "is_over_budget": {"type": "boolean"}
            }
        },
        "engine.NotificationResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["disabled", "evaluated"]},
                "message": {"type": "string"},
                "notifications": {"type": "array", "items": {"$ref": "#/definitions/engine.Notification"}}
            }
        },
        "engine.TransactionSummary": {
            "type": "object",
            "properties": {
                "total_income": {"type": "number"},
                "total_expense": {"type": "number"},
                "balance": {"type": "number"}
            }
        },
        "handlers.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "handlers.BudgetResponse": {
            "type": "object",
            "properties": {"budget": {"$ref": "#/definitions/models.Budget"}}
        },
        "handlers.BudgetStatusResponse": {
            "type": "object",
            "properties": {"status": {"$ref": "#/definitions/engine.BudgetStatus"}}
        },
        "handlers.BudgetSummaryResponse": {
            "type": "object",
            "properties": {"budgets": {"type": "array", "items": {"$ref": "#/definitions/engine.BudgetStatus"}}}
        },
        "handlers.CreateBudgetRequest": {
            "type": "object",
            "required": ["amount", "category"],
            "properties": {
                "category": {"type": "string", "maxLength": 100},
                "amount": {"type": "number"},
                "period": {"type": "string", "enum": ["weekly", "monthly", "quarterly", "yearly"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "notification_threshold": {"type": "number", "maximum": 100, "minimum": 0},
                "notes": {"type": "string", "maxLength": 1000}
            }
        },
        "handlers.CreateTransactionRequest": {
            "type": "object",
            "required": ["amount", "category", "description", "type"],
            "properties": {
                "description": {"type": "string", "maxLength": 500},
                "amount": {"type": "number"},
                "type": {"type": "string", "enum": ["income", "expense"]},
                "category": {"type": "string", "maxLength": 100},
                "date": {"type": "string"},
                "payment_method": {"type": "string", "maxLength": 50},
                "tags": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "location": {"type": "string", "maxLength": 255},
                "notes": {"type": "string", "maxLength": 1000}
            }
        },
        "handlers.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/handlers.FieldErrorDetail"}}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"$ref": "#/definitions/handlers.ErrorDetail"}}
        },
        "handlers.FieldErrorDetail": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handlers.MessageResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}}
        },
        "handlers.PushTokenRequest": {
            "type": "object",
            "properties": {"token": {"type": "string", "maxLength": 255}}
        },
        "handlers.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password"],
            "properties": {
                "name": {"type": "string", "maxLength": 100},
                "email": {"type": "string", "maxLength": 255},
                "password": {"type": "string", "maxLength": 128, "minLength": 6}
            }
        },
        "handlers.TransactionResponse": {
            "type": "object",
            "properties": {"transaction": {"$ref": "#/definitions/models.Transaction"}}
        },
        "handlers.UpdatePreferencesRequest": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "theme": {"type": "string", "enum": ["light", "dark"]},
                "notifications_enabled": {"type": "boolean"},
                "monthly_budget": {"type": "number", "minimum": 0}
            }
        },
        "handlers.UpdateTransactionRequest": {
            "type": "object",
            "properties": {
                "description": {"type": "string", "maxLength": 500, "minLength": 1},
                "amount": {"type": "number"},
                "type": {"type": "string", "enum": ["income", "expense"]},
                "category": {"type": "string", "maxLength": 100, "minLength": 1},
                "date": {"type": "string"},
                "payment_method": {"type": "string", "maxLength": 50},
                "tags": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "location": {"type": "string", "maxLength": 255},
                "notes": {"type": "string", "maxLength": 1000}
            }
        },
        "handlers.UserResponse": {
            "type": "object",
            "properties": {"user": {"$ref": "#/definitions/models.User"}}
        },
        "models.Budget": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "category": {"type": "string"},
                "amount": {"type": "number"},
                "period": {"type": "string", "enum": ["weekly", "monthly", "quarterly", "yearly"]},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "is_active": {"type": "boolean"},
                "notification_threshold": {"type": "number"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.Preferences": {
            "type": "object",
            "properties": {
                "currency": {"type": "string"},
                "theme": {"type": "string", "enum": ["light", "dark"]},
                "notifications_enabled": {"type": "boolean"}
            }
        },
        "models.Transaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "description": {"type": "string"},
                "amount": {"type": "number"},
                "type": {"type": "string", "enum": ["income", "expense"]},
                "category": {"type": "string"},
                "date": {"type": "string"},
                "payment_method": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "location": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "avatar": {"type": "string"},
                "monthly_budget": {"type": "number"},
                "preferences": {"$ref": "#/definitions/models.Preferences"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "pagination.PageResponse-models_Budget": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Budget"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "pagination.PageResponse-models_Transaction": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Transaction"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Expense Tracker API",
	Description:      "Personal expense tracking with category budgets and threshold notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
