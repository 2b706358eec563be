// Package docs registers the OpenAPI description served at /swagger/doc.json.
// It mirrors the swag annotations on main and the inbound handlers.
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.1.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}",
        "contact": {"name": "Contact Support", "email": "support@stepup.dev"},
        "license": {"name": "MIT", "url": "https://mit-license.org/"}
    },
    "servers": [{"url": "http://localhost:8080"}],
    "security": [{"BearerAuth": []}],
    "paths": {
        "/api/auth/sms/create": {
            "post": {
                "tags": ["Authorization", "SMS"],
                "summary": "Create SMS authorization",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateSMSAuthorizationRequest"}}}},
                "responses": {
                    "200": {"description": "Issued message", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CreateSMSAuthorizationResponse"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "401": {"$ref": "#/components/responses/Error"},
                    "500": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/api/auth/sms/verify": {
            "post": {
                "tags": ["Authorization", "SMS"],
                "summary": "Verify SMS authorization",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/VerifySMSAuthorizationRequest"}}}},
                "responses": {
                    "200": {"$ref": "#/components/responses/Ok"},
                    "401": {"$ref": "#/components/responses/Error"},
                    "500": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/api/auth/combined/authenticate": {
            "post": {
                "tags": ["Authorization", "Authentication"],
                "summary": "Combined password and SMS authentication",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AuthenticateCombinedRequest"}}}},
                "responses": {
                    "200": {"description": "Authenticated user", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AuthenticateResponse"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "401": {"$ref": "#/components/responses/Error"},
                    "500": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/api/auth/user/authenticate": {
            "post": {
                "tags": ["Authorization", "Authentication"],
                "summary": "Authenticate user",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AuthenticateRequest"}}}},
                "responses": {
                    "200": {"description": "Authenticated user", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AuthenticateResponse"}}}},
                    "400": {"$ref": "#/components/responses/Error"},
                    "401": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/api/auth/user/info": {
            "post": {
                "tags": ["Authorization", "User"],
                "summary": "User detail",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UserInfoRequest"}}}},
                "responses": {
                    "200": {"description": "User detail", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UserInfoResponse"}}}},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/api/operation/formdata/change": {
            "post": {
                "tags": ["Operation"],
                "summary": "Form data change notification",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/FormDataChangedRequest"}}}},
                "responses": {
                    "200": {"$ref": "#/components/responses/Ok"},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/api/operation/change": {
            "post": {
                "tags": ["Operation"],
                "summary": "Operation change notification",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OperationChangedRequest"}}}},
                "responses": {
                    "200": {"$ref": "#/components/responses/Ok"},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Liveness and dependency pings",
                "security": [],
                "responses": {
                    "200": {"$ref": "#/components/responses/Ok"},
                    "500": {"$ref": "#/components/responses/Error"}
                }
            }
        }
    },
    "components": {
        "securitySchemes": {
            "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization", "description": "Type \"Bearer\" followed by a space and the service token."}
        },
        "responses": {
            "Ok": {"description": "Success", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SuccessResponse"}}}},
            "Error": {"description": "Failure", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/ErrorResponse"}}}}
        },
        "schemas": {
            "SuccessResponse": {
                "type": "object",
                "properties": {"message": {"type": "string"}, "data": {}}
            },
            "ErrorResponse": {
                "type": "object",
                "properties": {
                    "message": {"type": "string", "example": "smsAuthorization.failed"},
                    "code": {"type": "string", "example": "SMS_AUTHORIZATION_FAILED"},
                    "error": {"type": "object", "additionalProperties": {"type": "string"}},
                    "remaining_attempts": {"type": "integer", "example": 2}
                }
            },
            "Parameter": {
                "type": "object",
                "properties": {
                    "type": {"type": "string", "enum": ["AMOUNT", "KEY_VALUE", "NOTE", "MESSAGE"]},
                    "id": {"type": "string", "example": "operation.amount"},
                    "amount": {"type": "string", "example": "100.00"},
                    "currency": {"type": "string", "example": "CZK"},
                    "value": {"type": "string"},
                    "note": {"type": "string"},
                    "message": {"type": "string"}
                }
            },
            "FormData": {
                "type": "object",
                "properties": {
                    "title": {"type": "string"},
                    "greeting": {"type": "string"},
                    "summary": {"type": "string"},
                    "parameters": {"type": "array", "items": {"$ref": "#/components/schemas/Parameter"}}
                }
            },
            "OperationContext": {
                "type": "object",
                "properties": {
                    "id": {"type": "string"},
                    "name": {"type": "string", "example": "authorize_payment"},
                    "data": {"type": "string"},
                    "form_data": {"$ref": "#/components/schemas/FormData"}
                }
            },
            "CreateSMSAuthorizationRequest": {
                "type": "object",
                "required": ["user_id", "organization_id", "operation_context"],
                "properties": {
                    "user_id": {"type": "string", "example": "12345678"},
                    "organization_id": {"type": "string", "example": "RETAIL"},
                    "operation_context": {"$ref": "#/components/schemas/OperationContext"},
                    "lang": {"type": "string", "example": "en"}
                }
            },
            "CreateSMSAuthorizationResponse": {
                "type": "object",
                "properties": {"message_id": {"type": "string"}}
            },
            "VerifySMSAuthorizationRequest": {
                "type": "object",
                "required": ["message_id", "authorization_code"],
                "properties": {
                    "message_id": {"type": "string"},
                    "authorization_code": {"type": "string"},
                    "operation_context": {"$ref": "#/components/schemas/OperationContext"}
                }
            },
            "AuthenticateRequest": {
                "type": "object",
                "required": ["username", "password"],
                "properties": {
                    "username": {"type": "string", "example": "jdoe"},
                    "password": {"type": "string"},
                    "operation_context": {"$ref": "#/components/schemas/OperationContext"}
                }
            },
            "AuthenticateCombinedRequest": {
                "type": "object",
                "required": ["username", "password", "message_id", "authorization_code"],
                "properties": {
                    "username": {"type": "string", "example": "jdoe"},
                    "password": {"type": "string"},
                    "message_id": {"type": "string"},
                    "authorization_code": {"type": "string"},
                    "operation_context": {"$ref": "#/components/schemas/OperationContext"}
                }
            },
            "AuthenticateResponse": {
                "type": "object",
                "properties": {"user_id": {"type": "string"}}
            },
            "UserInfoRequest": {
                "type": "object",
                "required": ["user_id"],
                "properties": {"user_id": {"type": "string"}}
            },
            "UserInfoResponse": {
                "type": "object",
                "properties": {
                    "id": {"type": "string"},
                    "given_name": {"type": "string"},
                    "family_name": {"type": "string"},
                    "organization_id": {"type": "string"}
                }
            },
            "FormDataChangedRequest": {
                "type": "object",
                "properties": {
                    "user_id": {"type": "string"},
                    "operation_context": {"$ref": "#/components/schemas/OperationContext"},
                    "form_data_change": {
                        "type": "object",
                        "properties": {
                            "type": {"type": "string", "enum": ["BANK_ACCOUNT_CHOICE", "AUTH_METHOD_CHOICE"]},
                            "bank_account_id": {"type": "string"},
                            "chosen_auth_method": {"type": "string"}
                        }
                    }
                }
            },
            "OperationChangedRequest": {
                "type": "object",
                "properties": {
                    "user_id": {"type": "string"},
                    "operation_context": {"$ref": "#/components/schemas/OperationContext"},
                    "operation_change": {"type": "string", "enum": ["DONE", "CANCELED", "FAILED"]}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Title:            "Stepup API",
	Description:      "Stepup issues and verifies SMS one-time codes bound to the operation being authorized.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
