package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Events Admin",
        "description": "Organizer dashboard for school events, student registration and bookings",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Organizer signup, login and logout"},
        {"name": "Admin", "description": "Organizer dashboard, imports, exports and bookings"},
        {"name": "Events", "description": "Event creation and editing"},
        {"name": "Students", "description": "Student self-registration"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/signup": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register organizer",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "username", "in": "formData", "type": "string", "required": true},
                    {"name": "organization", "in": "formData", "type": "string"},
                    {"name": "email", "in": "formData", "type": "string", "required": true},
                    {"name": "password", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "303": {"description": "Redirect to /login"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Organizer login",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "username", "in": "formData", "type": "string", "required": true},
                    {"name": "password", "in": "formData", "type": "string", "required": true}
                ],
                "responses": {
                    "303": {"description": "Session established, redirect to /"},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/logout": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Organizer logout",
                "responses": {"303": {"description": "Redirect to /"}}
            }
        },
        "/adminpage": {
            "get": {
                "tags": ["Admin"],
                "summary": "List the organizer's events with booking counts",
                "parameters": [
                    {"name": "for_class", "in": "query", "type": "string"},
                    {"name": "academic", "in": "query", "type": "string", "description": "Not supported, returns 400"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "302": {"description": "Not logged in"},
                    "400": {"description": "Unsupported filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Admin"],
                "summary": "Delete an event or upload a student sheet",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "Delete_Event", "in": "formData", "type": "integer"},
                    {"name": "excel_file", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "303": {"description": "Redirect to /adminpage"},
                    "404": {"description": "Event not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/adminpage/export": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download the event listing",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "for_class", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        },
        "/adminpage/events/{event_id}/bookings": {
            "post": {
                "tags": ["Admin"],
                "summary": "Book a student onto an event",
                "parameters": [
                    {"name": "event_id", "in": "path", "type": "integer", "required": true},
                    {"name": "student_id", "in": "formData", "type": "integer", "required": true}
                ],
                "responses": {
                    "201": {"description": "Booked", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Event or student not found"},
                    "409": {"description": "Event full or already booked"}
                }
            }
        },
        "/createEvent": {
            "post": {
                "tags": ["Events"],
                "summary": "Create an event",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "event", "in": "formData", "type": "string", "required": true},
                    {"name": "start_date", "in": "formData", "type": "string", "required": true},
                    {"name": "end_date", "in": "formData", "type": "string", "required": true},
                    {"name": "type", "in": "formData", "type": "string"},
                    {"name": "start_time", "in": "formData", "type": "string"},
                    {"name": "end_time", "in": "formData", "type": "string"},
                    {"name": "available", "in": "formData", "type": "integer"},
                    {"name": "Money", "in": "formData", "type": "integer"},
                    {"name": "venue", "in": "formData", "type": "string"},
                    {"name": "for_class", "in": "formData", "type": "array", "items": {"type": "string"}, "collectionFormat": "multi"},
                    {"name": "description", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "303": {"description": "Redirect to /adminpage"},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/editEvent/{event_id}": {
            "post": {
                "tags": ["Events"],
                "summary": "Update an event",
                "parameters": [
                    {"name": "event_id", "in": "path", "type": "integer", "required": true}
                ],
                "responses": {
                    "303": {"description": "Redirect to /adminpage"},
                    "404": {"description": "Event not found"}
                }
            }
        },
        "/student_register": {
            "post": {
                "tags": ["Students"],
                "summary": "Student self-registration",
                "consumes": ["application/x-www-form-urlencoded"],
                "parameters": [
                    {"name": "first_name", "in": "formData", "type": "string", "required": true},
                    {"name": "last_name", "in": "formData", "type": "string", "required": true},
                    {"name": "dob", "in": "formData", "type": "string", "required": true},
                    {"name": "student_id", "in": "formData", "type": "string", "required": true},
                    {"name": "password", "in": "formData", "type": "string", "required": true},
                    {"name": "email", "in": "formData", "type": "string", "required": true},
                    {"name": "class_level", "in": "formData", "type": "integer"}
                ],
                "responses": {
                    "303": {"description": "Redirect to /adminpage"},
                    "409": {"description": "student_id or email taken"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "FlashMessage": {
            "type": "object",
            "properties": {
                "level": {"type": "string"},
                "text": {"type": "string"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {
                    "type": "object",
                    "properties": {
                        "messages": {"type": "array", "items": {"$ref": "#/definitions/FlashMessage"}}
                    }
                }
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
