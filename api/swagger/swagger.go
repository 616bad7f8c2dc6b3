package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Uni Enroll API",
        "description": "Course catalog and enrollment service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Catalog", "description": "Public course catalog"},
        {"name": "Courses", "description": "Coordinator course administration"},
        {"name": "Enrollments", "description": "Enrollment requests and review"},
        {"name": "Exports", "description": "Roster exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a user",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token",
                "responses": {
                    "200": {"description": "Token pair rotated"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/api/v1/catalog": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List active courses with available seats",
                "responses": {
                    "200": {"description": "Active courses ordered by name"}
                }
            }
        },
        "/api/v1/courses/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Course detail with enrollment state",
                "responses": {
                    "200": {"description": "Course detail"},
                    "404": {"description": "Course not found"}
                }
            },
            "put": {
                "tags": ["Courses"],
                "summary": "Edit a course",
                "responses": {
                    "200": {"description": "Course updated"},
                    "409": {"description": "Duplicate code or stale version"}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List all courses",
                "responses": {
                    "200": {"description": "Courses ordered by name"}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course",
                "responses": {
                    "201": {"description": "Course created"},
                    "409": {"description": "Duplicate code"}
                }
            }
        },
        "/api/v1/courses/{id}/active": {
            "patch": {
                "tags": ["Courses"],
                "summary": "Toggle the active flag",
                "responses": {
                    "200": {"description": "Course toggled"},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/api/v1/courses/{id}/roster/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the course roster as CSV or PDF",
                "responses": {
                    "200": {"description": "Rendered roster document"},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/api/v1/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "responses": {
                    "200": {"description": "Enrollment details, newest first"}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Request enrollment in a course",
                "responses": {
                    "201": {"description": "Pending enrollment created"},
                    "404": {"description": "Course unavailable"},
                    "409": {"description": "Already enrolled, capacity or schedule conflict"}
                }
            }
        },
        "/api/v1/enrollments/{id}/status": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Transition an enrollment status",
                "responses": {
                    "200": {"description": "Status updated"},
                    "409": {"description": "Capacity exceeded"}
                }
            }
        },
        "/api/v1/coordinator/summary": {
            "get": {
                "tags": ["Courses"],
                "summary": "Coordinator dashboard counts",
                "responses": {
                    "200": {"description": "Aggregated counts"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
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
