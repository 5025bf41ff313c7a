package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academ API",
        "description": "Role-based academic records platform",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Identity", "description": "Student and instructor accounts"},
        {"name": "Catalog", "description": "Courses and sections"},
        {"name": "Enrollments", "description": "Section enrollment"},
        {"name": "Coursework", "description": "Assignments, submissions and grades"},
        {"name": "Lessons", "description": "Section lesson content"},
        {"name": "Roster", "description": "Read views and exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Identity"],
                "summary": "List students",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Identity"],
                "summary": "Register a student with a login account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate username or email"}
                }
            }
        },
        "/students/{id}": {
            "put": {
                "tags": ["Identity"],
                "summary": "Update a student profile and account",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found"}
                }
            }
        },
        "/instructors": {
            "get": {
                "tags": ["Identity"],
                "summary": "List instructors",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Identity"],
                "summary": "Register an instructor with a login account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateInstructorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate username or email"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List the course catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Catalog"],
                "summary": "Create a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate course code"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Get one course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found"}
                }
            },
            "put": {
                "tags": ["Catalog"],
                "summary": "Update a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/courses/{id}/sections": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List the sections of a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/assign": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Assign an instructor to a course section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Section already has an instructor"}
                }
            }
        },
        "/sections/{id}": {
            "put": {
                "tags": ["Catalog"],
                "summary": "Overwrite a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Section not found"}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments, optionally filtered by student or section",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "integer"},
                    {"name": "section_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled or course conflict"}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Drop a student from a section",
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "section_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Enrollment not found"}
                }
            }
        },
        "/enrollments/{id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete an enrollment by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Enrollment not found"}
                }
            }
        },
        "/sections/{id}/assignments": {
            "get": {
                "tags": ["Coursework"],
                "summary": "List the assignments linked to a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Coursework"],
                "summary": "Create an assignment linked to a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/assignments/{assignmentId}": {
            "delete": {
                "tags": ["Coursework"],
                "summary": "Delete an assignment and its section link",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "assignmentId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not linked to section"}
                }
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Coursework"],
                "summary": "Get one assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"}
                }
            },
            "put": {
                "tags": ["Coursework"],
                "summary": "Update an assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Coursework"],
                "summary": "List a student's submissions within a section",
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "section_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Coursework"],
                "summary": "Submit or resubmit an assignment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAssignmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Assignment not found"}
                }
            }
        },
        "/grades": {
            "put": {
                "tags": ["Coursework"],
                "summary": "Grade a submission",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Graded, or NO_SUBMISSION outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List the lesson content of a section",
                "parameters": [
                    {"name": "course_code", "in": "query", "required": true, "type": "string"},
                    {"name": "section_label", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Append one lesson content item",
                "parameters": [
                    {"name": "course_code", "in": "query", "required": true, "type": "string"},
                    {"name": "section_label", "in": "query", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddLessonContentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Lessons"],
                "summary": "Rewrite the content of addressed lesson items",
                "parameters": [
                    {"name": "course_code", "in": "query", "required": true, "type": "string"},
                    {"name": "section_label", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/item": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete one lesson content item",
                "parameters": [
                    {"name": "course_code", "in": "query", "required": true, "type": "string"},
                    {"name": "section_label", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lesson item not found"}
                }
            }
        },
        "/lessons/group": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete an entire lesson group",
                "parameters": [
                    {"name": "course_code", "in": "query", "required": true, "type": "string"},
                    {"name": "section_label", "in": "query", "required": true, "type": "string"},
                    {"name": "lesson_name", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lesson group not found"}
                }
            }
        },
        "/roster/coursemap": {
            "get": {
                "tags": ["Roster"],
                "summary": "Course map of every assigned course, section and instructor",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/dashboard": {
            "get": {
                "tags": ["Roster"],
                "summary": "The calling student's dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/gradebook": {
            "get": {
                "tags": ["Roster"],
                "summary": "Section gradebook",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "Students enrolled in a section",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "course_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sections/{id}/roster/export": {
            "get": {
                "tags": ["Roster"],
                "summary": "Export the section roster as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "course_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/sections/{id}/gradebook/export": {
            "get": {
                "tags": ["Roster"],
                "summary": "Export the section gradebook as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["identifier", "password"],
            "properties": {
                "identifier": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "email", "username", "password"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "bio": {"type": "string"},
                "birthday": {"type": "string", "format": "date-time"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateInstructorRequest": {
            "type": "object",
            "required": ["first_name", "last_name", "email", "username", "password"],
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "email": {"type": "string"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "required": ["name", "code", "description"],
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "AssignSectionRequest": {
            "type": "object",
            "required": ["course_id", "label", "instructor_id"],
            "properties": {
                "course_id": {"type": "integer"},
                "label": {"type": "string"},
                "instructor_id": {"type": "integer"}
            }
        },
        "EnrollStudentRequest": {
            "type": "object",
            "required": ["student_id", "course_id", "section_id"],
            "properties": {
                "student_id": {"type": "integer"},
                "course_id": {"type": "integer"},
                "section_id": {"type": "integer"}
            }
        },
        "AddAssignmentRequest": {
            "type": "object",
            "required": ["name", "description", "due_date"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "due_date": {"type": "string", "format": "date-time"}
            }
        },
        "SubmitAssignmentRequest": {
            "type": "object",
            "required": ["assignment_id", "student_id", "submission_link"],
            "properties": {
                "assignment_id": {"type": "integer"},
                "student_id": {"type": "integer"},
                "submission_link": {"type": "string"}
            }
        },
        "UpdateGradeRequest": {
            "type": "object",
            "required": ["assignment_id", "student_id", "grade"],
            "properties": {
                "assignment_id": {"type": "integer"},
                "student_id": {"type": "integer"},
                "grade": {"type": "number"}
            }
        },
        "AddLessonContentRequest": {
            "type": "object",
            "required": ["lesson_name", "type", "content"],
            "properties": {
                "lesson_name": {"type": "string"},
                "type": {"type": "string", "enum": ["PRESENTATION", "DISCUSSION", "ASSIGNMENT"]},
                "content": {"type": "string"},
                "link": {"type": "string"}
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
                "meta": {"type": "object"}
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
