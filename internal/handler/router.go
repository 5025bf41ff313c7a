package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/opencampus/academ-api/internal/middleware"
	"github.com/opencampus/academ-api/internal/models"
	"github.com/opencampus/academ-api/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Auth       *service.AuthService
	Identity   *service.IdentityService
	Catalog    *service.CatalogService
	Enrollment *service.EnrollmentService
	Coursework *service.CourseworkService
	Lessons    *service.LessonService
	Rosters    *service.RosterService
}

// Register mounts every API route under the given prefix.
func Register(r *gin.Engine, prefix string, svcs Services) {
	authHandler := NewAuthHandler(svcs.Auth)
	identityHandler := NewIdentityHandler(svcs.Identity)
	catalogHandler := NewCatalogHandler(svcs.Catalog)
	enrollmentHandler := NewEnrollmentHandler(svcs.Enrollment)
	courseworkHandler := NewCourseworkHandler(svcs.Coursework)
	lessonHandler := NewLessonHandler(svcs.Lessons)
	rosterHandler := NewRosterHandler(svcs.Rosters)

	api := r.Group(prefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(svcs.Auth))

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor, models.RoleStudent)

	students := authed.Group("/students")
	{
		students.GET("", staff, identityHandler.ListStudents)
		students.POST("", admin, identityHandler.CreateStudent)
		students.PUT("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf), identityHandler.UpdateStudent)
	}

	instructors := authed.Group("/instructors")
	{
		instructors.GET("", admin, identityHandler.ListInstructors)
		instructors.POST("", admin, identityHandler.CreateInstructor)
	}

	courses := authed.Group("/courses")
	{
		courses.GET("", anyRole, catalogHandler.ListCourses)
		courses.GET("/:id", anyRole, catalogHandler.GetCourse)
		courses.POST("", admin, catalogHandler.CreateCourse)
		courses.PUT("/:id", admin, catalogHandler.UpdateCourse)
		courses.GET("/:id/sections", anyRole, catalogHandler.ListSections)
	}

	sections := authed.Group("/sections")
	{
		sections.POST("/assign", admin, catalogHandler.AssignSection)
		sections.PUT("/:id", admin, catalogHandler.UpdateSection)

		sections.GET("/:id/assignments", anyRole, courseworkHandler.ListAssignments)
		sections.POST("/:id/assignments", staff, courseworkHandler.CreateAssignment)
		sections.DELETE("/:id/assignments/:assignmentId", staff, courseworkHandler.DeleteAssignment)

		sections.GET("/:id/gradebook", staff, rosterHandler.Gradebook)
		sections.GET("/:id/gradebook/export", staff, rosterHandler.ExportGradebook)
		sections.GET("/:id/roster", staff, rosterHandler.Roster)
		sections.GET("/:id/roster/export", staff, rosterHandler.ExportRoster)
	}

	assignments := authed.Group("/assignments")
	{
		assignments.GET("/:id", anyRole, courseworkHandler.GetAssignment)
		assignments.PUT("/:id", staff, courseworkHandler.UpdateAssignment)
	}

	enrollments := authed.Group("/enrollments")
	{
		enrollments.GET("", staff, enrollmentHandler.List)
		enrollments.POST("", admin, enrollmentHandler.Enroll)
		enrollments.DELETE("", admin, enrollmentHandler.Drop)
		enrollments.DELETE("/:id", admin, enrollmentHandler.Delete)
	}

	submissions := authed.Group("/submissions")
	{
		submissions.GET("", staff, courseworkHandler.ListSubmissions)
		submissions.POST("", middleware.RequireRoles(models.RoleStudent), courseworkHandler.Submit)
	}

	authed.PUT("/grades", staff, courseworkHandler.UpdateGrade)

	lessons := authed.Group("/lessons")
	lessons.Use(middleware.RequireRoles(models.RoleInstructor))
	{
		lessons.GET("", lessonHandler.List)
		lessons.POST("", lessonHandler.AddContent)
		lessons.PUT("", lessonHandler.UpdateContent)
		lessons.DELETE("/item", lessonHandler.DeleteItem)
		lessons.DELETE("/group", lessonHandler.DeleteGroup)
	}

	roster := authed.Group("/roster")
	{
		roster.GET("/coursemap", staff, rosterHandler.CourseMap)
		roster.GET("/dashboard", middleware.RequireRoles(models.RoleStudent), rosterHandler.Dashboard)
	}
}
