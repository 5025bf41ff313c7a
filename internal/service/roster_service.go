package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
	"github.com/opencampus/academ-api/pkg/export"
)

const (
	cacheKeyCourseMap      = "roster:coursemap"
	cacheKeyDashboardPrefx = "roster:dashboard:"
)

// Export formats accepted by the roster export endpoints.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type rosterReadRepository interface {
	CourseMap(ctx context.Context) ([]models.CourseMapRow, error)
	DashboardRows(ctx context.Context, studentID int64) ([]models.DashboardRow, error)
	GradebookRows(ctx context.Context, sectionID int64) ([]models.GradebookRow, error)
	RosterStudents(ctx context.Context, courseID, sectionID int64) ([]models.RosterStudent, error)
}

type cacheLookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// ExportFile is a rendered export ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// RosterService serves the joined read views: the admin course map, the
// student dashboard, section gradebooks and rosters, plus file exports.
// Course map and dashboard responses are cached in Redis when enabled;
// writers call the Invalidate methods to drop stale entries.
type RosterService struct {
	repo          rosterReadRepository
	redis         *redis.Client
	csv           *export.CSVExporter
	pdf           *export.PDFExporter
	metrics       cacheLookupRecorder
	cacheEnabled  bool
	cacheTTL      time.Duration
	exportEnabled bool
	logger        *zap.Logger
}

// RosterOptions tunes caching and the export surface.
type RosterOptions struct {
	CacheEnabled  bool
	CacheTTL      time.Duration
	ExportEnabled bool
}

// NewRosterService constructs RosterService. The redis client and metrics
// recorder may be nil; caching then degrades to direct, unobserved reads.
func NewRosterService(repo rosterReadRepository, redisClient *redis.Client, metrics cacheLookupRecorder, opts RosterOptions, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RosterService{
		repo:          repo,
		redis:         redisClient,
		metrics:       metrics,
		csv:           export.NewCSVExporter(),
		pdf:           export.NewPDFExporter(),
		cacheEnabled:  opts.CacheEnabled && redisClient != nil,
		cacheTTL:      ttl,
		exportEnabled: opts.ExportEnabled,
		logger:        logger,
	}
}

// CourseMap returns every assigned course+section+instructor line.
func (s *RosterService) CourseMap(ctx context.Context) ([]models.CourseMapRow, error) {
	if cached, ok := cacheGet[[]models.CourseMapRow](ctx, s, cacheKeyCourseMap); ok {
		return cached, nil
	}

	rows, err := s.repo.CourseMap(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course map")
	}
	s.cacheSet(ctx, cacheKeyCourseMap, rows)
	return rows, nil
}

// StudentDashboard groups the student's enrolled sections with their
// assignments. Sections without assignments appear with an empty list.
func (s *RosterService) StudentDashboard(ctx context.Context, studentID int64) ([]models.DashboardCourse, error) {
	key := cacheKeyDashboardPrefx + strconv.FormatInt(studentID, 10)
	if cached, ok := cacheGet[[]models.DashboardCourse](ctx, s, key); ok {
		return cached, nil
	}

	rows, err := s.repo.DashboardRows(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard")
	}

	dashboard := groupDashboard(rows)
	s.cacheSet(ctx, key, dashboard)
	return dashboard, nil
}

// SectionGradebook returns every (assignment, student) pair of the section
// with submission fields left NULL where nothing was handed in.
func (s *RosterService) SectionGradebook(ctx context.Context, sectionID int64) ([]models.GradebookRow, error) {
	rows, err := s.repo.GradebookRows(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gradebook")
	}
	return rows, nil
}

// SectionRoster returns the students enrolled in the section.
func (s *RosterService) SectionRoster(ctx context.Context, courseID, sectionID int64) ([]models.RosterStudent, error) {
	students, err := s.repo.RosterStudents(ctx, courseID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return students, nil
}

// ExportRoster renders the section roster as CSV or PDF.
func (s *RosterService) ExportRoster(ctx context.Context, courseID, sectionID int64, format string) (*ExportFile, error) {
	if !s.exportEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	students, err := s.SectionRoster(ctx, courseID, sectionID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Student ID", "First Name", "Last Name", "Email"},
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID": strconv.FormatInt(st.StudentID, 10),
			"First Name": st.FirstName,
			"Last Name":  st.LastName,
			"Email":      st.Email,
		})
	}

	name := fmt.Sprintf("roster_section_%d", sectionID)
	return s.render(dataset, name, "Section Roster", format)
}

// ExportGradebook renders the section gradebook as CSV or PDF.
func (s *RosterService) ExportGradebook(ctx context.Context, sectionID int64, format string) (*ExportFile, error) {
	if !s.exportEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	rows, err := s.SectionGradebook(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Assignment", "Student", "Submitted At", "Grade"},
	}
	for _, row := range rows {
		submitted := ""
		if row.SubmissionDate != nil {
			submitted = row.SubmissionDate.Format(time.RFC3339)
		}
		grade := ""
		if row.Grade != nil {
			grade = strconv.FormatFloat(*row.Grade, 'f', 2, 64)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Assignment":   row.AssignmentName,
			"Student":      row.StudentName,
			"Submitted At": submitted,
			"Grade":        grade,
		})
	}

	name := fmt.Sprintf("gradebook_section_%d", sectionID)
	return s.render(dataset, name, "Section Gradebook", format)
}

// InvalidateCourseMap drops the cached course map.
func (s *RosterService) InvalidateCourseMap(ctx context.Context) {
	s.cacheDel(ctx, cacheKeyCourseMap)
}

// InvalidateStudentDashboard drops one student's cached dashboard.
func (s *RosterService) InvalidateStudentDashboard(ctx context.Context, studentID int64) {
	s.cacheDel(ctx, cacheKeyDashboardPrefx+strconv.FormatInt(studentID, 10))
}

func (s *RosterService) render(dataset export.Dataset, name, title, format string) (*ExportFile, error) {
	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: name + ".csv", ContentType: "text/csv", Content: content}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// groupDashboard folds the flat left-join rows into one entry per
// (course, section) preserving row order. A NULL assignment id marks a
// section without coursework.
func groupDashboard(rows []models.DashboardRow) []models.DashboardCourse {
	dashboard := make([]models.DashboardCourse, 0)
	index := make(map[string]int)

	for _, row := range rows {
		key := strconv.FormatInt(row.CourseID, 10) + ":" + strconv.FormatInt(row.SectionID, 10)
		pos, ok := index[key]
		if !ok {
			dashboard = append(dashboard, models.DashboardCourse{
				CourseID:        row.CourseID,
				CourseCode:      row.CourseCode,
				CourseName:      row.CourseName,
				Description:     row.Description,
				SectionID:       row.SectionID,
				SectionLabel:    row.SectionLabel,
				InstructorName:  row.InstructorName,
				InstructorEmail: row.InstructorEmail,
				Assignments:     []models.DashboardAssignment{},
			})
			pos = len(dashboard) - 1
			index[key] = pos
		}
		if row.AssignmentID == nil {
			continue
		}
		assignment := models.DashboardAssignment{AssignmentID: *row.AssignmentID}
		if row.AssignmentName != nil {
			assignment.Name = *row.AssignmentName
		}
		if row.AssignmentDue != nil {
			assignment.DueDate = *row.AssignmentDue
		}
		dashboard[pos].Assignments = append(dashboard[pos].Assignments, assignment)
	}
	return dashboard
}

func cacheGet[T any](ctx context.Context, s *RosterService, key string) (T, bool) {
	var zero T
	if !s.cacheEnabled {
		return zero, false
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("roster cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.recordLookup(false)
		return zero, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.Warn("roster cache decode failed", zap.String("key", key), zap.Error(err))
		s.recordLookup(false)
		return zero, false
	}
	s.recordLookup(true)
	return value, true
}

func (s *RosterService) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

func (s *RosterService) cacheSet(ctx context.Context, key string, value any) {
	if !s.cacheEnabled {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("roster cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("roster cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RosterService) cacheDel(ctx context.Context, key string) {
	if !s.cacheEnabled {
		return
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("roster cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
