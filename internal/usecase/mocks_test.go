package usecase_test

import (
	"context"
	"sync"
	"time"

	"placement-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockStudentRepo struct {
	mock.Mock
}

func (m *MockStudentRepo) Create(ctx context.Context, s *domain.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStudentRepo) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) GetByProfileID(ctx context.Context, profileID string) (*domain.Student, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *MockStudentRepo) Update(ctx context.Context, s *domain.Student) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStudentRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStudentRepo) Search(ctx context.Context, f domain.StudentFilter) ([]domain.Student, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Student), args.Get(1).(int64), args.Error(2)
}

func (m *MockStudentRepo) ListForAnalytics(ctx context.Context, batchYear int, departments []string) ([]domain.Student, error) {
	args := m.Called(ctx, batchYear, departments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Student), args.Error(1)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) List(ctx context.Context, f domain.JobFilter) ([]domain.Job, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Job), args.Get(1).(int64), args.Error(2)
}

func (m *MockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) CloseExpired(ctx context.Context, now time.Time) ([]domain.Job, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.JobApplication) error {
	return m.Called(ctx, app).Error(0)
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.JobApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobApplication), args.Error(1)
}

func (m *MockApplicationRepo) List(ctx context.Context, f domain.ApplicationFilter) ([]domain.JobApplication, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.JobApplication), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicationRepo) Exists(ctx context.Context, jobID, studentID int64) (bool, error) {
	args := m.Called(ctx, jobID, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicationRepo) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	args := m.Called(ctx, studentID)
	return args.Int(0), args.Error(1)
}

func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int64, expectedStatus, status string, remarks *string, placement *domain.PlacementUpdate) error {
	return m.Called(ctx, id, expectedStatus, status, remarks, placement).Error(0)
}

func (m *MockApplicationRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApplicationRepo) CountByStatus(ctx context.Context, batchYear int) (map[string]int64, error) {
	args := m.Called(ctx, batchYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) GetByOwnerID(ctx context.Context, ownerID string) (*domain.Company, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) List(ctx context.Context, search, status string, page domain.Page) ([]domain.Company, int64, error) {
	args := m.Called(ctx, search, status, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCompanyRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) Get(ctx context.Context) (*domain.SystemSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemSettings), args.Error(1)
}

func (m *MockSettingsRepo) Upsert(ctx context.Context, s *domain.SystemSettings) error {
	return m.Called(ctx, s).Error(0)
}

type MockDriveRepo struct {
	mock.Mock
}

func (m *MockDriveRepo) Create(ctx context.Context, d *domain.CampusDrive) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDriveRepo) GetByID(ctx context.Context, id int64) (*domain.CampusDrive, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CampusDrive), args.Error(1)
}

func (m *MockDriveRepo) List(ctx context.Context, f domain.DriveFilter, now time.Time) ([]domain.CampusDrive, int64, error) {
	args := m.Called(ctx, f, now)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.CampusDrive), args.Get(1).(int64), args.Error(2)
}

func (m *MockDriveRepo) Update(ctx context.Context, d *domain.CampusDrive) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDriveRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockDriveRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDriveRepo) Register(ctx context.Context, driveID, studentID int64) error {
	return m.Called(ctx, driveID, studentID).Error(0)
}

func (m *MockDriveRepo) Unregister(ctx context.Context, driveID, studentID int64) error {
	return m.Called(ctx, driveID, studentID).Error(0)
}

func (m *MockDriveRepo) IsRegistered(ctx context.Context, driveID, studentID int64) (bool, error) {
	args := m.Called(ctx, driveID, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriveRepo) ListRegistrations(ctx context.Context, driveID int64) ([]domain.DriveRegistration, error) {
	args := m.Called(ctx, driveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DriveRegistration), args.Error(1)
}

func (m *MockDriveRepo) StartingBetween(ctx context.Context, from, to time.Time) ([]domain.CampusDrive, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CampusDrive), args.Error(1)
}

type MockAttendanceRepo struct {
	mock.Mock
}

func (m *MockAttendanceRepo) Upsert(ctx context.Context, records []domain.AttendanceRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockAttendanceRepo) List(ctx context.Context, date time.Time, driveID *int64) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, date, driveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceRepo) DailyStats(ctx context.Context, date time.Time) (*domain.AttendanceStats, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttendanceStats), args.Error(1)
}

func (m *MockAttendanceRepo) StudentSummary(ctx context.Context, studentID int64) (*domain.StudentAttendanceSummary, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentAttendanceSummary), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) List(ctx context.Context, role string, page domain.Page) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, role, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepo) ListIDsByRole(ctx context.Context, role string) ([]string, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProfileRepo) UpdateOwn(ctx context.Context, id, fullName string, avatarURL *string) (*domain.Profile, error) {
	args := m.Called(ctx, id, fullName, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) SetRole(ctx context.Context, id, role string) (*domain.Profile, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.Profile, error) {
	args := m.Called(ctx, id, disabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) CountByRole(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

type MockAnalyticsRepo struct {
	mock.Mock
}

func (m *MockAnalyticsRepo) Counts(ctx context.Context, now time.Time) (*domain.Counts, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counts), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, profileID, typ, title, message string, link *string) error {
	return m.Called(ctx, profileID, typ, title, message, link).Error(0)
}

// recordingPublisher keeps every published event for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) tables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Table+":"+ev.Type)
	}
	return out
}

func strPtr(s string) *string   { return &s }
func int64Ptr(v int64) *int64   { return &v }
func f64Ptr(v float64) *float64 { return &v }

var (
	studentActor   = domain.Actor{ID: "student-1", Role: domain.RoleStudent}
	recruiterActor = domain.Actor{ID: "recruiter-1", Role: domain.RoleRecruiter}
	adminActor     = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepo) CreateMany(ctx context.Context, ns []domain.Notification) (int64, error) {
	args := m.Called(ctx, ns)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) List(ctx context.Context, profileID string, unreadOnly bool, page domain.Page) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, profileID, unreadOnly, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepo) UnreadCount(ctx context.Context, profileID string) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(ctx context.Context, profileID, id string) error {
	return m.Called(ctx, profileID, id).Error(0)
}

func (m *MockNotificationRepo) MarkAllRead(ctx context.Context, profileID string) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, profileID, id string) error {
	return m.Called(ctx, profileID, id).Error(0)
}

func (m *MockNotificationRepo) DeleteAll(ctx context.Context, profileID string) (int64, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) PurgeReadBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
