package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"placement-backend/internal/domain"
	"placement-backend/pkg/cache"
)

const dashboardCacheKey = "analytics:dashboard"

type analyticsUsecase struct {
	repo       domain.AnalyticsRepository
	apps       domain.ApplicationRepository
	profiles   domain.ProfileRepository
	students   domain.StudentRepository
	attendance domain.AttendanceRepository
	presence   domain.PresenceTracker
	cache      cache.Cache
	ttl        time.Duration
	now        func() time.Time
}

func NewAnalyticsUsecase(
	repo domain.AnalyticsRepository,
	apps domain.ApplicationRepository,
	profiles domain.ProfileRepository,
	students domain.StudentRepository,
	attendance domain.AttendanceRepository,
	presence domain.PresenceTracker,
	c cache.Cache,
	ttl time.Duration,
) domain.AnalyticsUsecase {
	return &analyticsUsecase{
		repo:       repo,
		apps:       apps,
		profiles:   profiles,
		students:   students,
		attendance: attendance,
		presence:   presence,
		cache:      c,
		ttl:        ttl,
		now:        time.Now,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percent returns part/total*100 rounded to two decimals, 0 when total is 0.
func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(total))
}

func (u *analyticsUsecase) GetDashboardStats(ctx context.Context, actor domain.Actor) (*domain.DashboardStats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var cached domain.DashboardStats
	if err := cache.GetJSON(ctx, u.cache, dashboardCacheKey, &cached); err == nil {
		return &cached, nil
	}

	now := u.now()
	counts, err := u.repo.Counts(ctx, now)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.apps.CountByStatus(ctx, 0)
	if err != nil {
		return nil, err
	}
	byRole, err := u.profiles.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalStudents:        counts.TotalStudents,
		PlacedStudents:       counts.PlacedStudents,
		PlacementRate:        percent(counts.PlacedStudents, counts.TotalStudents),
		TotalCompanies:       counts.TotalCompanies,
		OpenJobs:             counts.OpenJobs,
		TotalApplications:    counts.TotalApplications,
		ApplicationsByStatus: byStatus,
		UpcomingDrives:       counts.UpcomingDrives,
		ProfilesByRole:       byRole,
		GeneratedAt:          now.UTC(),
	}

	// Attendance and presence are best effort.
	if att, err := u.attendance.DailyStats(ctx, today(now)); err == nil {
		stats.TodayAttendance = att
	} else {
		logWarn("dashboard attendance stats failed", err)
	}
	if u.presence != nil {
		if active, err := u.presence.ActiveUsers(ctx); err == nil {
			stats.ActiveUsers = active
		} else {
			logWarn("dashboard active users failed", err)
		}
	}

	if err := cache.SetJSON(ctx, u.cache, dashboardCacheKey, stats, u.ttl); err != nil {
		logWarn("cache dashboard stats failed", err)
	}
	return stats, nil
}

func (u *analyticsUsecase) InvalidateDashboard(ctx context.Context) {
	if err := u.cache.Delete(ctx, dashboardCacheKey); err != nil {
		logWarn("invalidate dashboard cache failed", err)
	}
}

// dashboardTables are the tables whose rows feed DashboardStats.
var dashboardTables = map[string]bool{
	domain.TableStudents:     true,
	domain.TableCompanies:    true,
	domain.TableJobs:         true,
	domain.TableApplications: true,
	domain.TableDrives:       true,
	domain.TableAttendance:   true,
}

type invalidatingPublisher struct {
	next      domain.EventPublisher
	analytics domain.AnalyticsUsecase
}

// NewInvalidatingPublisher drops the cached dashboard on every change to a table it counts,
// then forwards the event to next.
func NewInvalidatingPublisher(next domain.EventPublisher, analytics domain.AnalyticsUsecase) domain.EventPublisher {
	return &invalidatingPublisher{next: next, analytics: analytics}
}

func (p *invalidatingPublisher) Publish(ctx context.Context, ev domain.ChangeEvent) {
	if dashboardTables[ev.Table] {
		p.analytics.InvalidateDashboard(ctx)
	}
	if p.next != nil {
		p.next.Publish(ctx, ev)
	}
}

func (u *analyticsUsecase) GetPlacementAnalytics(ctx context.Context, actor domain.Actor, batchYear int) (*domain.PlacementAnalytics, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	students, err := u.students.ListForAnalytics(ctx, batchYear, nil)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.apps.CountByStatus(ctx, batchYear)
	if err != nil {
		return nil, err
	}
	return ComputePlacementAnalytics(students, byStatus, batchYear), nil
}

// ComputePlacementAnalytics aggregates placement figures over already-fetched students.
func ComputePlacementAnalytics(students []domain.Student, applicationsByStatus map[string]int64, batchYear int) *domain.PlacementAnalytics {
	a := &domain.PlacementAnalytics{
		BatchYear:            batchYear,
		TotalStudents:        len(students),
		ByDepartment:         []domain.DepartmentStats{},
		TopCompanies:         []domain.CompanyHires{},
		ApplicationsByStatus: applicationsByStatus,
	}
	if a.ApplicationsByStatus == nil {
		a.ApplicationsByStatus = map[string]int64{}
	}

	type deptAcc struct {
		total, placed int
		packageSum    float64
		packaged      int
	}
	depts := map[string]*deptAcc{}
	hires := map[int64]*domain.CompanyHires{}
	var packages []float64
	var cgpaSum float64

	for i := range students {
		s := &students[i]
		cgpaSum += s.CGPA

		d := depts[s.Department]
		if d == nil {
			d = &deptAcc{}
			depts[s.Department] = d
		}
		d.total++
		if !s.IsPlaced {
			continue
		}
		a.PlacedStudents++
		d.placed++
		if s.PackageLPA != nil {
			packages = append(packages, *s.PackageLPA)
			d.packageSum += *s.PackageLPA
			d.packaged++
		}
		if s.PlacedCompanyID != nil {
			h := hires[*s.PlacedCompanyID]
			if h == nil {
				h = &domain.CompanyHires{CompanyID: *s.PlacedCompanyID}
				if s.PlacedCompanyName != nil {
					h.CompanyName = *s.PlacedCompanyName
				}
				hires[*s.PlacedCompanyID] = h
			}
			h.Hires++
		}
	}

	a.PlacementRate = percent(int64(a.PlacedStudents), int64(a.TotalStudents))
	if a.TotalStudents > 0 {
		a.AverageCGPA = round2(cgpaSum / float64(a.TotalStudents))
	}
	if len(packages) > 0 {
		sort.Float64s(packages)
		var sum float64
		for _, p := range packages {
			sum += p
		}
		a.AveragePackage = round2(sum / float64(len(packages)))
		a.HighestPackage = packages[len(packages)-1]
		mid := len(packages) / 2
		if len(packages)%2 == 0 {
			a.MedianPackage = round2((packages[mid-1] + packages[mid]) / 2)
		} else {
			a.MedianPackage = packages[mid]
		}
	}

	for name, d := range depts {
		ds := domain.DepartmentStats{
			Department:    name,
			Total:         d.total,
			Placed:        d.placed,
			PlacementRate: percent(int64(d.placed), int64(d.total)),
		}
		if d.packaged > 0 {
			ds.AveragePackage = round2(d.packageSum / float64(d.packaged))
		}
		a.ByDepartment = append(a.ByDepartment, ds)
	}
	sort.Slice(a.ByDepartment, func(i, j int) bool {
		return a.ByDepartment[i].Department < a.ByDepartment[j].Department
	})

	for _, h := range hires {
		a.TopCompanies = append(a.TopCompanies, *h)
	}
	sort.Slice(a.TopCompanies, func(i, j int) bool {
		if a.TopCompanies[i].Hires != a.TopCompanies[j].Hires {
			return a.TopCompanies[i].Hires > a.TopCompanies[j].Hires
		}
		return a.TopCompanies[i].CompanyName < a.TopCompanies[j].CompanyName
	})

	var totalApps int64
	for _, n := range a.ApplicationsByStatus {
		totalApps += n
	}
	a.ApplicationConversion = percent(a.ApplicationsByStatus[domain.ApplicationStatusAccepted], totalApps)
	return a
}
