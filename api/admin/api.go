// Package admin declares the read-only analytics endpoints of the
// admin dashboard.
package admin

import (
	"net/http"
	"time"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/cache"
)

type (
	// DashboardStats is the aggregate snapshot of the whole platform.
	DashboardStats struct {
		TotalUsers      int     `json:"totalUsers"`
		TotalCourses    int     `json:"totalCourses"`
		TotalLessons    int     `json:"totalLessons"`
		TotalCategories int     `json:"totalCategories"`
		ActiveUsers     int     `json:"activeUsers"`
		BlockedUsers    int     `json:"blockedUsers"`
		VerifiedUsers   int     `json:"verifiedUsers"`
		TotalRevenue    float64 `json:"totalRevenue"`

		MonthlyRevenue    []MonthlyRevenue   `json:"monthlyRevenue"`
		CoursesByCategory []CategoryCount    `json:"coursesByCategory"`
		RecentEnrollments []RecentEnrollment `json:"recentEnrollments"`
	}

	MonthlyRevenue struct {
		Month       string  `json:"month"`
		Revenue     float64 `json:"revenue"`
		Enrollments int     `json:"enrollments"`
	}

	CategoryCount struct {
		Category string `json:"category"`
		Count    int    `json:"count"`
	}

	RecentEnrollment struct {
		ID        string    `json:"_id"`
		User      string    `json:"user"`
		Course    string    `json:"course"`
		Amount    float64   `json:"amount"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// EarningsData lists paid orders with their running total.
	EarningsData struct {
		TotalRevenue float64 `json:"totalRevenue"`
		Orders       []Order `json:"orders"`
	}

	Order struct {
		ID        string      `json:"_id"`
		Course    OrderCourse `json:"course"`
		Status    string      `json:"status"`
		CreatedAt time.Time   `json:"createdAt"`
		UpdatedAt time.Time   `json:"updatedAt"`
	}

	OrderCourse struct {
		ID    string  `json:"_id"`
		Title string  `json:"title"`
		Price float64 `json:"price"`
	}

	TopCourse struct {
		ID            string  `json:"_id"`
		Title         string  `json:"title,omitempty"`
		Price         float64 `json:"price,omitempty"`
		StudentCount  int     `json:"studentCount"`
		TotalRevenue  float64 `json:"totalRevenue,omitempty"`
		AverageRating float64 `json:"averageRating,omitempty"`
	}

	UserAnalytics struct {
		Total             int                 `json:"total"`
		Active            int                 `json:"active"`
		Blocked           int                 `json:"blocked"`
		Verified          int                 `json:"verified"`
		Admins            int                 `json:"admins"`
		RegistrationTrend []RegistrationTrend `json:"registrationTrend"`
	}

	RegistrationTrend struct {
		Month    string `json:"month"`
		Users    int    `json:"users"`
		Active   int    `json:"active"`
		Verified int    `json:"verified"`
	}

	CourseAnalytics struct {
		Total                   int             `json:"total"`
		ByLevel                 CoursesByLevel  `json:"byLevel"`
		TotalLessons            int             `json:"totalLessons"`
		AverageLessonsPerCourse float64         `json:"averageLessonsPerCourse"`
		CreationTrend           []CreationTrend `json:"creationTrend"`
	}

	CoursesByLevel struct {
		Beginner     int `json:"beginner"`
		Intermediate int `json:"intermediate"`
		Advanced     int `json:"advanced"`
	}

	CreationTrend struct {
		Month   string `json:"month"`
		Courses int    `json:"courses"`
		Lessons int    `json:"lessons"`
	}
)

var (
	Stats = api.Query{
		Name:     "admin.dashboardStats",
		Provides: []cache.Tag{cache.TagAdmin, cache.TagUser, cache.TagCourse, cache.TagLesson},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/admin/dashboard-stats"}, nil
		},
	}

	Earnings = api.Query{
		Name:     "admin.earnings",
		Provides: []cache.Tag{cache.TagAdmin},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/admin/earnings"}, nil
		},
	}

	TopCourses = api.Query{
		Name:     "admin.topCourses",
		Provides: []cache.Tag{cache.TagAdmin},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/admin/top-courses"}, nil
		},
	}

	UserStats = api.Query{
		Name:     "admin.userAnalytics",
		Provides: []cache.Tag{cache.TagAdmin, cache.TagUser},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/admin/user-analytics"}, nil
		},
	}

	CourseStats = api.Query{
		Name:     "admin.courseAnalytics",
		Provides: []cache.Tag{cache.TagAdmin, cache.TagCourse, cache.TagLesson},
		Build: func(interface{}) (api.Descriptor, error) {
			return api.Descriptor{Method: http.MethodGet, Path: "/admin/course-analytics"}, nil
		},
	}
)
