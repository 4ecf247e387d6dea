package testutil

import (
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/elimu/api/admin"
	"github.com/trezcool/elimu/api/courses"
	"github.com/trezcool/elimu/api/lessons"
	"github.com/trezcool/elimu/api/orders"
	"github.com/trezcool/elimu/api/users"
)

// Users

func (b *Backend) allUsers(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	list := make([]users.User, 0, len(b.DB.Users))
	for _, row := range b.DB.Users {
		list = append(list, row.User)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return ok(ctx, http.StatusOK, "", list)
}

func (b *Backend) userByID(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	row, found := b.DB.Users[ctx.Param("id")]
	if !found {
		return fail(ctx, http.StatusNotFound, "User not found")
	}
	return ok(ctx, http.StatusOK, "", row.User)
}

func (b *Backend) updateUser(ctx echo.Context) error {
	me := ctx.Get("user").(*UserRow)
	id := ctx.Param("id")
	if id != me.ID && !me.IsAdmin() {
		return fail(ctx, http.StatusForbidden, "Permission denied")
	}

	var in users.UpdateFields
	if err := ctx.Bind(&in); err != nil {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}

	b.DB.Lock()
	defer b.DB.Unlock()
	row, found := b.DB.Users[id]
	if !found {
		return fail(ctx, http.StatusNotFound, "User not found")
	}
	if in.Name != "" {
		row.Name = in.Name
	}
	if in.Phone.Valid {
		row.Phone = in.Phone
	}
	if in.Address.Valid {
		row.Address = in.Address
	}
	if in.Role != "" && me.IsAdmin() {
		row.Role = in.Role
	}
	if in.IsVerified != nil && me.IsAdmin() {
		row.IsVerified = *in.IsVerified
	}
	row.UpdatedAt = time.Now().UTC()
	return ok(ctx, http.StatusOK, "User updated", row.User)
}

func (b *Backend) setBlocked(ctx echo.Context, blocked bool) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	row, found := b.DB.Users[ctx.Param("id")]
	if !found {
		return fail(ctx, http.StatusNotFound, "User not found")
	}
	row.IsBlocked = blocked
	row.UpdatedAt = time.Now().UTC()
	msg := "User unblocked"
	if blocked {
		msg = "User blocked"
	}
	return ok(ctx, http.StatusOK, msg, row.User)
}

func (b *Backend) blockUser(ctx echo.Context) error   { return b.setBlocked(ctx, true) }
func (b *Backend) unblockUser(ctx echo.Context) error { return b.setBlocked(ctx, false) }

// Categories

func (b *Backend) listCategories(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	list := make([]*CategoryRow, 0, len(b.DB.Categories))
	for _, row := range b.DB.Categories {
		list = append(list, row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return ok(ctx, http.StatusOK, "", list)
}

func (b *Backend) addCategory(ctx echo.Context) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := ctx.Bind(&in); err != nil || in.Name == "" {
		return fail(ctx, http.StatusBadRequest, "Category name is required")
	}
	row := b.DB.AddCategory(in.Name)
	return ok(ctx, http.StatusCreated, "Category created", row)
}

func (b *Backend) updateCategory(ctx echo.Context) error {
	var in struct {
		Name string `json:"name"`
	}
	if err := ctx.Bind(&in); err != nil || in.Name == "" {
		return fail(ctx, http.StatusBadRequest, "Category name is required")
	}
	b.DB.Lock()
	defer b.DB.Unlock()
	row, found := b.DB.Categories[ctx.Param("id")]
	if !found {
		return fail(ctx, http.StatusNotFound, "Category not found")
	}
	row.Name = in.Name
	row.Slug = Slugify(in.Name)
	row.UpdatedAt = time.Now().UTC()
	return ok(ctx, http.StatusOK, "Category updated", row)
}

func (b *Backend) deleteCategory(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	if _, found := b.DB.Categories[ctx.Param("id")]; !found {
		return fail(ctx, http.StatusNotFound, "Category not found")
	}
	delete(b.DB.Categories, ctx.Param("id"))
	return ok(ctx, http.StatusOK, "Category deleted", nil)
}

// Courses

func (b *Backend) listCourses(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	list := make([]courseDoc, 0, len(b.DB.Courses))
	for _, row := range b.DB.Courses {
		list = append(list, b.DB.courseDTO(row, false))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return ok(ctx, http.StatusOK, "", list)
}

func (b *Backend) courseBySlug(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	for _, row := range b.DB.Courses {
		if row.Slug == ctx.Param("id") {
			// detail endpoint expands the category reference
			return ok(ctx, http.StatusOK, "", b.DB.courseDTO(row, true))
		}
	}
	return fail(ctx, http.StatusNotFound, "Course not found")
}

func (b *Backend) createCourse(ctx echo.Context) error {
	var in courses.NewCourse
	if err := ctx.Bind(&in); err != nil || in.Title == "" {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}
	row := b.DB.AddCourse(in.Title, in.Level, in.CategoryID, in.Price, in.Discount.Float64)
	b.DB.Lock()
	defer b.DB.Unlock()
	return ok(ctx, http.StatusCreated, "Course created", b.DB.courseDTO(row, false))
}

func (b *Backend) updateCourse(ctx echo.Context) error {
	var in courses.UpdateCourse
	if err := ctx.Bind(&in); err != nil {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}
	b.DB.Lock()
	defer b.DB.Unlock()
	row, found := b.DB.Courses[ctx.Param("id")]
	if !found {
		return fail(ctx, http.StatusNotFound, "Course not found")
	}
	if in.Title != "" {
		row.Title = in.Title
		row.Slug = Slugify(in.Title)
	}
	if in.Price != nil {
		row.Price = *in.Price
	}
	if in.Discount.Valid {
		row.Discount = in.Discount.Float64
	}
	if in.Level != "" {
		row.Level = in.Level
	}
	if in.CategoryID != "" {
		row.CategoryID = in.CategoryID
	}
	if in.Thumbnail != "" {
		row.Thumbnail = in.Thumbnail
	}
	return ok(ctx, http.StatusOK, "Course updated", b.DB.courseDTO(row, false))
}

func (b *Backend) deleteCourse(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	if _, found := b.DB.Courses[ctx.Param("id")]; !found {
		return fail(ctx, http.StatusNotFound, "Course not found")
	}
	delete(b.DB.Courses, ctx.Param("id"))
	return ok(ctx, http.StatusOK, "Course deleted", nil)
}

// Lessons

func (b *Backend) listLessons(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	list := make([]*lessons.Lesson, 0, len(b.DB.Lessons))
	for _, row := range b.DB.Lessons {
		list = append(list, row)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return ok(ctx, http.StatusOK, "", list)
}

func (b *Backend) lessonsByCourse(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	list := make([]*lessons.Lesson, 0)
	for _, row := range b.DB.Lessons {
		if row.CourseID == ctx.Param("courseId") {
			list = append(list, row)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	return ok(ctx, http.StatusOK, "", list)
}

func (b *Backend) createLesson(ctx echo.Context) error {
	var in lessons.NewLesson
	if err := ctx.Bind(&in); err != nil || in.Title == "" || in.CourseID == "" {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}
	row := b.DB.AddLesson(in.CourseID, in.Title, in.VideoURL, in.Order)
	return ok(ctx, http.StatusCreated, "Lesson created", row)
}

func (b *Backend) updateLesson(ctx echo.Context) error {
	var in lessons.UpdateLesson
	if err := ctx.Bind(&in); err != nil {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}
	b.DB.Lock()
	defer b.DB.Unlock()
	row, found := b.DB.Lessons[ctx.Param("id")]
	if !found {
		return fail(ctx, http.StatusNotFound, "Lesson not found")
	}
	if in.Title != "" {
		row.Title = in.Title
	}
	if in.VideoURL != "" {
		row.VideoURL = in.VideoURL
	}
	if in.Duration.Valid {
		row.Duration = in.Duration
	}
	if in.Resources != nil {
		row.Resources = in.Resources
	}
	if in.Order != nil {
		row.Order = *in.Order
	}
	row.UpdatedAt = time.Now().UTC()
	return ok(ctx, http.StatusOK, "Lesson updated", row)
}

func (b *Backend) deleteLesson(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()
	if _, found := b.DB.Lessons[ctx.Param("id")]; !found {
		return fail(ctx, http.StatusNotFound, "Lesson not found")
	}
	delete(b.DB.Lessons, ctx.Param("id"))
	return ok(ctx, http.StatusOK, "Lesson deleted", nil)
}

// Orders

func (b *Backend) enroll(ctx echo.Context) error {
	me := ctx.Get("user").(*UserRow)
	b.DB.Lock()
	row, found := b.DB.Courses[ctx.Param("courseId")]
	if !found {
		b.DB.Unlock()
		return fail(ctx, http.StatusNotFound, "Course not found")
	}
	for _, ord := range b.DB.Orders {
		if ord.UserID == me.ID && ord.CourseID == row.ID {
			b.DB.Unlock()
			return fail(ctx, http.StatusConflict, "Already enrolled")
		}
	}
	b.DB.Unlock()

	ord := b.DB.AddOrder(me.ID, row.ID, row.Price-row.Discount)
	return ok(ctx, http.StatusOK, "Enrollment initialized", orders.Enrollment{
		PaymentURL: "https://pay.example.com/checkout/" + ord.ID,
	})
}

func (b *Backend) myCourses(ctx echo.Context) error {
	me := ctx.Get("user").(*UserRow)
	b.DB.Lock()
	defer b.DB.Unlock()
	list := make([]enrollmentDoc, 0)
	for _, ord := range b.DB.Orders {
		if ord.UserID != me.ID {
			continue
		}
		row, found := b.DB.Courses[ord.CourseID]
		if !found {
			continue
		}
		list = append(list, enrollmentDoc{
			ID:        ord.ID,
			Course:    b.DB.courseDTO(row, true),
			Status:    ord.Status,
			CreatedAt: ord.CreatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return ok(ctx, http.StatusOK, "", list)
}

// Admin analytics

func (b *Backend) dashboardStats(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()

	stats := admin.DashboardStats{
		TotalUsers:        len(b.DB.Users),
		TotalCourses:      len(b.DB.Courses),
		TotalLessons:      len(b.DB.Lessons),
		TotalCategories:   len(b.DB.Categories),
		MonthlyRevenue:    []admin.MonthlyRevenue{},
		CoursesByCategory: []admin.CategoryCount{},
		RecentEnrollments: []admin.RecentEnrollment{},
	}
	for _, row := range b.DB.Users {
		if row.IsBlocked {
			stats.BlockedUsers++
		} else {
			stats.ActiveUsers++
		}
		if row.IsVerified {
			stats.VerifiedUsers++
		}
	}
	byCat := make(map[string]int)
	for _, row := range b.DB.Courses {
		byCat[row.CategoryID]++
	}
	for catID, count := range byCat {
		name := catID
		if cat, found := b.DB.Categories[catID]; found {
			name = cat.Name
		}
		stats.CoursesByCategory = append(stats.CoursesByCategory, admin.CategoryCount{Category: name, Count: count})
	}
	for _, ord := range b.DB.Orders {
		stats.TotalRevenue += ord.Amount
	}
	return ok(ctx, http.StatusOK, "", stats)
}

func (b *Backend) earnings(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()

	data := admin.EarningsData{Orders: []admin.Order{}}
	for _, ord := range b.DB.Orders {
		data.TotalRevenue += ord.Amount
		entry := admin.Order{ID: ord.ID, Status: ord.Status, CreatedAt: ord.CreatedAt}
		if row, found := b.DB.Courses[ord.CourseID]; found {
			entry.Course = admin.OrderCourse{ID: row.ID, Title: row.Title, Price: row.Price}
		}
		data.Orders = append(data.Orders, entry)
	}
	sort.Slice(data.Orders, func(i, j int) bool { return data.Orders[i].ID < data.Orders[j].ID })
	return ok(ctx, http.StatusOK, "", data)
}

func (b *Backend) topCourses(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()

	counts := make(map[string]*admin.TopCourse)
	for _, ord := range b.DB.Orders {
		top, found := counts[ord.CourseID]
		if !found {
			top = &admin.TopCourse{ID: ord.CourseID}
			if row, ok := b.DB.Courses[ord.CourseID]; ok {
				top.Title = row.Title
				top.Price = row.Price
			}
			counts[ord.CourseID] = top
		}
		top.StudentCount++
		top.TotalRevenue += ord.Amount
	}
	list := make([]admin.TopCourse, 0, len(counts))
	for _, top := range counts {
		list = append(list, *top)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StudentCount > list[j].StudentCount })
	return ok(ctx, http.StatusOK, "", list)
}

func (b *Backend) userAnalytics(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()

	stats := admin.UserAnalytics{RegistrationTrend: []admin.RegistrationTrend{}}
	for _, row := range b.DB.Users {
		stats.Total++
		if row.IsBlocked {
			stats.Blocked++
		} else {
			stats.Active++
		}
		if row.IsVerified {
			stats.Verified++
		}
		if row.IsAdmin() {
			stats.Admins++
		}
	}
	return ok(ctx, http.StatusOK, "", stats)
}

func (b *Backend) courseAnalytics(ctx echo.Context) error {
	b.DB.Lock()
	defer b.DB.Unlock()

	stats := admin.CourseAnalytics{
		Total:         len(b.DB.Courses),
		TotalLessons:  len(b.DB.Lessons),
		CreationTrend: []admin.CreationTrend{},
	}
	for _, row := range b.DB.Courses {
		switch row.Level {
		case courses.LevelBeginner:
			stats.ByLevel.Beginner++
		case courses.LevelIntermediate:
			stats.ByLevel.Intermediate++
		case courses.LevelAdvanced:
			stats.ByLevel.Advanced++
		}
	}
	if stats.Total > 0 {
		stats.AverageLessonsPerCourse = float64(stats.TotalLessons) / float64(stats.Total)
	}
	return ok(ctx, http.StatusOK, "", stats)
}
