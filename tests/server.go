// Package testutil hosts the shared test fixtures: an in-process
// backend faithful to the real API (routes, envelope, cookie session,
// error payloads) with per-route hit counters so tests can assert on
// network traffic.
package testutil

import (
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookie = "access_token"
	// BlockedAccountMessage is the message contract the client matches on.
	BlockedAccountMessage = "The user has been blocked"
)

var jwtSecret = []byte("sekrit")

type (
	// Backend is the in-process API server used by the SDK tests.
	Backend struct {
		DB  *DB
		app *echo.Echo

		mu   sync.Mutex
		hits map[string]int
	}

	envelope struct {
		StatusCode int         `json:"statusCode"`
		Success    bool        `json:"success"`
		Message    string      `json:"message,omitempty"`
		Data       interface{} `json:"data,omitempty"`
	}

	sessionClaims struct {
		jwt.StandardClaims
		Role string `json:"role"`
	}
)

func NewBackend() *Backend {
	b := &Backend{
		DB:   NewDB(),
		app:  echo.New(),
		hits: make(map[string]int),
	}
	b.setup()
	return b
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.app.ServeHTTP(w, r)
}

// Hits reports how many requests matched the route, e.g. "GET /course".
func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

// ResetHits clears the counters, typically between test phases.
func (b *Backend) ResetHits() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits = make(map[string]int)
}

func (b *Backend) setup() {
	b.app.Logger.SetLevel(log.OFF)
	b.app.Pre(middleware.RemoveTrailingSlash())
	b.app.Use(b.countHits)

	b.app.POST("/auth/login", b.login)
	b.app.POST("/auth/register", b.register)
	b.app.POST("/auth/logout", b.logout)

	ug := b.app.Group("/users", b.requireAuth)
	ug.GET("/me", b.me)
	ug.GET("/all-users", b.allUsers, b.requireAdmin)
	ug.GET("/:id", b.userByID, b.requireAdmin)
	ug.PATCH("/block/:id", b.blockUser, b.requireAdmin)
	ug.PATCH("/unblock/:id", b.unblockUser, b.requireAdmin)
	ug.PATCH("/:id", b.updateUser)

	// public reads share prefixes with the admin writes below, so the
	// writes carry route-level middleware; a Group on the same prefix
	// would shadow the public routes with its catch-all handlers
	b.app.GET("/category", b.listCategories)
	b.app.POST("/category", b.addCategory, b.requireAuth, b.requireAdmin)
	b.app.PATCH("/category/:id", b.updateCategory, b.requireAuth, b.requireAdmin)
	b.app.DELETE("/category/:id", b.deleteCategory, b.requireAuth, b.requireAdmin)

	b.app.GET("/course", b.listCourses)
	b.app.GET("/course/:id", b.courseBySlug)
	b.app.POST("/course", b.createCourse, b.requireAuth, b.requireAdmin)
	b.app.PATCH("/course/:id", b.updateCourse, b.requireAuth, b.requireAdmin)
	b.app.DELETE("/course/:id", b.deleteCourse, b.requireAuth, b.requireAdmin)

	b.app.GET("/lessons", b.listLessons)
	b.app.GET("/lessons/by-course/:courseId", b.lessonsByCourse)
	b.app.POST("/lessons", b.createLesson, b.requireAuth, b.requireAdmin)
	b.app.PATCH("/lessons/:id", b.updateLesson, b.requireAuth, b.requireAdmin)
	b.app.DELETE("/lessons/:id", b.deleteLesson, b.requireAuth, b.requireAdmin)

	og := b.app.Group("/orders", b.requireAuth)
	og.POST("/enroll/:courseId", b.enroll)
	og.GET("/my-courses", b.myCourses)

	ag := b.app.Group("/admin", b.requireAuth, b.requireAdmin)
	ag.GET("/dashboard-stats", b.dashboardStats)
	ag.GET("/earnings", b.earnings)
	ag.GET("/top-courses", b.topCourses)
	ag.GET("/user-analytics", b.userAnalytics)
	ag.GET("/course-analytics", b.courseAnalytics)
}

func (b *Backend) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		err := next(ctx)
		b.mu.Lock()
		b.hits[ctx.Request().Method+" "+ctx.Path()]++
		b.mu.Unlock()
		return err
	}
}

func ok(ctx echo.Context, code int, msg string, data interface{}) error {
	return ctx.JSON(code, envelope{StatusCode: code, Success: true, Message: msg, Data: data})
}

func fail(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, envelope{StatusCode: code, Success: false, Message: msg})
}

// Auth plumbing

func (b *Backend) issueCookie(ctx echo.Context, row *UserRow) error {
	claims := &sessionClaims{
		StandardClaims: jwt.StandardClaims{
			Subject:   row.ID,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		Role: row.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	return nil
}

func (b *Backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			return fail(ctx, http.StatusUnauthorized, "You are not authorized")
		}
		claims := new(sessionClaims)
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(*jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			return fail(ctx, http.StatusUnauthorized, "You are not authorized")
		}

		b.DB.Lock()
		row, found := b.DB.Users[claims.Subject]
		b.DB.Unlock()
		if !found {
			return fail(ctx, http.StatusUnauthorized, "You are not authorized")
		}
		if row.IsBlocked {
			return fail(ctx, http.StatusForbidden, BlockedAccountMessage)
		}
		ctx.Set("user", row)
		return next(ctx)
	}
}

func (b *Backend) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		row := ctx.Get("user").(*UserRow)
		if !row.IsAdmin() {
			return fail(ctx, http.StatusForbidden, "Permission denied")
		}
		return next(ctx)
	}
}

func (b *Backend) login(ctx echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&in); err != nil {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}
	row, found := b.DB.UserByEmail(in.Email)
	if !found {
		return fail(ctx, http.StatusBadRequest, "Invalid credentials")
	}
	if row.IsBlocked {
		return fail(ctx, http.StatusForbidden, BlockedAccountMessage)
	}
	if bcrypt.CompareHashAndPassword(row.PasswordHash, []byte(in.Password)) != nil {
		return fail(ctx, http.StatusBadRequest, "Invalid credentials")
	}
	if err := b.issueCookie(ctx, row); err != nil {
		return fail(ctx, http.StatusInternalServerError, "Could not create session")
	}
	return ok(ctx, http.StatusOK, "Login successful", row.User)
}

func (b *Backend) register(ctx echo.Context) error {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Address  string `json:"address"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&in); err != nil {
		return fail(ctx, http.StatusBadRequest, "Invalid payload")
	}
	if _, exists := b.DB.UserByEmail(in.Email); exists {
		return fail(ctx, http.StatusConflict, "A user with this email already exists")
	}
	row := b.DB.AddUser(in.Name, in.Email, in.Password, "user", false)
	return ok(ctx, http.StatusCreated, "Registration successful", row.User)
}

func (b *Backend) logout(ctx echo.Context) error {
	ctx.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	return ok(ctx, http.StatusOK, "Logged out", nil)
}

func (b *Backend) me(ctx echo.Context) error {
	row := ctx.Get("user").(*UserRow)
	return ok(ctx, http.StatusOK, "", row.User)
}
