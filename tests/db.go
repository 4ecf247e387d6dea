package testutil

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/elimu/api/lessons"
	"github.com/trezcool/elimu/api/users"
)

type (
	// DB is the fixture backend's storage: plain mutex-guarded tables.
	DB struct {
		sync.Mutex
		pkCount    int
		Users      map[string]*UserRow
		Categories map[string]*CategoryRow
		Courses    map[string]*CourseRow
		Lessons    map[string]*lessons.Lesson
		Orders     map[string]*OrderRow
	}

	UserRow struct {
		users.User
		PasswordHash []byte
	}

	CategoryRow struct {
		ID        string    `json:"_id"`
		Name      string    `json:"name"`
		Slug      string    `json:"slug"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	CourseRow struct {
		ID          string
		Title       string
		Slug        string
		Description string
		Price       float64
		Discount    float64
		Level       string
		CategoryID  string
		Thumbnail   string
		CreatedAt   time.Time
	}

	OrderRow struct {
		ID        string
		UserID    string
		CourseID  string
		Status    string
		Amount    float64
		CreatedAt time.Time
	}
)

func NewDB() *DB {
	return &DB{
		Users:      make(map[string]*UserRow),
		Categories: make(map[string]*CategoryRow),
		Courses:    make(map[string]*CourseRow),
		Lessons:    make(map[string]*lessons.Lesson),
		Orders:     make(map[string]*OrderRow),
	}
}

// nextID must be called with the DB locked.
func (db *DB) nextID(prefix string) string {
	db.pkCount++
	return fmt.Sprintf("%s%d", prefix, db.pkCount)
}

// Slugify derives a URL slug the way the backend does.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}

// AddUser seeds a user with a bcrypt-hashed password.
func (db *DB) AddUser(name, email, pwd, role string, blocked bool) *UserRow {
	hash, _ := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	now := time.Now().UTC()

	db.Lock()
	defer db.Unlock()
	row := &UserRow{
		User: users.User{
			ID:         db.nextID("u"),
			Name:       name,
			Email:      email,
			Role:       role,
			IsBlocked:  blocked,
			IsVerified: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		PasswordHash: hash,
	}
	db.Users[row.ID] = row
	return row
}

func (db *DB) UserByEmail(email string) (*UserRow, bool) {
	db.Lock()
	defer db.Unlock()
	for _, row := range db.Users {
		if row.Email == email {
			return row, true
		}
	}
	return nil, false
}

func (db *DB) AddCategory(name string) *CategoryRow {
	now := time.Now().UTC()
	db.Lock()
	defer db.Unlock()
	row := &CategoryRow{
		ID:        db.nextID("cat"),
		Name:      name,
		Slug:      Slugify(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.Categories[row.ID] = row
	return row
}

func (db *DB) AddCourse(title, level, categoryID string, price, discount float64) *CourseRow {
	db.Lock()
	defer db.Unlock()
	row := &CourseRow{
		ID:         db.nextID("c"),
		Title:      title,
		Slug:       Slugify(title),
		Price:      price,
		Discount:   discount,
		Level:      level,
		CategoryID: categoryID,
		Thumbnail:  "https://cdn.example.com/thumbs/" + Slugify(title) + ".png",
		CreatedAt:  time.Now().UTC(),
	}
	db.Courses[row.ID] = row
	return row
}

func (db *DB) AddLesson(courseID, title, videoURL string, order int) *lessons.Lesson {
	now := time.Now().UTC()
	db.Lock()
	defer db.Unlock()
	row := &lessons.Lesson{
		ID:        db.nextID("l"),
		CourseID:  courseID,
		Title:     title,
		VideoURL:  videoURL,
		Duration:  null.IntFrom(10),
		Resources: []string{},
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.Lessons[row.ID] = row
	return row
}

func (db *DB) AddOrder(userID, courseID string, amount float64) *OrderRow {
	db.Lock()
	defer db.Unlock()
	row := &OrderRow{
		ID:        db.nextID("o"),
		UserID:    userID,
		CourseID:  courseID,
		Status:    "paid",
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	db.Orders[row.ID] = row
	return row
}

// courseDoc is the wire shape of a course as the server sends it.
// CategoryID holds the bare id on list endpoints and a {_id, name}
// object on detail endpoints; the fixture keeps its own struct because
// the client model normalizes the populated form back to a bare id.
type courseDoc struct {
	ID          string      `json:"_id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Discount    *float64    `json:"discount,omitempty"`
	Level       string      `json:"level"`
	CategoryID  interface{} `json:"categoryId"`
	Thumbnail   string      `json:"thumbnail"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type enrollmentDoc struct {
	ID        string    `json:"_id"`
	Course    courseDoc `json:"course"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// courseDTO renders a course row; expand controls the categoryId shape.
func (db *DB) courseDTO(row *CourseRow, expand bool) courseDoc {
	var category interface{} = row.CategoryID
	if expand {
		if cat, ok := db.Categories[row.CategoryID]; ok {
			category = map[string]string{"_id": cat.ID, "name": cat.Name}
		}
	}
	var discount *float64
	if row.Discount > 0 {
		d := row.Discount
		discount = &d
	}
	return courseDoc{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Description: row.Description,
		Price:       row.Price,
		Discount:    discount,
		Level:       row.Level,
		CategoryID:  category,
		Thumbnail:   row.Thumbnail,
		CreatedAt:   row.CreatedAt,
	}
}
