package cache

// Tag labels a family of server resources. Queries declare the tags
// they provide; mutations declare the tags they invalidate.
type Tag string

const (
	TagUser     Tag = "USER"
	TagCourse   Tag = "COURSE"
	TagLesson   Tag = "LESSON"
	TagCategory Tag = "CATEGORY"
	TagAdmin    Tag = "ADMIN"
)

func intersects(a, b []Tag) bool {
	for _, t := range a {
		for _, u := range b {
			if t == u {
				return true
			}
		}
	}
	return false
}
