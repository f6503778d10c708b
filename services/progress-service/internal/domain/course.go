package domain

// Course is the catalog's view of a course: its title and its authoritative,
// ordered lesson list.
type Course struct {
	ID           string
	Title        string
	TotalLessons int
	LessonIDs    []string
}
