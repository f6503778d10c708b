package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// manifest mirrors data/courses.json. JSON is valid YAML, so one decoder
// reads both formats.
type manifest struct {
	Courses []manifestCourse `yaml:"courses"`
}

type manifestCourse struct {
	ID          string           `yaml:"id"`
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Category    string           `yaml:"category"`
	Level       string           `yaml:"level"`
	Lessons     int              `yaml:"lessons"`
	LessonsData []manifestLesson `yaml:"lessonsData"`
}

type manifestLesson struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Order int    `yaml:"order"`
}

// FileCatalog serves courses from a manifest file held in memory.
type FileCatalog struct {
	path string
	log  *logger.Logger

	mu      sync.RWMutex
	courses map[string]domain.Course
}

func NewFileCatalog(path string, log *logger.Logger) (*FileCatalog, error) {
	c := &FileCatalog{path: path, log: log.With("component", "FileCatalog")}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileCatalog) ResolveCourse(_ context.Context, courseID string) (*domain.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	course, ok := c.courses[courseID]
	if !ok {
		return nil, nil
	}
	course.LessonIDs = append([]string(nil), course.LessonIDs...)
	return &course, nil
}

// Courses returns every course in the manifest ordered by id.
func (c *FileCatalog) Courses() []domain.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Course, 0, len(c.courses))
	for _, course := range c.courses {
		course.LessonIDs = append([]string(nil), course.LessonIDs...)
		out = append(out, course)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reload re-reads the manifest. On error the previous contents stay in place.
func (c *FileCatalog) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", c.path, err)
	}
	courses, err := parseManifest(raw)
	if err != nil {
		return fmt.Errorf("parse catalog %s: %w", c.path, err)
	}
	c.mu.Lock()
	c.courses = courses
	c.mu.Unlock()
	c.log.Info("catalog loaded", "path", c.path, "courses", len(courses))
	return nil
}

// Watch reloads the manifest whenever it is rewritten, until ctx ends.
func (c *FileCatalog) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace files by rename.
	if err := w.Add(filepath.Dir(c.path)); err != nil {
		_ = w.Close()
		return err
	}
	target := filepath.Clean(c.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if err := c.Reload(); err != nil {
					c.log.Warn("catalog reload failed", "error", err)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.log.Warn("catalog watcher error", "error", err)
			}
		}
	}()
	return nil
}

func parseManifest(raw []byte) (map[string]domain.Course, error) {
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	out := make(map[string]domain.Course, len(m.Courses))
	for _, mc := range m.Courses {
		if mc.ID == "" {
			return nil, fmt.Errorf("course without id (title %q)", mc.Title)
		}
		lessons := append([]manifestLesson(nil), mc.LessonsData...)
		sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].Order < lessons[j].Order })

		course := domain.Course{ID: mc.ID, Title: mc.Title, TotalLessons: mc.Lessons}
		for _, l := range lessons {
			course.LessonIDs = append(course.LessonIDs, l.ID)
		}
		if course.TotalLessons == 0 {
			course.TotalLessons = len(course.LessonIDs)
		}
		out[mc.ID] = course
	}
	return out, nil
}
