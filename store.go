package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vmxio.com/sop-cards/course"
	"vmxio.com/sop-cards/logger"
)

// Store persists the single course document. Load never fails: anything
// unreadable comes back as the empty course. Save replaces the whole document.
type Store interface {
	Load(ctx context.Context) course.Course
	Save(ctx context.Context, c course.Course) error
	Exists(ctx context.Context) (bool, error)
}

func NewStore(cfg Config, log *logger.Logger) (Store, error) {
	if cfg.StoreDriver == "file" {
		return NewFileStore(cfg.DataFile, log), nil
	}
	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return NewSQLStore(db, cfg.DocumentName, log), nil
}

// decodeDocument normalizes stored bytes and reports every repair.
func decodeDocument(data []byte, source string, log *logger.Logger) course.Course {
	c, repairs, err := course.NormalizeJSON(data)
	if err != nil {
		log.Warn("stored course is not valid JSON, starting empty", "source", source, "error", err)
		return course.Empty()
	}
	logRepairs(log, repairs, source)
	return c
}

func logRepairs(log *logger.Logger, repairs []course.Repair, source string) {
	for _, r := range repairs {
		log.Warn("course repaired", "source", source, "card_index", r.Card, "field", r.Field, "repair", r.Reason)
	}
}

/*** SQL ***/

type SQLStore struct {
	db   *gorm.DB
	name string
	log  *logger.Logger
}

func NewSQLStore(db *gorm.DB, name string, log *logger.Logger) *SQLStore {
	return &SQLStore{db: db, name: name, log: log}
}

func (s *SQLStore) Load(ctx context.Context) course.Course {
	var doc CourseDocument
	err := s.db.WithContext(ctx).First(&doc, "name = ?", s.name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return course.Empty()
	}
	if err != nil {
		s.log.Warn("load course failed, starting empty", "document", s.name, "error", err)
		return course.Empty()
	}
	return decodeDocument(doc.Body, "db:"+s.name, s.log)
}

// Save upserts the document row in one statement.
func (s *SQLStore) Save(ctx context.Context, c course.Course) error {
	body, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode course: %w", err)
	}
	doc := CourseDocument{Name: s.name, Body: datatypes.JSON(body)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("save course %q: %w", s.name, err)
	}
	return nil
}

func (s *SQLStore) Exists(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&CourseDocument{}).Where("name = ?", s.name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

/*** File ***/

// FileStore keeps the document in one pretty-printed JSON file.
type FileStore struct {
	path string
	log  *logger.Logger
	mu   sync.Mutex
}

func NewFileStore(path string, log *logger.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Load(ctx context.Context) course.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return course.Empty()
	}
	if err != nil {
		s.log.Warn("read course file failed, starting empty", "path", s.path, "error", err)
		return course.Empty()
	}
	return decodeDocument(data, "file:"+s.path, s.log)
}

// Save writes a temp file next to the target and renames it over the old
// one, so readers see either the old or the new document.
func (s *FileStore) Save(ctx context.Context, c course.Course) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode course: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
