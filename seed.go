package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"vmxio.com/sop-cards/course"
	"vmxio.com/sop-cards/logger"
)

// SeedFromJSON stores the course found at path when the store holds nothing
// yet. The file may be in any shape; it is normalized first. It reports
// whether a document was written.
func SeedFromJSON(ctx context.Context, store Store, path string, log *logger.Logger) (bool, error) {
	exists, err := store.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check store: %w", err)
	}
	if exists {
		return false, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info("no seed file, starting with an empty course", "path", path)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	doc, repairs, err := course.NormalizeJSON(raw)
	if err != nil {
		return false, fmt.Errorf("json parse: %w", err)
	}
	logRepairs(log, repairs, "seed:"+path)
	if err := store.Save(ctx, doc); err != nil {
		return false, err
	}
	log.Info("seeded course", "path", path, "cards", len(doc.Cards))
	return true, nil
}
