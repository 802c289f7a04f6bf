package db

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tejzpr/audience-inbox/internal/errs"
	"github.com/tejzpr/audience-inbox/internal/logging"
)

// Open connects to the SQLite database at dsn and migrates the schema.
// ":memory:" keeps everything in process memory.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "db"))

	if err := ensureDir(dsn); err != nil {
		return nil, errs.Wrap(err, "prepare database directory")
	}

	d, err := gorm.Open(sqlite.Open(withLocking(dsn)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errs.Wrap(err, "open database")
	}

	// Every connection to an in-memory database sees its own empty database.
	if isMemory(dsn) {
		sqlDB, err := d.DB()
		if err != nil {
			return nil, errs.Wrap(err, "get sql handle")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(d); err != nil {
		return nil, err
	}
	logging.Info(logCtx, "database opened", slog.String("dsn", dsn))
	return d, nil
}

func Migrate(d *gorm.DB) error {
	if err := d.AutoMigrate(&QueryRecord{}, &TeamMemberRecord{}); err != nil {
		return errs.Wrap(err, "migrate schema")
	}
	return nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// withLocking makes transactions on file databases take the write lock at
// BEGIN and wait up to five seconds for it.
func withLocking(dsn string) string {
	if isMemory(dsn) {
		return dsn
	}
	for _, param := range []string{"_busy_timeout=5000", "_txlock=immediate"} {
		key := param[:strings.Index(param, "=")+1]
		if strings.Contains(dsn, key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + param
		} else {
			dsn += "?" + param
		}
	}
	return dsn
}

func ensureDir(dsn string) error {
	if isMemory(dsn) {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
