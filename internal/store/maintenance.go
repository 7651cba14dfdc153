package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// Backup copies the live store file into dir under a timestamped name with a
// short random suffix, plus a .sha256 sidecar. Returns ErrSourceMissing when
// the store file is not on disk.
func (s *Store) Backup(dir string) (BackupInfo, error) {
	if _, err := s.conn(); err != nil {
		return BackupInfo{}, err
	}
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return BackupInfo{}, ErrSourceMissing
		}
		return BackupInfo{}, fmt.Errorf("stat store file: %w", err)
	}
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(filepath.Dir(s.path), "backups")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("nutrilog-%s-%s.db", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	outPath := filepath.Join(dir, name)
	if err := copyFile(s.path, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	s.log.Info("created backup", zap.String("path", outPath), zap.Int64("bytes", st.Size()))
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// Restore overwrites the live store file with the bytes of a prior backup
// and reopens the handle. The operation refuses to run when the backup is
// missing, its sidecar checksum does not match, or the backup does not pass
// a consistency check of its own, leaving the live store untouched.
func (s *Store) Restore(backupPath string) error {
	if _, err := s.conn(); err != nil {
		return err
	}
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupMissing
		}
		return fmt.Errorf("stat backup file: %w", err)
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch for %s", backupPath)
		}
	}
	if err := verifyBackupFile(backupPath); err != nil {
		return err
	}

	if err := s.closeDB(); err != nil {
		return fmt.Errorf("close store for restore: %w", err)
	}
	if err := copyFile(backupPath, s.path); err != nil {
		// Try to get back to a usable handle either way.
		reopenErr := s.reopen()
		if reopenErr != nil {
			return fmt.Errorf("restore copy failed (%v) and reopen failed: %w", err, reopenErr)
		}
		return err
	}
	if err := s.reopen(); err != nil {
		return fmt.Errorf("reopen restored store: %w", err)
	}
	s.log.Info("restored store from backup", zap.String("backup", backupPath))
	return nil
}

// ListBackups enumerates backup files in dir, newest first.
func (s *Store) ListBackups(dir string) ([]BackupInfo, error) {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(filepath.Dir(s.path), "backups")
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// IntegrityCheck runs SQLite's built-in consistency check. Detected
// corruption is reported as false, never as an error; the error return is
// for I/O failure only.
func (s *Store) IntegrityCheck() (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	return runIntegrityCheck(db)
}

func runIntegrityCheck(db *sql.DB) (bool, error) {
	rows, err := db.Query(`PRAGMA integrity_check`)
	if err != nil {
		return false, fmt.Errorf("run integrity check: %w", err)
	}
	defer rows.Close()
	ok := false
	lines := 0
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return false, fmt.Errorf("scan integrity result: %w", err)
		}
		lines++
		if lines == 1 && line == "ok" {
			ok = true
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate integrity results: %w", err)
	}
	return ok && lines == 1, nil
}

// verifyBackupFile opens the backup on a scratch connection and runs the
// consistency check against it. Restore must never swap corrupt bytes under
// the live store, sidecar or not.
func verifyBackupFile(path string) error {
	db, err := openDB(path)
	if err != nil {
		return fmt.Errorf("backup %s is not a usable database: %w", path, err)
	}
	defer db.Close()
	ok, err := runIntegrityCheck(db)
	if err != nil {
		return fmt.Errorf("backup %s is not a usable database: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("backup %s failed integrity check", path)
	}
	return nil
}

// Optimize reclaims free space and refreshes the query planner statistics.
// No semantic effect on stored data.
func (s *Store) Optimize() error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := db.Exec(`VACUUM`); err != nil {
		return fmt.Errorf("vacuum store: %w", err)
	}
	if _, err := db.Exec(`ANALYZE`); err != nil {
		return fmt.Errorf("analyze store: %w", err)
	}
	return nil
}

// CleanupCache purges derived cache rows outside a keep-window of
// retentionDays days ending today. retentionDays 0 purges everything through
// today. Food entries are never touched; a later summary transparently
// rebuilds whatever was purged.
func (s *Store) CleanupCache(retentionDays int) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	if retentionDays < 0 {
		return 0, invalidField("retention_days", "must be >= 0")
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format(dateLayout)
	res, err := db.Exec(`DELETE FROM nutrition_cache WHERE cache_date <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup cache: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read cleanup row count: %w", err)
	}
	if deleted > 0 {
		s.log.Info("purged cache rows", zap.Int64("rows", deleted), zap.String("cutoff", cutoff))
	}
	return deleted, nil
}

type DoctorReport struct {
	CheckedCacheRows int `json:"checked_cache_rows"`
	StaleCacheRows   int `json:"stale_cache_rows"`
	FixedCacheRows   int `json:"fixed_cache_rows,omitempty"`
}

// Doctor audits the derived cache against a fresh recomputation of every
// cached date and optionally repairs disagreeing rows.
func (s *Store) Doctor(fix bool) (DoctorReport, error) {
	db, err := s.conn()
	if err != nil {
		return DoctorReport{}, err
	}
	report := DoctorReport{}

	rows, err := db.Query(`SELECT cache_date, total_calories, total_protein_g, total_carbs_g, total_fat_g FROM nutrition_cache ORDER BY cache_date ASC`)
	if err != nil {
		return report, fmt.Errorf("doctor cache query: %w", err)
	}
	type cachedRow struct {
		date     string
		calories float64
		protein  float64
		carbs    float64
		fat      float64
	}
	cached := make([]cachedRow, 0)
	for rows.Next() {
		var c cachedRow
		if err := rows.Scan(&c.date, &c.calories, &c.protein, &c.carbs, &c.fat); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor cache scan: %w", err)
		}
		cached = append(cached, c)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor cache iterate: %w", err)
	}
	_ = rows.Close()

	stale := make([]string, 0)
	for _, c := range cached {
		report.CheckedCacheRows++
		fresh, err := s.computeDayTotals(db, c.date)
		if err != nil {
			return report, err
		}
		if fresh == nil ||
			fresh.TotalCalories != c.calories || fresh.TotalProteinG != c.protein ||
			fresh.TotalCarbsG != c.carbs || fresh.TotalFatG != c.fat {
			report.StaleCacheRows++
			stale = append(stale, c.date)
		}
	}

	if fix {
		for _, date := range stale {
			if err := s.RecomputeDay(date); err != nil {
				return report, fmt.Errorf("doctor fix cache row %s: %w", date, err)
			}
			report.FixedCacheRows++
		}
	}
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
