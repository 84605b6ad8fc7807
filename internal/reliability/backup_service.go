package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/saitejamanchi/rythumitra/internal/events"
	"github.com/saitejamanchi/rythumitra/internal/version"
)

const (
	archivePrefix    = "rythumitra-backup-"
	archiveTimestamp = "2006-01-02-150405"
	minBackupsToKeep = 3
)

// Snapshotter produces an atomic point-in-time copy of a database file.
type Snapshotter interface {
	VacuumInto(destPath string) error
}

// ObjectStore is the subset of the S3 client the backup service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	List(ctx context.Context, prefix string) ([]types.Object, error)
	Delete(ctx context.Context, key string) error
}

// BackupService snapshots every database, packs the copies into a tar.gz
// archive and uploads it to the object store.
type BackupService struct {
	store         ObjectStore
	sources       map[string]Snapshotter
	dataDir       string
	retentionDays int
	bus           *events.Bus
	log           zerolog.Logger
}

// RunResult summarises one completed backup run.
type RunResult struct {
	Archive    string             `json:"archive"`
	SizeBytes  int64              `json:"size_bytes"`
	Databases  []DatabaseMetadata `json:"databases"`
	Deleted    int                `json:"deleted"`
	DurationMS int64              `json:"duration_ms"`
}

// DatabaseMetadata describes a single database inside a backup archive.
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo describes an archive stored in the bucket.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

type archiveMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// NewBackupService creates the backup service. sources maps database names
// to their snapshot handles.
func NewBackupService(
	store ObjectStore,
	sources map[string]Snapshotter,
	dataDir string,
	retentionDays int,
	bus *events.Bus,
	log zerolog.Logger,
) *BackupService {
	return &BackupService{
		store:         store,
		sources:       sources,
		dataDir:       dataDir,
		retentionDays: retentionDays,
		bus:           bus,
		log:           log.With().Str("service", "backup").Logger(),
	}
}

// Run performs one full backup: snapshot, verify, archive, upload, rotate.
func (s *BackupService) Run(ctx context.Context) (*RunResult, error) {
	s.log.Info().Msg("Starting backup run")
	startTime := time.Now()

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := archiveMetadata{
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Databases: make([]DatabaseMetadata, 0, len(s.sources)),
	}

	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		dbPath := filepath.Join(stagingDir, name+".db")

		s.log.Debug().Str("database", name).Msg("Snapshotting database")
		if err := s.sources[name].VacuumInto(dbPath); err != nil {
			return nil, fmt.Errorf("failed to snapshot %s: %w", name, err)
		}

		if err := verifySnapshot(dbPath); err != nil {
			return nil, fmt.Errorf("snapshot verification failed for %s: %w", name, err)
		}

		info, err := os.Stat(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s snapshot: %w", name, err)
		}

		checksum, err := checksumFile(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to checksum %s snapshot: %w", name, err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  name + ".db",
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
	}

	metadataPath := filepath.Join(stagingDir, "backup-metadata.json")
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	archiveName := archivePrefix + time.Now().Format(archiveTimestamp) + ".tar.gz"
	archivePath := filepath.Join(stagingDir, archiveName)

	fileNames := make([]string, 0, len(names)+1)
	for _, name := range names {
		fileNames = append(fileNames, name+".db")
	}
	fileNames = append(fileNames, "backup-metadata.json")

	if err := createArchive(archivePath, stagingDir, fileNames); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archiveFile.Close()

	if err := s.store.Upload(ctx, archiveName, archiveFile); err != nil {
		return nil, fmt.Errorf("failed to upload archive: %w", err)
	}

	deleted, err := s.RotateOldBackups(ctx)
	if err != nil {
		// The upload already succeeded, rotation can wait for the next run.
		s.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	result := &RunResult{
		Archive:    archiveName,
		SizeBytes:  archiveInfo.Size(),
		Databases:  metadata.Databases,
		Deleted:    deleted,
		DurationMS: time.Since(startTime).Milliseconds(),
	}

	if s.bus != nil {
		s.bus.Publish(events.TypeBackupCompleted, map[string]interface{}{
			"archive":    result.Archive,
			"size_bytes": result.SizeBytes,
		})
	}

	s.log.Info().
		Str("archive", archiveName).
		Int64("size_bytes", archiveInfo.Size()).
		Int("deleted", deleted).
		Dur("duration", time.Since(startTime)).
		Msg("Backup run completed")

	return result, nil
}

// ListBackups returns archives stored in the bucket, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	now := time.Now()

	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		filename := *obj.Key
		if !strings.HasSuffix(filename, ".tar.gz") {
			continue
		}

		timestampStr := strings.TrimPrefix(filename, archivePrefix)
		timestampStr = strings.TrimSuffix(timestampStr, ".tar.gz")

		timestamp, err := time.Parse(archiveTimestamp, timestampStr)
		if err != nil {
			s.log.Warn().Str("filename", filename).Msg("Skipping archive with unparseable timestamp")
			continue
		}

		var sizeBytes int64
		if obj.Size != nil {
			sizeBytes = *obj.Size
		}

		backups = append(backups, BackupInfo{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: sizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes archives older than the retention period.
// The newest minBackupsToKeep archives survive regardless of age, and a
// retention of 0 keeps everything.
func (s *BackupService) RotateOldBackups(ctx context.Context) (int, error) {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}

	if len(backups) <= minBackupsToKeep || s.retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted := 0

	for i, backup := range backups {
		if i < minBackupsToKeep {
			continue
		}
		if !backup.Timestamp.Before(cutoff) {
			continue
		}

		if err := s.store.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}

		s.log.Info().
			Str("filename", backup.Filename).
			Time("timestamp", backup.Timestamp).
			Msg("Deleted old backup")
		deleted++
	}

	return deleted, nil
}

func verifySnapshot(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

func checksumFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

func writeMetadata(path string, metadata archiveMetadata) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}

func createArchive(archivePath, sourceDir string, fileNames []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer archiveFile.Close()

	gzipWriter := gzip.NewWriter(archiveFile)
	defer gzipWriter.Close()

	tarWriter := tar.NewWriter(gzipWriter)
	defer tarWriter.Close()

	for _, name := range fileNames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, name), name); err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
	}

	return nil
}

func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    int64(info.Mode()),
		ModTime: info.ModTime(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
