package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// 복원할 백업이 전혀 없을 때 기록되는 최소한의 안전 설정.
// 도달 불가능한 호스트로 남기는 것보다 DHCP 추측이 낫습니다.
const fallbackDocument = `network:
  version: 2
  ethernets:
    eth0:
      dhcp4: true
`

// FileBackupStore는 선언적 설정 파일의 백업을 관리하는 BackupStore 구현체입니다
type FileBackupStore struct {
	fileSystem    interfaces.FileSystem
	clock         interfaces.Clock
	logger        *logrus.Logger
	backupDir     string
	canonicalFile string
}

// NewFileBackupStore는 새로운 FileBackupStore를 생성합니다
func NewFileBackupStore(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	backupDir string,
	canonicalFile string,
) interfaces.BackupStore {
	return &FileBackupStore{
		fileSystem:    fs,
		clock:         clock,
		logger:        logger,
		backupDir:     backupDir,
		canonicalFile: canonicalFile,
	}
}

// Snapshot은 대상 디렉토리에서 사전순으로 첫 번째 선언적 설정 파일을 백업합니다.
// 파일이 하나도 없으면 백업 경로가 빈 Backup을 반환합니다 (복원 시 기본 설정 기록 대상).
func (s *FileBackupStore) Snapshot(ctx context.Context, sourceDir string) (entities.Backup, error) {
	now := s.clock.Now()

	original := s.findOriginalFile(sourceDir)
	if original == "" {
		s.logger.WithField("source_dir", sourceDir).Info("백업할 기존 설정 파일이 없음")
		return entities.Backup{
			OriginalPath: filepath.Join(sourceDir, s.canonicalFile),
			CreatedAt:    now,
		}, nil
	}

	originalPath := filepath.Join(sourceDir, original)
	content, err := s.fileSystem.ReadFile(originalPath)
	if err != nil {
		return entities.Backup{}, errors.NewSystemError("기존 설정 파일 읽기 실패", err)
	}

	// 백업 디렉토리 생성
	if err := s.fileSystem.MkdirAll(s.backupDir, 0755); err != nil {
		return entities.Backup{}, errors.NewSystemError("백업 디렉토리 생성 실패", err)
	}

	// 백업 파일명 생성 (예: 01-netcfg.yaml.backup.20250108150405)
	timestamp := now.Format("20060102150405")
	backupPath := filepath.Join(s.backupDir, fmt.Sprintf("%s.backup.%s", original, timestamp))

	if err := s.fileSystem.WriteFile(backupPath, content, 0644); err != nil {
		return entities.Backup{}, errors.NewSystemError("백업 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"original_path": originalPath,
		"backup_path":   backupPath,
	}).Info("설정 백업 생성 완료")

	return entities.Backup{
		OriginalPath: originalPath,
		BackupPath:   backupPath,
		CreatedAt:    now,
	}, nil
}

// Restore는 백업 파일을 원본 경로로 복원합니다.
// 백업이 없던 실행이면 안전한 DHCP 기본 설정을 대신 기록합니다.
// 있어야 할 백업 파일이 사라진 경우에도 기본 설정으로 대체한 뒤 RestoreFailed를 반환합니다.
func (s *FileBackupStore) Restore(ctx context.Context, backup entities.Backup) error {
	if !backup.Existed() {
		s.logger.WithField("original_path", backup.OriginalPath).Info("백업이 없어 기본 DHCP 설정으로 복원")
		if err := s.fileSystem.WriteFile(backup.OriginalPath, []byte(fallbackDocument), constants.ConfigFilePermission); err != nil {
			return errors.NewSystemError("기본 설정 기록 실패", err)
		}
		return nil
	}

	content, err := s.fileSystem.ReadFile(backup.BackupPath)
	if err != nil {
		// 스냅샷과 복원 사이에 백업이 사라짐 — 중단 대신 기본 설정으로 대체
		if writeErr := s.fileSystem.WriteFile(backup.OriginalPath, []byte(fallbackDocument), constants.ConfigFilePermission); writeErr != nil {
			return errors.NewSystemError("백업 소실 후 기본 설정 기록 실패", writeErr)
		}
		return errors.NewRestoreError("백업 파일을 읽을 수 없어 기본 설정으로 대체함", err)
	}

	if err := s.fileSystem.WriteFile(backup.OriginalPath, content, constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError("백업 복원 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"original_path": backup.OriginalPath,
		"backup_path":   backup.BackupPath,
	}).Info("백업 복원 완료")

	return nil
}

// findOriginalFile은 사전순으로 첫 번째 선언적 설정 파일명을 반환합니다
func (s *FileBackupStore) findOriginalFile(sourceDir string) string {
	if !s.fileSystem.Exists(sourceDir) {
		return ""
	}

	files, err := s.fileSystem.ListFiles(sourceDir)
	if err != nil {
		s.logger.WithError(err).Warn("설정 디렉토리 읽기 실패")
		return ""
	}

	var candidates []string
	for _, file := range files {
		if strings.HasSuffix(file, ".yaml") || strings.HasSuffix(file, ".yml") {
			candidates = append(candidates, file)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.Strings(candidates)
	return candidates[0]
}
