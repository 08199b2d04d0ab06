package persistence

import (
	"context"
	"database/sql"

	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// MySQLRunRecorder는 MySQL 기반의 RunRecorder 구현체입니다.
// 중앙 인벤토리에 실행 이력을 남길 때 사용됩니다.
type MySQLRunRecorder struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMySQLRunRecorder는 새로운 MySQLRunRecorder를 생성합니다
func NewMySQLRunRecorder(db *sql.DB, logger *logrus.Logger) interfaces.RunRecorder {
	return &MySQLRunRecorder{
		db:     db,
		logger: logger,
	}
}

// RecordRun은 단일 실행의 결과를 기록합니다
func (r *MySQLRunRecorder) RecordRun(ctx context.Context, record entities.RunRecord) error {
	query := `
		INSERT INTO netapply_runs
			(node_name, config_path, outcome, probe_score, probe_total, forced, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		record.NodeName,
		record.ConfigPath,
		record.Outcome.String(),
		record.ProbeScore,
		record.ProbeTotal,
		record.Forced,
		record.StartedAt,
		record.FinishedAt,
	)
	if err != nil {
		return errors.NewSystemError("실행 이력 기록 실패", err)
	}

	r.logger.WithFields(logrus.Fields{
		"node_name": record.NodeName,
		"outcome":   record.Outcome.String(),
	}).Debug("실행 이력 기록 완료")

	return nil
}

// NoopRunRecorder는 데이터베이스가 설정되지 않았을 때 사용되는 구현체입니다
type NoopRunRecorder struct{}

// NewNoopRunRecorder는 새로운 NoopRunRecorder를 생성합니다
func NewNoopRunRecorder() interfaces.RunRecorder {
	return &NoopRunRecorder{}
}

// RecordRun은 아무것도 기록하지 않습니다
func (r *NoopRunRecorder) RecordRun(ctx context.Context, record entities.RunRecord) error {
	return nil
}
