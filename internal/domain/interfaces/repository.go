package interfaces

import (
	"context"

	"netapply-agent/internal/domain/entities"
)

// RunRecorder는 실행 이력 저장소 인터페이스입니다.
// 기록 실패는 워크플로 결과에 영향을 주지 않습니다.
type RunRecorder interface {
	// RecordRun은 단일 실행의 결과를 기록합니다
	RecordRun(ctx context.Context, record entities.RunRecord) error
}
