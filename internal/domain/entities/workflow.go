package entities

import "time"

// RenderedState는 생성된 선언적 네트워크 설정 문서와 대상 경로의 쌍입니다.
// 생성 이후 불변이며, 매 실행마다 새로운 RenderedState로 대체됩니다.
type RenderedState struct {
	Content []byte
	Path    string
}

// Backup은 변경 전 스냅샷의 (원본 경로, 백업 경로, 시각) 쌍입니다.
// 실행당 최대 하나만 활성화되며 롤백에서만 소비됩니다.
type Backup struct {
	OriginalPath string
	BackupPath   string
	CreatedAt    time.Time
}

// Existed는 스냅샷 시점에 백업할 원본 파일이 있었는지 여부를 반환합니다
func (b Backup) Existed() bool {
	return b.BackupPath != ""
}

// ProbeCheck는 이름이 붙은 단일 연결성 검사 결과입니다
type ProbeCheck struct {
	Name   string
	Target string
	Passed bool
}

// ProbeResult는 실행된 검사들의 순서 있는 목록입니다
type ProbeResult struct {
	Checks []ProbeCheck
}

// Score는 성공한 검사 수를 반환합니다
func (r ProbeResult) Score() int {
	score := 0
	for _, c := range r.Checks {
		if c.Passed {
			score++
		}
	}
	return score
}

// Passed는 성공 검사 수가 임계값 이상인지 여부를 반환합니다.
// 건너뛴 검사는 Checks에 포함되지 않으므로 분모에서 제외됩니다.
func (r ProbeResult) Passed(threshold int) bool {
	return r.Score() >= threshold
}

// WorkflowOutcome은 단일 실행의 종료 상태입니다
type WorkflowOutcome int

const (
	// OutcomeApplied는 새 설정이 적용되고 검증까지 통과한 상태입니다
	OutcomeApplied WorkflowOutcome = iota

	// OutcomeAppliedForced는 검증 실패에도 force 모드로 새 설정을 유지한 상태입니다
	OutcomeAppliedForced

	// OutcomeRolledBack은 검증 실패 후 이전 설정 복원과 재검증에 성공한 상태입니다
	OutcomeRolledBack

	// OutcomeRolledBackUnreachable은 복원 후에도 재검증에 실패한 상태입니다
	OutcomeRolledBackUnreachable

	// OutcomeUserCancelled는 적용 전 확인 단계에서 사용자가 취소한 상태입니다
	OutcomeUserCancelled

	// OutcomeApplyFailed는 외부 적용 단계 자체가 실패한 상태입니다 (롤백 불필요)
	OutcomeApplyFailed
)

// String은 종료 상태의 문자열 표현을 반환합니다
func (o WorkflowOutcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeAppliedForced:
		return "applied_forced"
	case OutcomeRolledBack:
		return "rolled_back"
	case OutcomeRolledBackUnreachable:
		return "rolled_back_unreachable"
	case OutcomeUserCancelled:
		return "user_cancelled"
	case OutcomeApplyFailed:
		return "apply_failed"
	default:
		return "unknown"
	}
}

// ExitCode는 종료 상태를 프로세스 종료 코드로 매핑합니다.
// 적용-검증 성공과 사용자 취소만 0으로 종료합니다.
func (o WorkflowOutcome) ExitCode() int {
	switch o {
	case OutcomeApplied, OutcomeUserCancelled:
		return 0
	default:
		return 1
	}
}

// RunRecord는 실행 기록 저장소에 남기는 단일 실행 이력입니다
type RunRecord struct {
	NodeName   string
	ConfigPath string
	Outcome    WorkflowOutcome
	ProbeScore int
	ProbeTotal int
	Forced     bool
	StartedAt  time.Time
	FinishedAt time.Time
}
