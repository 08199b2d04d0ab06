package interfaces

import (
	"context"

	"netapply-agent/internal/domain/entities"
)

// NetworkRenderer는 설정 문서를 선언적 네트워크 상태 문서로 변환하는 인터페이스입니다
type NetworkRenderer interface {
	// Render는 설정 문서와 호스트 인터페이스 목록으로 RenderedState를 생성합니다
	Render(doc entities.ConfigurationDocument, hostInterfaces []string) (entities.RenderedState, error)
}

// NetworkApplier는 렌더링된 문서를 외부 네트워크 관리자로 적용하는 인터페이스입니다
type NetworkApplier interface {
	// Apply는 문서를 대상 경로에 기록하고 generate/apply 단계를 실행합니다
	Apply(ctx context.Context, rendered entities.RenderedState) error
}

// ConnectivityProbe는 적용 후 호스트 도달 가능성을 검사하는 인터페이스입니다
type ConnectivityProbe interface {
	// Probe는 고정된 검사 배터리를 실행하고 결과를 반환합니다
	Probe(ctx context.Context) entities.ProbeResult
}

// NetworkInspector는 라이브 네트워크 상태 조회를 추상화하는 인터페이스입니다
type NetworkInspector interface {
	// ListPhysicalInterfaces는 물리 NIC 네이밍 규칙에 맞는 인터페이스 이름들을
	// 정렬된 순서로 반환합니다
	ListPhysicalInterfaces() ([]string, error)

	// DefaultGateway는 라우팅 테이블의 기본 게이트웨이 주소를 반환합니다.
	// 기본 라우트가 없으면 두 번째 반환값이 false입니다.
	DefaultGateway() (string, bool, error)
}

// BackupStore는 선언적 설정의 스냅샷과 복원을 처리하는 인터페이스입니다
type BackupStore interface {
	// Snapshot은 변경 전 기존 설정 파일을 백업합니다
	Snapshot(ctx context.Context, sourceDir string) (entities.Backup, error)

	// Restore는 백업을 원본 경로로 복원합니다.
	// 백업이 없던 실행이라면 안전한 기본 설정을 대신 기록합니다.
	Restore(ctx context.Context, backup entities.Backup) error
}

// AgentController는 경쟁하는 네트워크 설정 에이전트의 서비스 제어 인터페이스입니다
type AgentController interface {
	// Disable은 경쟁 에이전트를 중지하고 비활성화합니다 (실패는 경고로 처리)
	Disable(ctx context.Context) error
}

// StateReporter는 실행 종료 시 라이브 네트워크 상태를 표시하는 인터페이스입니다
type StateReporter interface {
	// Report는 현재 주소, 라우트, 네임서버를 로그로 출력합니다
	Report(ctx context.Context)
}
