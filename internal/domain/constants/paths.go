package constants

// 시스템 경로 상수들
const (
	// Netplan 관련 경로
	NetplanConfigDir = "/etc/netplan"

	// 적용 성공 시 최종적으로 사용되는 표준 설정 파일명
	CanonicalConfigFile = "01-netcfg.yaml"

	// 검증 전까지 새 설정이 머무르는 스테이징 파일명
	StagingConfigFile = "90-netapply.yaml"

	// OS 감지 관련 경로
	OSReleaseFile = "/etc/os-release"

	// 백업 디렉토리
	DefaultBackupDir = "/var/lib/netapply/backups"

	// 최종 상태 표시용 리졸버 설정
	ResolvConfFile = "/etc/resolv.conf"
)

// 네트워크 설정 관련 상수들
const (
	// 파일 권한 (world-readable netplan 설정은 경고 대상)
	ConfigFilePermission = 0600

	// 타임아웃
	DefaultCommandTimeout = 30 // seconds
	DefaultSettleDelay    = 3  // seconds

	// 정적 주소에 프리픽스가 없을 때 보정되는 기본값
	DefaultPrefixLength = "/24"
)

// 연결성 검사 관련 상수들
const (
	DefaultProbeDNSServer    = "8.8.8.8"
	DefaultProbeExternalHost = "google.com"
	DefaultProbeAttempts     = 3

	// 검증 통과에 필요한 최소 성공 검사 수
	ProbePassThreshold = 2
)

// 기본값 상수들
const (
	// 데이터베이스 기본값 (호스트 미설정 시 실행 기록 비활성화)
	DefaultDBPort = "3306"
	DefaultDBName = "netapply"

	// 에이전트 기본값
	DefaultLogLevel = "info"
)
