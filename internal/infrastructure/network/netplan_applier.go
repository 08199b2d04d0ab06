package network

import (
	"context"
	"time"

	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// NetplanApplier는 netplan을 사용하는 NetworkApplier 구현체입니다.
// 프로세스가 라이브 네트워크 상태를 변경하는 유일한 지점입니다.
type NetplanApplier struct {
	commandExecutor interfaces.CommandExecutor
	fileSystem      interfaces.FileSystem
	clock           interfaces.Clock
	logger          *logrus.Logger
	commandTimeout  time.Duration
	settleDelay     time.Duration
}

// NewNetplanApplier는 새로운 NetplanApplier를 생성합니다
func NewNetplanApplier(
	executor interfaces.CommandExecutor,
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	commandTimeout time.Duration,
	settleDelay time.Duration,
) *NetplanApplier {
	return &NetplanApplier{
		commandExecutor: executor,
		fileSystem:      fs,
		clock:           clock,
		logger:          logger,
		commandTimeout:  commandTimeout,
		settleDelay:     settleDelay,
	}
}

// Apply는 렌더링된 문서를 대상 경로에 기록하고 netplan generate/apply를 실행합니다.
// 적용 성공 후에는 인터페이스 재협상을 위해 settle 지연만큼 대기합니다.
func (a *NetplanApplier) Apply(ctx context.Context, rendered entities.RenderedState) error {
	// 설정 파일 저장 (쓰기 실패는 변경 전 중단)
	if err := a.fileSystem.WriteFile(rendered.Path, rendered.Content, constants.ConfigFilePermission); err != nil {
		return errors.NewSystemError("netplan 설정 파일 저장 실패", err)
	}

	a.logger.WithField("config_path", rendered.Path).Info("netplan 설정 파일 기록 완료")

	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.commandTimeout, "netplan", "generate"); err != nil {
		return errors.NewNetworkError("netplan generate 실패", err)
	}

	if _, err := a.commandExecutor.ExecuteWithTimeout(ctx, a.commandTimeout, "netplan", "apply"); err != nil {
		return errors.NewNetworkError("netplan apply 실패", err)
	}

	a.logger.WithField("settle_delay", a.settleDelay).Info("netplan 적용 완료, 인터페이스 안정화 대기")

	if err := a.clock.Sleep(ctx, a.settleDelay); err != nil {
		return errors.NewSystemError("안정화 대기 중 컨텍스트 취소됨", err)
	}

	return nil
}
