package network

import (
	"context"
	"fmt"
	"time"

	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// SystemdAgentController는 systemctl로 경쟁하는 네트워크 설정 에이전트를
// 비활성화하는 AgentController 구현체입니다
type SystemdAgentController struct {
	commandExecutor interfaces.CommandExecutor
	logger          *logrus.Logger
	serviceName     string
}

// NewSystemdAgentController는 새로운 SystemdAgentController를 생성합니다
func NewSystemdAgentController(
	executor interfaces.CommandExecutor,
	logger *logrus.Logger,
) *SystemdAgentController {
	return &SystemdAgentController{
		commandExecutor: executor,
		logger:          logger,
		serviceName:     "NetworkManager",
	}
}

// Disable은 경쟁 에이전트를 중지하고 비활성화합니다.
// 서비스가 설치조차 되어 있지 않은 호스트도 정상이므로 개별 실패는 무시합니다.
func (c *SystemdAgentController) Disable(ctx context.Context) error {
	// 서비스 중지
	if _, err := c.commandExecutor.ExecuteWithTimeout(ctx, constants.DefaultCommandTimeout*time.Second, "systemctl", "stop", c.serviceName); err != nil {
		c.logger.WithError(err).WithField("service", c.serviceName).Debug("systemctl stop 중 에러 발생 (무시 가능)")
	}

	// 부팅 시 자동 시작 비활성화
	if _, err := c.commandExecutor.ExecuteWithTimeout(ctx, constants.DefaultCommandTimeout*time.Second, "systemctl", "disable", c.serviceName); err != nil {
		c.logger.WithError(err).WithField("service", c.serviceName).Debug("systemctl disable 중 에러 발생 (무시 가능)")
		return errors.NewSystemError(fmt.Sprintf("%s 비활성화 실패", c.serviceName), err)
	}

	c.logger.WithField("service", c.serviceName).Info("경쟁 네트워크 에이전트 비활성화 완료")
	return nil
}
