package container

import (
	"database/sql"

	"netapply-agent/internal/application/usecases"
	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/interfaces"
	"netapply-agent/internal/domain/services"
	"netapply-agent/internal/infrastructure/adapters"
	"netapply-agent/internal/infrastructure/config"
	"netapply-agent/internal/infrastructure/network"
	"netapply-agent/internal/infrastructure/persistence"
	"netapply-agent/internal/infrastructure/probe"
	infraservices "netapply-agent/internal/infrastructure/services"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// Container는 의존성 주입을 관리하는 컨테이너입니다
type Container struct {
	config *config.Config
	logger *logrus.Logger

	// 인프라스트럭처 어댑터들
	fileSystem       interfaces.FileSystem
	commandExecutor  interfaces.CommandExecutor
	clock            interfaces.Clock
	privilegeChecker interfaces.PrivilegeChecker
	prompter         interfaces.Prompter
	osDetector       interfaces.OSDetector
	inspector        interfaces.NetworkInspector

	// 서비스들
	parser          *services.ConfigParser
	renderer        interfaces.NetworkRenderer
	applier         interfaces.NetworkApplier
	connectivity    interfaces.ConnectivityProbe
	backupStore     interfaces.BackupStore
	agentController interfaces.AgentController
	stateReporter   interfaces.StateReporter
	runRecorder     interfaces.RunRecorder

	// 유스케이스
	applyNetworkUseCase *usecases.ApplyNetworkUseCase

	// 데이터베이스 (실행 이력 기록이 설정된 경우에만)
	db *sql.DB
}

// NewContainer는 새로운 Container를 생성합니다
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	container := &Container{
		config: cfg,
		logger: logger,
	}

	if err := container.initializeInfrastructure(); err != nil {
		return nil, err
	}

	container.initializeServices()
	container.initializeUseCases()

	return container, nil
}

// initializeInfrastructure는 인프라스트럭처 컴포넌트들을 초기화합니다
func (c *Container) initializeInfrastructure() error {
	c.fileSystem = adapters.NewRealFileSystem()
	c.commandExecutor = adapters.NewRealCommandExecutor()
	c.clock = adapters.NewRealClock()
	c.privilegeChecker = adapters.NewRealPrivilegeChecker()
	c.prompter = adapters.NewConsolePrompter()
	c.osDetector = adapters.NewRealOSDetector(c.fileSystem)
	c.inspector = network.NewNetlinkInspector()

	// 실행 이력 데이터베이스는 선택 사항
	if c.config.Database.Enabled() {
		db, err := sql.Open("mysql", c.buildDSN())
		if err != nil {
			return err
		}

		db.SetMaxOpenConns(c.config.Database.MaxOpenConns)
		db.SetMaxIdleConns(c.config.Database.MaxIdleConns)
		db.SetConnMaxLifetime(c.config.Database.MaxLifetime)

		if err := db.Ping(); err != nil {
			// 이력 기록은 부가 기능이므로 연결 실패는 경고 후 비활성화
			c.logger.WithError(err).Warn("run-history database unreachable, recording disabled")
			_ = db.Close()
		} else {
			c.db = db
		}
	}

	if c.db != nil {
		c.runRecorder = persistence.NewMySQLRunRecorder(c.db, c.logger)
	} else {
		c.runRecorder = persistence.NewNoopRunRecorder()
	}

	return nil
}

// initializeServices는 서비스들을 초기화합니다
func (c *Container) initializeServices() {
	c.parser = services.NewConfigParser(c.fileSystem)

	c.renderer = network.NewNetplanRenderer(
		c.clock,
		c.config.Netplan.ConfigDir,
		c.config.Netplan.StagingFile,
	)

	c.applier = network.NewNetplanApplier(
		c.commandExecutor,
		c.fileSystem,
		c.clock,
		c.logger,
		c.config.Netplan.CommandTimeout,
		c.config.Netplan.SettleDelay,
	)

	c.connectivity = probe.NewService(
		probe.NewICMPPinger(),
		probe.NewDNSResolver(),
		c.inspector,
		c.logger,
		c.config.Probe,
	)

	c.backupStore = infraservices.NewFileBackupStore(
		c.fileSystem,
		c.clock,
		c.logger,
		c.config.Backup.Directory,
		c.config.Netplan.CanonicalFile,
	)

	c.agentController = network.NewSystemdAgentController(c.commandExecutor, c.logger)
	c.stateReporter = network.NewLiveStateReporter(c.fileSystem, c.logger)
}

// initializeUseCases는 유스케이스들을 초기화합니다
func (c *Container) initializeUseCases() {
	c.applyNetworkUseCase = usecases.NewApplyNetworkUseCase(
		c.parser,
		c.renderer,
		c.applier,
		c.connectivity,
		c.backupStore,
		c.agentController,
		c.inspector,
		c.prompter,
		c.fileSystem,
		c.stateReporter,
		c.logger,
		c.config.Netplan.ConfigDir,
		c.config.Netplan.CanonicalFile,
		constants.ProbePassThreshold,
	)
}

// buildDSN은 데이터베이스 연결 문자열을 생성합니다
func (c *Container) buildDSN() string {
	cfg := c.config.Database
	return cfg.User + ":" + cfg.Password + "@tcp(" + cfg.Host + ":" + cfg.Port + ")/" + cfg.Database + "?parseTime=true"
}

// GetConfig는 설정을 반환합니다
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetPrivilegeChecker는 권한 확인 어댑터를 반환합니다
func (c *Container) GetPrivilegeChecker() interfaces.PrivilegeChecker {
	return c.privilegeChecker
}

// GetOSDetector는 OS 감지 어댑터를 반환합니다
func (c *Container) GetOSDetector() interfaces.OSDetector {
	return c.osDetector
}

// GetRunRecorder는 실행 이력 저장소를 반환합니다
func (c *Container) GetRunRecorder() interfaces.RunRecorder {
	return c.runRecorder
}

// GetApplyNetworkUseCase는 네트워크 적용 유스케이스를 반환합니다
func (c *Container) GetApplyNetworkUseCase() *usecases.ApplyNetworkUseCase {
	return c.applyNetworkUseCase
}

// Close는 컨테이너를 정리합니다
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
