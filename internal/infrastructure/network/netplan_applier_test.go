package network

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"netapply-agent/internal/domain/entities"
	domainErrors "netapply-agent/internal/domain/errors"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommandExecutor는 CommandExecutor 인터페이스의 목 구현체입니다
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, command string, args ...string) ([]byte, error) {
	callArgs := m.Called(ctx, command, args)
	return callArgs.Get(0).([]byte), callArgs.Error(1)
}

func (m *MockCommandExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, command string, args ...string) ([]byte, error) {
	callArgs := m.Called(ctx, timeout, command, args)
	return callArgs.Get(0).([]byte), callArgs.Error(1)
}

// MockFileSystem은 FileSystem 인터페이스의 목 구현체입니다
type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileSystem) Rename(oldPath, newPath string) error {
	args := m.Called(oldPath, newPath)
	return args.Error(0)
}

func (m *MockFileSystem) ListFiles(path string) ([]string, error) {
	args := m.Called(path)
	return args.Get(0).([]string), args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestApplier(executor *MockCommandExecutor, fs *MockFileSystem, clock *MockClock) *NetplanApplier {
	return NewNetplanApplier(executor, fs, clock, testLogger(), 30*time.Second, 3*time.Second)
}

func TestNetplanApplier_Apply_Success(t *testing.T) {
	executor := new(MockCommandExecutor)
	fs := new(MockFileSystem)
	clock := new(MockClock)

	rendered := entities.RenderedState{
		Path:    "/etc/netplan/90-netapply.yaml",
		Content: []byte("network:\n  version: 2\n"),
	}

	fs.On("WriteFile", rendered.Path, rendered.Content, os.FileMode(0600)).Return(nil)
	executor.On("ExecuteWithTimeout", mock.Anything, 30*time.Second, "netplan", []string{"generate"}).Return([]byte{}, nil)
	executor.On("ExecuteWithTimeout", mock.Anything, 30*time.Second, "netplan", []string{"apply"}).Return([]byte{}, nil)
	clock.On("Sleep", mock.Anything, 3*time.Second).Return(nil)

	applier := newTestApplier(executor, fs, clock)
	err := applier.Apply(context.Background(), rendered)

	require.NoError(t, err)
	executor.AssertExpectations(t)
	fs.AssertExpectations(t)
	clock.AssertExpectations(t)
}

func TestNetplanApplier_Apply_WriteFailureAbortsBeforeMutation(t *testing.T) {
	executor := new(MockCommandExecutor)
	fs := new(MockFileSystem)
	clock := new(MockClock)

	rendered := entities.RenderedState{Path: "/etc/netplan/90-netapply.yaml", Content: []byte("x")}
	fs.On("WriteFile", rendered.Path, rendered.Content, os.FileMode(0600)).Return(errors.New("disk full"))

	applier := newTestApplier(executor, fs, clock)
	err := applier.Apply(context.Background(), rendered)

	require.Error(t, err)
	assert.True(t, domainErrors.IsSystemError(err))
	// 쓰기 실패 시 외부 적용은 호출되지 않아야 함
	executor.AssertNotCalled(t, "ExecuteWithTimeout", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNetplanApplier_Apply_GenerateFailure(t *testing.T) {
	executor := new(MockCommandExecutor)
	fs := new(MockFileSystem)
	clock := new(MockClock)

	rendered := entities.RenderedState{Path: "/etc/netplan/90-netapply.yaml", Content: []byte("x")}
	fs.On("WriteFile", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	executor.On("ExecuteWithTimeout", mock.Anything, 30*time.Second, "netplan", []string{"generate"}).Return([]byte(nil), errors.New("invalid yaml"))

	applier := newTestApplier(executor, fs, clock)
	err := applier.Apply(context.Background(), rendered)

	require.Error(t, err)
	assert.True(t, domainErrors.IsNetworkError(err))
	executor.AssertNotCalled(t, "ExecuteWithTimeout", mock.Anything, mock.Anything, "netplan", []string{"apply"})
}

func TestNetplanApplier_Apply_ApplyFailure(t *testing.T) {
	executor := new(MockCommandExecutor)
	fs := new(MockFileSystem)
	clock := new(MockClock)

	rendered := entities.RenderedState{Path: "/etc/netplan/90-netapply.yaml", Content: []byte("x")}
	fs.On("WriteFile", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	executor.On("ExecuteWithTimeout", mock.Anything, 30*time.Second, "netplan", []string{"generate"}).Return([]byte{}, nil)
	executor.On("ExecuteWithTimeout", mock.Anything, 30*time.Second, "netplan", []string{"apply"}).Return([]byte(nil), errors.New("exit status 1"))

	applier := newTestApplier(executor, fs, clock)
	err := applier.Apply(context.Background(), rendered)

	require.Error(t, err)
	assert.True(t, domainErrors.IsNetworkError(err))
	// 적용 실패 시 안정화 대기는 수행되지 않음
	clock.AssertNotCalled(t, "Sleep", mock.Anything, mock.Anything)
}
