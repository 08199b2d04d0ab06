package network

import (
	"bytes"
	"context"
	"testing"
	"time"

	"netapply-agent/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// MockClock은 Clock 인터페이스의 목 구현체입니다
type MockClock struct {
	mock.Mock
}

func (m *MockClock) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func newTestRenderer(now time.Time) *NetplanRenderer {
	clock := new(MockClock)
	clock.On("Now").Return(now)
	return NewNetplanRenderer(clock, "/etc/netplan", "90-netapply.yaml")
}

func renderToDocument(t *testing.T, doc entities.ConfigurationDocument, hostInterfaces []string) netplanDocument {
	t.Helper()

	renderer := newTestRenderer(time.Date(2025, 1, 8, 15, 4, 5, 0, time.UTC))
	rendered, err := renderer.Render(doc, hostInterfaces)
	require.NoError(t, err)

	var parsed netplanDocument
	require.NoError(t, yaml.Unmarshal(rendered.Content, &parsed))
	return parsed
}

func TestNetplanRenderer_StaticInterfaceRoundTrip(t *testing.T) {
	doc := entities.ConfigurationDocument{
		"eth0": {
			Exists:     true,
			DHCP4:      false,
			Address:    "10.0.0.5",
			Gateway:    "10.0.0.1",
			DNSServers: []string{"8.8.8.8", "8.8.4.4"},
		},
	}

	parsed := renderToDocument(t, doc, []string{"eth0"})

	require.Contains(t, parsed.Network.Ethernets, "eth0")
	eth := parsed.Network.Ethernets["eth0"]
	assert.Equal(t, 2, parsed.Network.Version)
	assert.False(t, eth.DHCP4)
	// 프리픽스 없는 주소에는 /24가 보정됨
	assert.Equal(t, []string{"10.0.0.5/24"}, eth.Addresses)
	require.Len(t, eth.Routes, 1)
	assert.Equal(t, "default", eth.Routes[0].To)
	assert.Equal(t, "10.0.0.1", eth.Routes[0].Via)
	require.NotNil(t, eth.Nameservers)
	assert.Equal(t, []string{"8.8.8.8", "8.8.4.4"}, eth.Nameservers.Addresses)
}

func TestNetplanRenderer_ExplicitPrefixPreserved(t *testing.T) {
	doc := entities.ConfigurationDocument{
		"eth0": {Exists: true, Address: "192.168.1.50/16"},
	}

	parsed := renderToDocument(t, doc, []string{"eth0"})

	assert.Equal(t, []string{"192.168.1.50/16"}, parsed.Network.Ethernets["eth0"].Addresses)
}

func TestNetplanRenderer_DHCPWinsOverAddress(t *testing.T) {
	doc := entities.ConfigurationDocument{
		"eth0": {
			Exists:  true,
			DHCP4:   true,
			Address: "10.0.0.5/24",
			Gateway: "10.0.0.1",
		},
	}

	parsed := renderToDocument(t, doc, []string{"eth0"})

	eth := parsed.Network.Ethernets["eth0"]
	assert.True(t, eth.DHCP4)
	assert.Empty(t, eth.Addresses)
	assert.Empty(t, eth.Routes)
	assert.Nil(t, eth.Nameservers)
}

func TestNetplanRenderer_UnmanagedInterfaceDefault(t *testing.T) {
	doc := entities.ConfigurationDocument{
		"eth0": {Exists: true, DHCP4: true},
	}

	parsed := renderToDocument(t, doc, []string{"eth0", "eth1"})

	require.Contains(t, parsed.Network.Ethernets, "eth1")
	eth1 := parsed.Network.Ethernets["eth1"]
	assert.False(t, eth1.DHCP4)
	assert.True(t, eth1.Optional)
	assert.Empty(t, eth1.Addresses)
	assert.Empty(t, eth1.Routes)
	assert.Nil(t, eth1.Nameservers)
}

func TestNetplanRenderer_MissingGatewayEmitsNoRoute(t *testing.T) {
	doc := entities.ConfigurationDocument{
		"eth0": {Exists: true, Address: "10.0.0.5/24"},
	}

	parsed := renderToDocument(t, doc, []string{"eth0"})

	assert.Empty(t, parsed.Network.Ethernets["eth0"].Routes)
}

func TestNetplanRenderer_FiltersNonPhysicalInterfaces(t *testing.T) {
	parsed := renderToDocument(t, entities.ConfigurationDocument{}, []string{"lo", "docker0", "wlan0", "eth0", "ens3"})

	assert.Len(t, parsed.Network.Ethernets, 2)
	assert.Contains(t, parsed.Network.Ethernets, "eth0")
	assert.Contains(t, parsed.Network.Ethernets, "ens3")
}

func TestNetplanRenderer_Idempotence(t *testing.T) {
	doc := entities.ConfigurationDocument{
		"eth0": {Exists: true, Address: "10.0.0.5/24", Gateway: "10.0.0.1"},
		"eth1": {Exists: true, DHCP4: true},
	}
	hostInterfaces := []string{"eth1", "eth0", "eth2"}

	renderer := newTestRenderer(time.Date(2025, 1, 8, 15, 4, 5, 0, time.UTC))
	first, err := renderer.Render(doc, hostInterfaces)
	require.NoError(t, err)

	// 생성 시각 주석만 다른 두 번째 렌더링
	later := newTestRenderer(time.Date(2025, 1, 8, 16, 0, 0, 0, time.UTC))
	second, err := later.Render(doc, hostInterfaces)
	require.NoError(t, err)

	assert.Equal(t, stripHeader(first.Content), stripHeader(second.Content))
}

func TestNetplanRenderer_TargetPath(t *testing.T) {
	renderer := newTestRenderer(time.Now())
	rendered, err := renderer.Render(entities.ConfigurationDocument{}, []string{"eth0"})

	require.NoError(t, err)
	assert.Equal(t, "/etc/netplan/90-netapply.yaml", rendered.Path)
}

// stripHeader는 첫 줄의 생성 시각 주석을 제거합니다
func stripHeader(content []byte) []byte {
	idx := bytes.IndexByte(content, '\n')
	if idx < 0 {
		return content
	}
	return content[idx+1:]
}
