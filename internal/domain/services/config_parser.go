package services

import (
	"bufio"
	"fmt"
	"strings"

	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"
)

// ConfigParser는 평면 키-값/섹션 설정 파일을 ConfigurationDocument로
// 읽어들이는 도메인 서비스입니다
type ConfigParser struct {
	fileSystem interfaces.FileSystem
}

// NewConfigParser는 새로운 ConfigParser를 생성합니다
func NewConfigParser(fs interfaces.FileSystem) *ConfigParser {
	return &ConfigParser{
		fileSystem: fs,
	}
}

// Parse는 설정 파일을 파싱합니다.
// 파일을 읽을 수 없는 경우에만 실패하며, 파싱 자체는 관대합니다 —
// 인식되지 않는 줄은 에러 없이 건너뜁니다.
func (p *ConfigParser) Parse(path string) (entities.ConfigurationDocument, error) {
	if !p.fileSystem.Exists(path) {
		return nil, errors.NewNotFoundError(fmt.Sprintf("설정 파일을 찾을 수 없음: %s", path))
	}

	content, err := p.fileSystem.ReadFile(path)
	if err != nil {
		return nil, errors.NewSystemError(fmt.Sprintf("설정 파일 읽기 실패: %s", path), err)
	}

	doc := entities.ConfigurationDocument{}
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// [name] 헤더는 새 인터페이스 컨텍스트를 엽니다
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if current != "" {
				spec := doc[current]
				spec.Exists = true
				doc[current] = spec
			}
			continue
		}

		// 헤더 이전의 줄은 버립니다
		if current == "" {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		spec := doc[current]
		applyKey(&spec, key, value)
		doc[current] = spec
	}

	return doc, nil
}

// applyKey는 단일 key=value 쌍을 스펙에 반영합니다
func applyKey(spec *entities.InterfaceSpec, key, value string) {
	switch strings.ToLower(key) {
	case "dhcp4":
		spec.DHCP4 = strings.EqualFold(value, "true")
	case "address":
		spec.Address = value
	case "gateway":
		spec.Gateway = value
	case "dns":
		spec.DNSServers = splitServerList(value)
	default:
		// 알 수 없는 키는 해석 없이 그대로 보존
		if spec.Extra == nil {
			spec.Extra = make(map[string]string)
		}
		spec.Extra[key] = value
	}
}

// splitServerList는 쉼표 또는 공백으로 구분된 서버 목록을 분리합니다
func splitServerList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	var servers []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			servers = append(servers, f)
		}
	}
	return servers
}
