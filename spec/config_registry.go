package spec

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/hongbao/errs"
	"gopkg.in/yaml.v3"
)

// DefaultConfigName 是內嵌設定檔的檔名。
const DefaultConfigName = "hongbao.yaml"

// GetSettingsByYAML 嚴格解析 YAML：多寫或拼錯欄位就報錯。
func GetSettingsByYAML(data []byte) (*Settings, error) {
	s := &Settings{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal settings yaml")
	}
	if err := s.valid(); err != nil {
		return nil, errs.Wrap(err, "settings validation failed")
	}
	return s, nil
}

func GetSettingsByJSON(data []byte) (*Settings, error) {
	s := &Settings{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, errs.Wrap(err, "can not unmarshal settings json")
	}
	if err := s.valid(); err != nil {
		return nil, errs.Wrap(err, "settings validation failed")
	}
	return s, nil
}

// LoadSettings 從 fs.FS 讀取設定檔，依副檔名決定格式。
func LoadSettings(src fs.FS, name string) (*Settings, error) {
	if src == nil {
		return nil, errs.NewFatal("settings fs is nil")
	}
	raw, err := fs.ReadFile(src, name)
	if err != nil {
		return nil, errs.Wrap(err, "read settings failed: "+name)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return GetSettingsByYAML(raw)
	case ".json":
		return GetSettingsByJSON(raw)
	default:
		return nil, errs.Fatalf("unsupported settings format: %q", name)
	}
}

// YAML 把設定轉回 YAML，給 /v1/rules 與終端機的規則說明使用。
func (s *Settings) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, errs.Wrap(err, "encode settings yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errs.Wrap(err, "close settings encoder")
	}
	return buf.Bytes(), nil
}
