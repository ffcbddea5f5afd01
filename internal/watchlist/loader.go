package watchlist

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a watchlist file
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes
func Parse(data []byte) (*Watchlist, error) {
	var w Watchlist
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	if err := Validate(&w); err != nil {
		return nil, err
	}

	return &w, nil
}

// Hash identifies the watchlist content (canonical JSON, SHA256).
// Bulk runs record it so results can be traced to their input list.
func Hash(w *Watchlist) (string, error) {
	jsonBytes, err := json.Marshal(w)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
