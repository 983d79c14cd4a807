package repository

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// AdviceCache stores generated advice by request key
type AdviceCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, advice string) error
}

// AdviceKey hashes the JSON encoding of v into a cache key
func AdviceKey(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := blake2b.Sum256(raw)
	return "advice:" + hex.EncodeToString(sum[:]), nil
}
