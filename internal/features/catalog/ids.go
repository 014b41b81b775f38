package catalog

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	idAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	idSuffixSize = 6

	// ListingIDPrefix отличает объявления от запросов.
	ListingIDPrefix = "L"
)

// NewRequestID создаёт id запроса: миллисекунды + случайный суффикс.
// Формат: "1700000000000-k3j9x2"
func NewRequestID(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(idAlphabet, idSuffixSize)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix, nil
}

// NewListingID создаёт id объявления с префиксом "L".
// Формат: "L1700000000000-k3j9x2"
func NewListingID(now time.Time) (string, error) {
	id, err := NewRequestID(now)
	if err != nil {
		return "", err
	}
	return ListingIDPrefix + id, nil
}
