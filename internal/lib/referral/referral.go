// Package referral порождает реферальные коды профилей.
//
// Код выводится из email простым некриптографическим хэшем: для маркетинговой
// ссылки важна только стабильность и читаемость, не стойкость.
package referral

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Code возвращает реферальный код для указанного email.
// Один и тот же email всегда дает один и тот же код.
func Code(email string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("REF%08X", h.Sum32())
}
