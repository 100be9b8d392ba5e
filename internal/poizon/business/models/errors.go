package models

import "fmt"

// Причины, по которым документ не превращается в нормализованный товар.
const (
	ReasonNoIdentifier   = "no_identifier"
	ReasonEmptyTitle     = "empty_title"
	ReasonNoImages       = "no_images"
	ReasonNoSkus         = "no_skus"
	ReasonNoValidVariant = "no_valid_variants"
	ReasonNoPriceForSize = "no_price_for_size"
)

// NormalizationError — типизированный отказ нормализатора. Нормализация
// никогда не паникует и не возвращает частичный результат: либо товар,
// либо ошибка с кодом причины.
type NormalizationError struct {
	Reason     string
	ExternalID string
}

func (e *NormalizationError) Error() string {
	if e.ExternalID == "" {
		return fmt.Sprintf("normalization failed: %s", e.Reason)
	}
	return fmt.Sprintf("normalization of %s failed: %s", e.ExternalID, e.Reason)
}

func NewNormalizationError(reason, externalID string) *NormalizationError {
	return &NormalizationError{Reason: reason, ExternalID: externalID}
}
