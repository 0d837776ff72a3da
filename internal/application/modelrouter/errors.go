package modelrouter

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable 所有模型不可用错误的哨兵，配合 errors.Is 使用
var ErrModelUnavailable = errors.New("model unavailable")

// Reason 不可用原因
type Reason string

const (
	ReasonUnknownModel           Reason = "unknown_model"
	ReasonProviderNotImplemented Reason = "provider_not_implemented"
	ReasonCredentialsMissing     Reason = "credentials_missing"
	ReasonNoCandidates           Reason = "no_candidates"
)

// UnavailableError 配置类错误，不可重试
type UnavailableError struct {
	Reason   Reason
	Model    string
	Provider Provider
	msg      string
}

func (e *UnavailableError) Error() string {
	return e.msg
}

// Is 使 errors.Is(err, ErrModelUnavailable) 成立
func (e *UnavailableError) Is(target error) bool {
	return target == ErrModelUnavailable
}

func errUnknownModel(model string) error {
	return &UnavailableError{
		Reason: ReasonUnknownModel,
		Model:  model,
		msg:    fmt.Sprintf("Unknown model: %s", model),
	}
}

func errProviderNotImplemented(spec ModelSpec) error {
	return &UnavailableError{
		Reason:   ReasonProviderNotImplemented,
		Model:    spec.Name,
		Provider: spec.Provider,
		msg:      fmt.Sprintf("Provider '%s' not implemented yet for model '%s'", spec.Provider, spec.Name),
	}
}

func errNoCandidates() error {
	return &UnavailableError{
		Reason: ReasonNoCandidates,
		msg:    "No model available to fulfill the request",
	}
}

// CredentialsMissing 供适配器在缺少 API Key 时返回
func CredentialsMissing(provider Provider, envVar string) error {
	return &UnavailableError{
		Reason:   ReasonCredentialsMissing,
		Provider: provider,
		msg:      fmt.Sprintf("%s is not configured", envVar),
	}
}

// ReasonOf 返回错误链中的不可用原因，非该类错误返回空串
func ReasonOf(err error) Reason {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.Reason
	}
	return ""
}
