package errors

import (
	"errors"
	"fmt"
)

// ProviderError carries the raw cause returned by an external provider
// (payment gateway, carrier, email service). Only logged, never sent to
// clients.
type ProviderError struct {
	Provider string
	Status   int
	Cause    string
}

func (p *ProviderError) Error() string {
	if p == nil {
		return ""
	}
	if p.Cause == "" {
		return fmt.Sprintf("%s: status %d", p.Provider, p.Status)
	}
	return fmt.Sprintf("%s: %s (status %d)", p.Provider, p.Cause, p.Status)
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	Provider       string `json:"provider,omitempty"`
	ProviderStatus int    `json:"provider_status,omitempty"`
	ProviderCause  string `json:"provider_cause,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var provErr *ProviderError
	if errors.As(err, &provErr) {
		d.Provider = provErr.Provider
		d.ProviderStatus = provErr.Status
		d.ProviderCause = provErr.Cause
	}

	return d
}
