package jobs

import "strings"

// ValidatePayload checks the required IDs are present on a decoded payload.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobVideoProcess:
		var p VideoProcessPayload
		switch v := payload.(type) {
		case VideoProcessPayload:
			p = v
		case *VideoProcessPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.VideoID) == "" || trim(p.UserID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobVideoExport:
		var p VideoExportPayload
		switch v := payload.(type) {
		case VideoExportPayload:
			p = v
		case *VideoExportPayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.VideoID) == "" || trim(p.UserID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobPaymentExpire:
		var p PaymentExpirePayload
		switch v := payload.(type) {
		case PaymentExpirePayload:
			p = v
		case *PaymentExpirePayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.PaymentID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
