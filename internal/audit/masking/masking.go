package masking

import "strings"

const maskToken = "****"

var sensitiveKeys = map[string]struct{}{
	"account_number":  {},
	"clearing_number": {},
	"address":         {},
	"email":           {},
}

// MaskAccount redacts all but the last four characters of an account or
// clearing number.
func MaskAccount(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 4 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskSensitive returns a copy of input with the values of bank and contact
// keys masked. Other values pass through unchanged.
func MaskSensitive(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}

	masked := make(map[string]any, len(input))
	for key, value := range input {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		masked[key] = maskValue(key, value)
	}
	return masked
}

func maskValue(key string, value any) any {
	switch cast := value.(type) {
	case string:
		if _, ok := sensitiveKeys[strings.ToLower(key)]; ok {
			return MaskAccount(cast)
		}
		return cast
	case map[string]any:
		return MaskSensitive(cast)
	default:
		return value
	}
}
