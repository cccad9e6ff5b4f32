package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

func parseSnowflakeID(value string) (snowflake.ID, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

// pathID parses a snowflake path parameter or reports a validation error
// naming the parameter.
func pathID(value, field string) (snowflake.ID, error) {
	id, ok := parseSnowflakeID(value)
	if !ok {
		return 0, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	return id, nil
}
