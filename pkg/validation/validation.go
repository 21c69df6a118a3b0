package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalid is the root of every validation failure so callers can
// classify them with errors.Is.
var ErrInvalid = errors.New("validation failed")

var displayNameRegex = regexp.MustCompile(`^[\p{L}\p{N} ._-]+$`)

const (
	maxDisplayNameLen = 50
	maxChannelNameLen = 100
	maxDetailsLen     = 500
	minPasswordLen    = 8
	maxPasswordLen    = 128
)

// ValidateChannelName checks the name given to a new channel.
func ValidateChannelName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: channel name is required", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > maxChannelNameLen {
		return fmt.Errorf("%w: channel name is too long (max %d characters)", ErrInvalid, maxChannelNameLen)
	}
	return nil
}

// ValidateChannelDetails checks the description given to a new channel.
func ValidateChannelDetails(details string) error {
	details = strings.TrimSpace(details)
	if details == "" {
		return fmt.Errorf("%w: channel details are required", ErrInvalid)
	}
	if utf8.RuneCountInString(details) > maxDetailsLen {
		return fmt.Errorf("%w: channel details are too long (max %d characters)", ErrInvalid, maxDetailsLen)
	}
	return nil
}

// ValidateDisplayName checks a display name at registration.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: display name is required", ErrInvalid)
	}
	if utf8.RuneCountInString(name) > maxDisplayNameLen {
		return fmt.Errorf("%w: display name is too long (max %d characters)", ErrInvalid, maxDisplayNameLen)
	}
	if !displayNameRegex.MatchString(name) {
		return fmt.Errorf("%w: display name contains invalid characters", ErrInvalid)
	}
	return nil
}

// ValidatePassword checks a password at registration.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password is too long (max %d characters)", ErrInvalid, maxPasswordLen)
	}
	return nil
}

// ValidateUploadSize bounds the raw avatar upload.
func ValidateUploadSize(size, limit int64) error {
	if size <= 0 {
		return fmt.Errorf("%w: upload is empty", ErrInvalid)
	}
	if size > limit {
		return fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalid, limit)
	}
	return nil
}
