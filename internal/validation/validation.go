package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
	videoIDRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// APIKeyPrefix is the fixed literal every Google API key starts with.
const APIKeyPrefix = "AIza"

const maxChannelInputLength = 200

type Validator struct {
	minKeyLength int
}

func New(minKeyLength int) *Validator {
	return &Validator{
		minKeyLength: minKeyLength,
	}
}

// ValidateAPIKey performs basic format validation on a user-supplied key
// before any network call is made with it.
func (v *Validator) ValidateAPIKey(key string) error {
	key = strings.TrimSpace(key)

	if key == "" {
		return fmt.Errorf("API key is empty")
	}
	if !strings.HasPrefix(key, APIKeyPrefix) {
		return fmt.Errorf("API key must start with %q", APIKeyPrefix)
	}
	if len(key) < v.minKeyLength {
		return fmt.Errorf("API key is too short (%d chars, need at least %d)", len(key), v.minKeyLength)
	}
	return nil
}

// ValidateChannelInput checks a user-supplied channel URL, handle or name
// for obvious garbage before resolution is attempted.
func (v *Validator) ValidateChannelInput(input string) error {
	input = strings.TrimSpace(input)

	if input == "" {
		return fmt.Errorf("channel input is empty")
	}
	if len(input) > maxChannelInputLength {
		return fmt.Errorf("channel input exceeds %d characters", maxChannelInputLength)
	}
	if strings.ContainsAny(input, "\n\r\t") {
		return fmt.Errorf("channel input contains control characters")
	}
	return nil
}

func IsValidChannelID(channelID string) bool {
	return channelIDRegex.MatchString(channelID)
}

func IsValidVideoID(videoID string) bool {
	return videoIDRegex.MatchString(videoID)
}
