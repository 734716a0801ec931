package main

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	HandshakeTimeout  time.Duration `env:"HANDSHAKE_TIMEOUT,required=true"`
	FanoutBufferSize  int           `env:"FANOUT_BUFFER_SIZE,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	InvitationBaseURL string        `env:"INVITATION_BASE_URL,required=true"`
	BannedWords       string        `env:"BANNED_WORDS"`
	CharReplacement   string        `env:"CHARACTER_REPLACEMENT,default=*"`
	WSSkipOriginCheck bool          `env:"WS_SKIP_ORIGIN_CHECK,default=false"`
}

// BannedWordList splits the configured comma-separated banned words.
func (c Config) BannedWordList() []string {
	if c.BannedWords == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(c.BannedWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// CharacterRune validates that the replacement is a single character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
