package utils

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// PanicIfNeeded panics with err so the recovery middleware can turn it into a response.
func PanicIfNeeded(err any, message ...string) {
	if err == nil {
		return
	}
	if e, ok := err.(error); ok && e == nil {
		return
	}
	if len(message) > 0 {
		logrus.Errorf("%s: %v", message[0], err)
	}
	panic(err)
}

// IsAny reports whether err matches any of targets.
func IsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
