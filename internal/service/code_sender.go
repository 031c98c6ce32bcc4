package service

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// logCodeSender writes verification codes to the application log instead of
// sending mail. Used in development and as the fallback when no email
// provider is configured.
type logCodeSender struct{}

// NewLogCodeSender creates a CodeSender that only logs.
func NewLogCodeSender() CodeSender {
	return logCodeSender{}
}

func (logCodeSender) SendCode(_ context.Context, email, code string) error {
	log.WithFields(log.Fields{
		"email": email,
		"code":  code,
	}).Info("verification code issued")
	return nil
}
