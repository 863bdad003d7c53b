package clients

import (
	"net/http"

	"go.uber.org/zap"
)

type (
	// NullNotifier for deployments with mail disabled
	NullNotifier struct {
		logger *zap.SugaredLogger
	}
)

// NewNullNotifier Create a dummy e-mail notifier
func NewNullNotifier(logger *zap.SugaredLogger) (*NullNotifier, error) {
	logger.Info("mail functionality is disabled, no e-mail will be sent")
	return &NullNotifier{logger: logger}, nil
}

// Send do nothing, return 200, "OK"
func (c *NullNotifier) Send(to []string, subject string, msg string) (int, string) {
	c.logger.Debugf("not sending mail to %s, disabled by server configuration: %s", to[0], subject)
	return http.StatusOK, "OK"
}
