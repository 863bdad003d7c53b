package clients

import (
	"fmt"
	"net/http"
)

type (
	MockNotifier struct {
		sentEmails []*EmailArgs
	}

	EmailArgs struct {
		To      []string
		Subject string
		Msg     string
	}
)

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (c *MockNotifier) Send(to []string, subject string, msg string) (int, string) {
	details := fmt.Sprintf("Send message with subject[%s] to %v", subject, to)
	c.sentEmails = append(c.sentEmails, &EmailArgs{To: to, Subject: subject, Msg: msg})
	return http.StatusOK, details
}

func (c *MockNotifier) SentCount() int {
	return len(c.sentEmails)
}

func (c *MockNotifier) GetLastEmail() *EmailArgs {
	if len(c.sentEmails) == 0 {
		return nil
	}
	return c.sentEmails[len(c.sentEmails)-1]
}

func (c *MockNotifier) GetLastEmailSubject() string {
	if last := c.GetLastEmail(); last != nil {
		return last.Subject
	}
	return ""
}
