package mailservice

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/bloglist/internal/common"
)

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	recipient string
	logger    MailLogger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	// sleep waits between send attempts and returns false when ctx is done.
	sleep func(ctx context.Context, d time.Duration) bool
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	Recipient string
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

type Mail struct {
	mu     sync.Mutex
	dialer Dialer
	parser TemplateParser
	sender string
}

type Mailer interface {
	send(recipient string, data any, templateFile string) error
}

type Template struct{}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateParser interface {
	ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error)
}

// WelcomeData is rendered into the user welcome template.
type WelcomeData struct {
	Username string
	Name     string
}
