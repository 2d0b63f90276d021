package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"sync"
	texttemplate "text/template"

	"github.com/rs/zerolog/log"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// Service renders templates and sends asynchronously through a Sender.
type Service struct {
	sender Sender
	base   *htmltemplate.Template
	html   map[string]*htmltemplate.Template
	text   map[string]*texttemplate.Template

	queue  chan *QueuedEmail
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewService parses the templates and starts the send worker.
func NewService(sender Sender) *Service {
	s := &Service{
		sender: sender,
		base:   htmltemplate.Must(htmltemplate.New("base").Parse(BaseTemplate)),
		html:   make(map[string]*htmltemplate.Template, len(htmlTemplates)),
		text:   make(map[string]*texttemplate.Template, len(textTemplates)),
		queue:  make(chan *QueuedEmail, 100),
	}

	for name, content := range htmlTemplates {
		s.html[name] = htmltemplate.Must(htmltemplate.New(name).Parse(content))
	}
	for name, content := range textTemplates {
		s.text[name] = texttemplate.Must(texttemplate.New(name).Parse(content))
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		if err := s.send(context.Background(), email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// Render produces the HTML and plain-text bodies of a template.
func (s *Service) Render(templateName string, data interface{}) (string, string, error) {
	htmlTmpl, ok := s.html[templateName]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, templateName)
	}

	var content bytes.Buffer
	if err := htmlTmpl.Execute(&content, data); err != nil {
		return "", "", err
	}

	var page bytes.Buffer
	if err := s.base.Execute(&page, map[string]interface{}{
		"Content": htmltemplate.HTML(content.String()),
	}); err != nil {
		return "", "", err
	}

	var text bytes.Buffer
	if textTmpl, ok := s.text[templateName]; ok {
		if err := textTmpl.Execute(&text, data); err != nil {
			return "", "", err
		}
	}

	return page.String(), text.String(), nil
}

func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	html, text, err := s.Render(email.TemplateName, email.Data)
	if err != nil {
		return err
	}

	return s.sender.Send(ctx, &Message{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: html,
		TextContent: text,
	})
}

// Queue adds an email to the async send queue. A full queue drops the email.
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		log.Warn().Str("to", to).Msg("Email service closed, dropping email")
		return
	}

	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// SendSync sends an email synchronously (blocking)
func (s *Service) SendSync(ctx context.Context, to, toName, templateName, subject string, data interface{}) error {
	return s.send(ctx, &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	})
}

// Close drains the queue and stops the worker.
func (s *Service) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
