package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"learnhub/backend/models"
	"learnhub/backend/utils"

	"github.com/bytedance/sonic"
)

const defaultEndpoint = "https://api.sendgrid.com/v3/mail/send"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html><body>
<h3>Welcome to LearnHub, {{.Name}}!</h3>
<p>Your account <b>{{.Username}}</b> is ready. Pick a course and start learning.</p>
<p><a href="{{.Link}}">Browse courses</a></p>
</body></html>`))

// SendGrid request format
type sgEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To []sgEmail `json:"to"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgEmail             `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

// Sender delivers mail through the SendGrid v3 HTTP API.
type Sender struct {
	apiKey   string
	from     sgEmail
	frontend string
	endpoint string
	client   *http.Client
}

func NewSender(apiKey, fromEmail, frontendURL string) *Sender {
	return &Sender{
		apiKey:   apiKey,
		from:     sgEmail{Email: fromEmail, Name: "LearnHub"},
		frontend: strings.TrimRight(frontendURL, "/"),
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint points the sender at a different API URL.
func (s *Sender) WithEndpoint(url string) *Sender {
	s.endpoint = url
	return s
}

func (s *Sender) SendWelcome(ctx context.Context, user models.User) error {
	name := user.FullName
	if name == "" {
		name = user.Username
	}
	var html bytes.Buffer
	if err := welcomeTemplate.Execute(&html, map[string]string{
		"Name":     name,
		"Username": user.Username,
		"Link":     s.frontend + "/courses",
	}); err != nil {
		return err
	}
	return s.send(ctx, sgEmail{Email: user.Email, Name: name}, "Welcome to LearnHub", html.String())
}

func (s *Sender) send(ctx context.Context, to sgEmail, subject, html string) error {
	body, err := sonic.Marshal(sgRequest{
		Personalizations: []sgPersonalization{{To: []sgEmail{to}}},
		From:             s.from,
		Subject:          subject,
		Content:          []sgContent{{Type: "text/html", Value: html}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SendGrid answers 202 on success.
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, msg)
	}
	return nil
}

// LogSender writes mails to the log instead of sending them. Used when no
// API key is configured.
type LogSender struct {
	log *utils.Logger
}

func NewLogSender(log *utils.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendWelcome(_ context.Context, user models.User) error {
	s.log.Info("welcome mail skipped, mailer not configured", "user_id", user.ID, "email", user.Email)
	return nil
}
