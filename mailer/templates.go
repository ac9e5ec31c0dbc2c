package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

const (
	SubjectActionRequired = "[Action Required] Please Review Your Post"
	SubjectAutoReview     = "Auto Review Notification"
	SubjectReview         = "Review Notification"
)

var layout = template.Must(template.New("email").Parse(`<html>
  <body style="font-family:Arial,sans-serif;background:#f4f4f4;padding:20px;">
    <div style="max-width:600px;margin:auto;background:#ffffff;border-radius:8px;overflow:hidden;">
      <div style="background:#4a90e2;color:#ffffff;padding:16px 24px;">
        <h2 style="margin:0;">{{.Title}}</h2>
      </div>
      <div style="padding:24px;">
        <p style="font-size:16px;line-height:1.5;">Dear {{.Recipient}},</p>
        {{range .Paragraphs}}<p style="font-size:16px;line-height:1.5;">{{.}}</p>
        {{end}}{{if .Link}}<p><a href="{{.Link}}" style="background:#4a90e2;color:#ffffff;padding:10px 18px;border-radius:4px;text-decoration:none;">{{.LinkText}}</a></p>
        {{end}}<p style="font-size:14px;color:#888888;">Thank you,<br/>The Moderation Team</p>
      </div>
    </div>
  </body>
</html>`))

type Email struct {
	Title      string
	Recipient  string
	Paragraphs []string
	Link       string
	LinkText   string
}

func Render(e Email) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Paragraphs turns each non-empty line of body into its own paragraph.
func Paragraphs(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func ActionRequired(recipient, content, comment, editURL string) (Message, error) {
	html, err := Render(Email{
		Title:     "Please Review Your Post",
		Recipient: recipient,
		Paragraphs: []string{
			"Our review found that one of your posts may come across as negative:",
			"“" + content + "”",
			comment,
			"You can edit your post using the link below.",
		},
		Link:     editURL,
		LinkText: "Edit your post",
	})
	return Message{Subject: SubjectActionRequired, HTML: html}, err
}

func AutoReview(recipient, content, comment string) (Message, error) {
	html, err := Render(Email{
		Title:      SubjectAutoReview,
		Recipient:  recipient,
		Paragraphs: []string{"Your post:", "“" + content + "”", comment},
	})
	return Message{Subject: SubjectAutoReview, HTML: html}, err
}

func Review(recipient, body string) (Message, error) {
	html, err := Render(Email{
		Title:      SubjectReview,
		Recipient:  recipient,
		Paragraphs: Paragraphs(body),
	})
	return Message{Subject: SubjectReview, HTML: html}, err
}
