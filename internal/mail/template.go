package mail

import (
	"bytes"
	"html/template"
	"time"

	"github.com/samber/oops"
)

// ResetSubject is the subject line of password reset mail
const ResetSubject = "Your password reset code"

var resetTemplate = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <h2>Password reset</h2>
  <p>Hi {{.Name}},</p>
  <p>Use this code to reset your password:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>The code expires in {{.Minutes}} minutes and can be used once.</p>
  <p>If you did not ask for a reset you can ignore this email.</p>
</body>
</html>
`))

// RenderReset renders the reset email body
func RenderReset(name, code string, validFor time.Duration) (string, error) {
	var buf bytes.Buffer
	err := resetTemplate.Execute(&buf, struct {
		Name    string
		Code    string
		Minutes int
	}{Name: name, Code: code, Minutes: int(validFor.Minutes())})
	if err != nil {
		return "", oops.Code("MAIL_TEMPLATE_FAILED").Wrap(err)
	}
	return buf.String(), nil
}
