package mail

import (
	"bytes"
	"html/template"
	"log"

	"github.com/openhall/session-registration/internal/model"
)

// Subjects for the two outbound message kinds.
const (
	reminderSubjectGeneral = "Event Reminder - Your Registration Details"
	reminderSubjectMember  = "Event Reminder - Your Member + Guest Registration"
	confirmSubject         = "Registration Confirmed"
)

// mailData is the single template context for all outbound mail.
type mailData struct {
	Reg     *model.Registration
	Session *model.Session
	Member  bool
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>{{if .Member}}Member + Guest Event Reminder{{else}}Event Reminder{{end}}</h2>
  <p>Dear {{.Reg.FirstName}} {{.Reg.LastName}},</p>
  <p>This is a friendly reminder about your upcoming session in <strong>2 days</strong>!</p>
  <h3>Your Registration Details:</h3>
  <table style="width: 100%; border-collapse: collapse;">
    {{if .Member}}<tr><td><strong>Member Name:</strong></td><td>{{.Reg.MemberFirstName}} {{.Reg.MemberLastName}}</td></tr>{{end}}
    <tr><td><strong>Name:</strong></td><td>{{.Reg.FirstName}} {{.Reg.LastName}}</td></tr>
    <tr><td><strong>Email:</strong></td><td>{{.Reg.Email}}</td></tr>
    <tr><td><strong>Phone:</strong></td><td>{{.Reg.Phone}}</td></tr>
    <tr><td><strong>Session:</strong></td><td><strong>{{.Session.Name}}</strong></td></tr>
    <tr><td><strong>Adults:</strong></td><td>{{.Reg.NumAdults}}</td></tr>
    <tr><td><strong>Number of Children:</strong></td><td>{{.Reg.NumChildren}}</td></tr>
    {{if .Reg.Children}}
    <tr><td valign="top"><strong>Children:</strong></td><td>
      {{range .Reg.Children}}{{.Name}} (Age: {{.Age}})<br>{{end}}
    </td></tr>
    {{end}}
  </table>
  <div style="background-color: #f0f0f0; padding: 15px; margin-top: 20px;">
    <p style="font-weight: 600;">Important Reminders:</p>
    <ul>
      <li>Please arrive 10-15 minutes before your scheduled session time</li>
      <li>Bring your entire party as registered</li>
      <li>Children must be accompanied by adults at all times</li>
    </ul>
  </div>
  <p>We look forward to seeing you!</p>
  <p style="color: #666; font-size: 12px;">This is an automated reminder email. Please do not reply to this message.</p>
</div>`))

var confirmTmpl = template.Must(template.New("confirm").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Registration Confirmed</h2>
  <p>Dear {{.Reg.FirstName}} {{.Reg.LastName}},</p>
  <p>Your registration for <strong>{{.Session.Name}}</strong> has been received.</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td><strong>Adults:</strong></td><td>{{.Reg.NumAdults}}</td></tr>
    <tr><td><strong>Children:</strong></td><td>{{.Reg.NumChildren}}</td></tr>
  </table>
  <p>A reminder will be emailed to you two days before the session.</p>
  <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply.</p>
</div>`))

// RenderReminder produces the subject and HTML body of the 2-day reminder
// for one registrant.
func RenderReminder(reg *model.Registration, session *model.Session) (subject, body string) {
	subject = reminderSubjectGeneral
	if reg.Kind == model.KindMember {
		subject = reminderSubjectMember
	}
	return subject, render(reminderTmpl, reg, session)
}

// RenderConfirmation produces the subject and HTML body of the registration
// confirmation message.
func RenderConfirmation(reg *model.Registration, session *model.Session) (subject, body string) {
	return confirmSubject, render(confirmTmpl, reg, session)
}

func render(t *template.Template, reg *model.Registration, session *model.Session) string {
	var buf bytes.Buffer
	data := mailData{Reg: reg, Session: session, Member: reg.Kind == model.KindMember}
	if err := t.Execute(&buf, data); err != nil {
		// Templates are compile-time constants; an execution failure is a
		// programming error worth surfacing loudly, but mail must not panic
		// the caller.
		log.Printf("mail: render %s: %v", t.Name(), err)
		return ""
	}
	return buf.String()
}
