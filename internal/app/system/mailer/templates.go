// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// AssignmentEmailData holds data for event-assignment email templates.
type AssignmentEmailData struct {
	SiteName  string
	StaffName string
	EventName string
	Role      string
	StartAt   time.Time
	EndAt     time.Time
	Location  string
}

// BuildAssignmentEmail creates the email sent when a staff member is
// assigned to an event role.
func BuildAssignmentEmail(data AssignmentEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("You have been assigned: %s", data.EventName),
		TextBody: buildAssignmentText(data),
		HTMLBody: buildAssignmentHTML(data),
	}
}

func buildAssignmentText(data AssignmentEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.StaffName))
	buf.WriteString(fmt.Sprintf("You have been assigned as %s for %s.\n\n", data.Role, data.EventName))
	buf.WriteString(fmt.Sprintf("When: %s to %s\n",
		data.StartAt.Format("Mon, 2 Jan 2006 15:04 MST"),
		data.EndAt.Format("15:04 MST")))
	if data.Location != "" {
		buf.WriteString(fmt.Sprintf("Where: %s\n", data.Location))
	}
	buf.WriteString(fmt.Sprintf("\nSign in to %s for details.\n", data.SiteName))
	return buf.String()
}

func buildAssignmentHTML(data AssignmentEmailData) string {
	tmpl := template.Must(template.New("assignment").Parse(assignmentHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// ShiftEmailData holds data for shift-assignment and reminder emails.
type ShiftEmailData struct {
	SiteName    string
	StaffName   string
	EventName   string
	Role        string
	StartAt     time.Time
	EndAt       time.Time
	Location    string
	CheckInCode string
}

// BuildShiftEmail creates the email sent when a shift is scheduled for
// a staff member, including the on-site check-in code.
func BuildShiftEmail(data ShiftEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Shift scheduled: %s", data.EventName),
		TextBody: buildShiftText(data),
		HTMLBody: buildShiftHTML(data),
	}
}

func buildShiftText(data ShiftEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.StaffName))
	buf.WriteString(fmt.Sprintf("Your %s shift for %s is scheduled.\n\n", data.Role, data.EventName))
	buf.WriteString(fmt.Sprintf("When: %s to %s\n",
		data.StartAt.Format("Mon, 2 Jan 2006 15:04 MST"),
		data.EndAt.Format("15:04 MST")))
	if data.Location != "" {
		buf.WriteString(fmt.Sprintf("Where: %s\n", data.Location))
	}
	if data.CheckInCode != "" {
		buf.WriteString(fmt.Sprintf("Check-in code: %s\n", data.CheckInCode))
	}
	buf.WriteString(fmt.Sprintf("\nSign in to %s for details.\n", data.SiteName))
	return buf.String()
}

func buildShiftHTML(data ShiftEmailData) string {
	tmpl := template.Must(template.New("shift").Parse(shiftHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const assignmentHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Event Assignment</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.StaffName}}, you have been assigned as <strong>{{.Role}}</strong> for:
              </p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 20px; font-weight: 700; color: #1f2937;">{{.EventName}}</span>
              </div>
              <p style="margin: 0; font-size: 14px; color: #6b7280; text-align: center;">
                {{.StartAt.Format "Mon, 2 Jan 2006 15:04"}} &ndash; {{.EndAt.Format "15:04"}}{{if .Location}}<br>{{.Location}}{{end}}
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const shiftHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Shift Scheduled</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hi {{.StaffName}}, your <strong>{{.Role}}</strong> shift for {{.EventName}} is scheduled.
              </p>
              {{if .CheckInCode}}
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1f2937; font-family: 'Courier New', monospace;">{{.CheckInCode}}</span>
              </div>
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280; text-align: center;">
                Present this code at check-in.
              </p>
              {{end}}
              <p style="margin: 0; font-size: 14px; color: #6b7280; text-align: center;">
                {{.StartAt.Format "Mon, 2 Jan 2006 15:04"}} &ndash; {{.EndAt.Format "15:04"}}{{if .Location}}<br>{{.Location}}{{end}}
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
