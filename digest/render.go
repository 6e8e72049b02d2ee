package digest

import (
	"bytes"
	"html/template"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
)

const subjectPrefix = "Daily Social Media Posts"

type postView struct {
	TypeLabel   string
	Time        string
	Relative    string
	Content     string
	ImageURL    string
	StatusLabel string
	StatusColor template.CSS
}

type emailView struct {
	BusinessName string
	DateLabel    string
	Posts        []postView
}

var emailTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Daily Social Media Posts</title>
  </head>
  <body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5;">
    <div style="max-width: 600px; margin: 40px auto; background-color: white; border-radius: 12px; overflow: hidden;">
      <div style="background: #1976d2; padding: 30px; text-align: center;">
        <h1 style="color: white; margin: 0; font-size: 24px;">Daily Social Media Posts</h1>
        <p style="color: white; margin: 10px 0 0 0; font-size: 16px;">{{.BusinessName}}</p>
      </div>
      <div style="padding: 30px;">
        <p style="color: #333; font-size: 16px; margin: 0 0 20px 0;">
          Here are your scheduled social media posts for <strong>{{.DateLabel}}</strong>:
        </p>
        {{- if .Posts}}
        {{- range .Posts}}
        <div style="margin-bottom: 20px; padding: 15px; border: 1px solid #e0e0e0; border-radius: 8px; background-color: #f9f9f9;">
          <div style="margin-bottom: 10px;">
            <span style="font-weight: bold; color: #1976d2;">{{.TypeLabel}}</span>
            <span style="color: #666; font-size: 14px;">Scheduled: {{.Time}} ({{.Relative}})</span>
          </div>
          {{- if .ImageURL}}
          <img src="{{.ImageURL}}" alt="Post image" style="max-width: 100%; height: auto; border-radius: 4px; margin-bottom: 10px;">
          {{- end}}
          <p style="margin: 10px 0; color: #333; line-height: 1.6;">{{.Content}}</p>
          <span style="display: inline-block; padding: 4px 12px; border-radius: 12px; font-size: 12px; color: white; background-color: {{.StatusColor}};">{{.StatusLabel}}</span>
        </div>
        {{- end}}
        {{- else}}
        <div style="text-align: center; padding: 40px 20px; color: #666;">
          <p style="font-size: 16px; margin: 0;">No posts scheduled for this day.</p>
          <p style="font-size: 14px; margin: 10px 0 0 0; color: #999;">Generate weekly posts to see them here.</p>
        </div>
        {{- end}}
        <div style="margin-top: 30px; padding-top: 20px; border-top: 2px solid #e0e0e0; text-align: center;">
          <p style="color: #666; font-size: 14px; margin: 0;">This is an automated notification from your Social Media Automation Platform.</p>
          <p style="color: #999; font-size: 12px; margin: 10px 0 0 0;">Posts will be automatically published at their scheduled times if approved.</p>
        </div>
      </div>
    </div>
  </body>
</html>
`))

// Subject is the email subject for day.
func Subject(day time.Time) string {
	return subjectPrefix + " - " + day.Format("January 2, 2006")
}

// Render builds the digest HTML for the posts of one business day. Times are
// shown in the business timezone; now anchors the relative times.
func Render(b domainBusiness.Business, day time.Time, posts []domainPost.Post, now time.Time) (string, error) {
	loc := b.Location()
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b domainPost.Post) int {
		return a.ScheduledFor.Compare(b.ScheduledFor)
	})

	view := emailView{
		BusinessName: b.BusinessName,
		DateLabel:    day.In(loc).Format("Monday, January 2, 2006"),
		Posts:        make([]postView, 0, len(sorted)),
	}
	for _, p := range sorted {
		view.Posts = append(view.Posts, postView{
			TypeLabel:   TypeLabel(p.PostType),
			Time:        p.ScheduledFor.In(loc).Format("3:04 PM"),
			Relative:    humanize.RelTime(p.ScheduledFor, now, "ago", "from now"),
			Content:     p.Content,
			ImageURL:    p.ImageURL,
			StatusLabel: capitalize(string(p.Status)),
			StatusColor: statusColor(p.Status),
		})
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TypeLabel is the human label of a post type.
func TypeLabel(t domainPost.Type) string {
	if t == domainPost.TypeFunFact {
		return "Fun Fact"
	}
	return capitalize(string(t))
}

func statusColor(s domainPost.Status) template.CSS {
	switch s {
	case domainPost.StatusApproved:
		return "#4caf50"
	case domainPost.StatusPosted:
		return "#2196f3"
	case domainPost.StatusFailed, domainPost.StatusRejected:
		return "#e53935"
	default:
		return "#ff9800"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
