package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

// copyText is the localized wording of one notification kind.
// Subject and Body are fmt patterns with indexed verbs: %[1]s is the
// counterpart name and %[2]s the date label.
type copyText struct {
	Subject string
	Heading string
	Body    string
	Extra   string
	Action  string
	Path    string
	Color   string
}

var catalog = map[domain.NotificationKind]map[domain.Locale]copyText{
	domain.NotifyInvitationReceived: {
		domain.LocaleEnglish: {
			Subject: "%[1]s wants to celebrate %[2]s with you!",
			Heading: "You have a new invitation!",
			Body:    "<strong>%[1]s</strong> has invited you to celebrate <strong>%[2]s</strong> together.",
			Extra:   "Log in to Nešvęsk Vienas to view the invitation and respond:",
			Action:  "View Invitation",
			Path:    "/dashboard",
			Color:   "#dc2626",
		},
		domain.LocaleLithuanian: {
			Subject: "%[1]s nori kartu su jumis švęsti %[2]s!",
			Heading: "Gavote naują kvietimą!",
			Body:    "<strong>%[1]s</strong> kviečia jus kartu švęsti <strong>%[2]s</strong>.",
			Extra:   "Prisijunkite prie Nešvęsk Vienas, kad peržiūrėtumėte kvietimą ir atsakytumėte:",
			Action:  "Peržiūrėti kvietimą",
			Path:    "/dashboard",
			Color:   "#dc2626",
		},
	},
	domain.NotifyInvitationAccepted: {
		domain.LocaleEnglish: {
			Subject: "%[1]s accepted your invitation for %[2]s!",
			Heading: "Great news! You have a match!",
			Body:    "<strong>%[1]s</strong> has accepted your invitation to celebrate <strong>%[2]s</strong> together.",
			Extra:   "You can now see their full contact details and coordinate your celebration!",
			Action:  "View Match Details",
			Path:    "/matches",
			Color:   "#16a34a",
		},
		domain.LocaleLithuanian: {
			Subject: "%[1]s priėmė jūsų kvietimą švęsti %[2]s!",
			Heading: "Puiki žinia! Radote porą!",
			Body:    "<strong>%[1]s</strong> priėmė jūsų kvietimą kartu švęsti <strong>%[2]s</strong>.",
			Extra:   "Dabar matote visus kontaktus ir galite susitarti dėl šventės!",
			Action:  "Peržiūrėti porą",
			Path:    "/matches",
			Color:   "#16a34a",
		},
	},
	domain.NotifyInvitationDeclined: {
		domain.LocaleEnglish: {
			Subject: "Update on your %[2]s invitation",
			Heading: "Invitation Update",
			Body:    "<strong>%[1]s</strong> is unable to join you for <strong>%[2]s</strong> this time.",
			Extra:   "Don't worry! There are many other people looking for company. Keep browsing!",
			Action:  "Browse More Profiles",
			Path:    "/browse",
			Color:   "#6b7280",
		},
		domain.LocaleLithuanian: {
			Subject: "Naujienos apie jūsų kvietimą švęsti %[2]s",
			Heading: "Kvietimo naujienos",
			Body:    "<strong>%[1]s</strong> šį kartą negalės prisijungti švęsti <strong>%[2]s</strong>.",
			Extra:   "Nenusiminkite! Daug žmonių ieško kompanijos. Naršykite toliau!",
			Action:  "Naršyti profilius",
			Path:    "/browse",
			Color:   "#6b7280",
		},
	},
	domain.NotifyNewMessage: {
		domain.LocaleEnglish: {
			Subject: "New message from %[1]s",
			Heading: "You have a new message!",
			Body:    "<strong>%[1]s</strong> sent you a message.",
			Action:  "Read Message",
			Path:    "/dashboard",
			Color:   "#dc2626",
		},
		domain.LocaleLithuanian: {
			Subject: "Nauja žinutė nuo %[1]s",
			Heading: "Gavote naują žinutę!",
			Body:    "<strong>%[1]s</strong> atsiuntė jums žinutę.",
			Action:  "Skaityti žinutę",
			Path:    "/dashboard",
			Color:   "#dc2626",
		},
	},
}

var footers = map[domain.Locale]string{
	domain.LocaleEnglish:    "Don't celebrate alone this holiday season!",
	domain.LocaleLithuanian: "Nešvęskite šių švenčių vieni!",
}

var layout = template.Must(template.New("email").Parse(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
<h1 style="color: {{.Color}};">{{.Heading}}</h1>
<p>{{.Body}}</p>
{{- if .Extra}}
<p>{{.Extra}}</p>
{{- end}}
<a href="{{.Link}}" style="display: inline-block; background: {{.Color}}; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; margin: 16px 0;">{{.Action}}</a>
<p style="color: #666; font-size: 14px;">{{.Footer}}</p>
</div>`))

type layoutData struct {
	Color   string
	Heading string
	Body    template.HTML
	Extra   string
	Link    string
	Action  string
	Footer  string
}

// Renderer turns outbox jobs into emails.
type Renderer struct {
	siteURL string
}

// NewRenderer creates a renderer linking to siteURL.
func NewRenderer(siteURL string) *Renderer {
	return &Renderer{siteURL: strings.TrimRight(siteURL, "/")}
}

// Render builds the email for job in the job's locale.
func (r *Renderer) Render(job *domain.NotificationJob) (Email, error) {
	byLocale, ok := catalog[job.Kind]
	if !ok {
		return Email{}, fmt.Errorf("unknown notification kind %q", job.Kind)
	}
	locale := job.Locale
	if !locale.Valid() {
		locale = domain.LocaleLithuanian
	}
	text := byLocale[locale]

	name := job.Payload.CounterpartName
	date := DateLabel(job.Payload.Date, locale)

	var buf bytes.Buffer
	err := layout.Execute(&buf, layoutData{
		Color:   text.Color,
		Heading: text.Heading,
		Body:    template.HTML(fmt.Sprintf(text.Body, template.HTMLEscapeString(name), template.HTMLEscapeString(date))), //#nosec G203 -- inputs escaped above
		Extra:   text.Extra,
		Link:    r.siteURL + text.Path,
		Action:  text.Action,
		Footer:  footers[locale],
	})
	if err != nil {
		return Email{}, fmt.Errorf("render %s: %w", job.Kind, err)
	}
	html := buf.String()

	return Email{
		To:             job.RecipientEmail,
		Subject:        fmt.Sprintf(text.Subject, name, date),
		HTML:           html,
		Text:           plainText(html),
		IdempotencyKey: IdempotencyKeyFor(job.ID),
	}, nil
}

// plainText converts the HTML body to Markdown for the text/plain part.
func plainText(html string) string {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}
