package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/arjun/deadline-tracker/internal/core"
	"github.com/arjun/deadline-tracker/internal/ports"
)

const createdByTag = "deadline-tracker"

// GoogleCalendar writes deadline events to a Google Calendar using the
// Calendar API. Events carry private extended properties so they can be
// recognized (and filtered) on later reads.
type GoogleCalendar struct {
	svc        *calendar.Service
	calendarID string
	logger     *zap.Logger
}

// NewGoogleCalendar creates a calendar service authenticated with the
// OAuth credentials and cached token at the given paths.
func NewGoogleCalendar(ctx context.Context, credentialsFile, tokenFile, calendarID string, logger *zap.Logger) (*GoogleCalendar, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	httpClient, err := getOAuthClient(oauthConfig, tokenFile)
	if err != nil {
		return nil, err
	}
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID, logger: logger}, nil
}

func getOAuthClient(config *oauth2.Config, tokenFile string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = getTokenFromWeb(config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(context.Background(), tok), nil
}

func getTokenFromWeb(config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	tok, err := config.Exchange(context.TODO(), authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to save oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// CreateEvent inserts the event and returns the created event's ID
func (g *GoogleCalendar) CreateEvent(ctx context.Context, desc *core.EventDescriptor) (string, error) {
	ev := g.toCalendarEvent(desc)

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to insert calendar event: %w", err)
	}

	g.logger.Info("Created calendar event",
		zap.String("event_id", created.Id),
		zap.String("title", desc.Title),
		zap.Time("start", desc.Start))
	return created.Id, nil
}

func (g *GoogleCalendar) toCalendarEvent(desc *core.EventDescriptor) *calendar.Event {
	overrides := make([]*calendar.EventReminder, 0, len(desc.ReminderOffsetsMinutes))
	for _, minutes := range desc.ReminderOffsetsMinutes {
		// Short-notice reminders pop up, longer ones go out by email.
		method := "email"
		if minutes < 1440 {
			method = "popup"
		}
		overrides = append(overrides, &calendar.EventReminder{
			Method:  method,
			Minutes: int64(minutes),
		})
	}

	return &calendar.Event{
		Summary:     desc.Title,
		Description: desc.Description,
		Start: &calendar.EventDateTime{
			DateTime: desc.Start.Format(time.RFC3339),
			TimeZone: desc.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: desc.End.Format(time.RFC3339),
			TimeZone: desc.Timezone,
		},
		ColorId: desc.ColorID,
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
		Source: &calendar.EventSource{
			Title: "Deadline Tracker",
			Url:   "mailto:" + desc.Metadata.OriginalSender,
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{
				"email_id":        desc.Metadata.MessageID,
				"deadline_type":   string(desc.Metadata.DeadlineType),
				"created_by":      desc.Metadata.CreatedBy,
				"original_sender": desc.Metadata.OriginalSender,
			},
		},
	}
}

// EventExists reports whether an event whose title contains the subject
// prefix already sits on the given day.
func (g *GoogleCalendar) EventExists(ctx context.Context, subjectPrefix string, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	result, err := g.svc.Events.List(g.calendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		Q(subjectPrefix).
		SingleEvents(true).
		MaxResults(50).
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("failed to list calendar events: %w", err)
	}

	needle := strings.ToLower(subjectPrefix)
	for _, ev := range result.Items {
		if strings.Contains(strings.ToLower(ev.Summary), needle) {
			return true, nil
		}
	}
	return false, nil
}

// UpcomingReminders returns deadline events created by this system that
// start within the next daysAhead days.
func (g *GoogleCalendar) UpcomingReminders(ctx context.Context, daysAhead int) ([]ports.Reminder, error) {
	now := time.Now()
	result, err := g.svc.Events.List(g.calendarID).
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.AddDate(0, 0, daysAhead).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(50).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	var reminders []ports.Reminder
	for _, ev := range result.Items {
		if ev.ExtendedProperties == nil || ev.ExtendedProperties.Private["created_by"] != createdByTag {
			continue
		}
		start := now
		if ev.Start != nil && ev.Start.DateTime != "" {
			if parsed, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
				start = parsed
			}
		}
		reminders = append(reminders, ports.Reminder{
			ID:             ev.Id,
			Title:          ev.Summary,
			Start:          start,
			DeadlineType:   core.DeadlineType(ev.ExtendedProperties.Private["deadline_type"]),
			OriginalSender: ev.ExtendedProperties.Private["original_sender"],
			Link:           ev.HtmlLink,
		})
	}
	return reminders, nil
}

// DeleteReminder removes an event previously created by this system
func (g *GoogleCalendar) DeleteReminder(ctx context.Context, eventID string) error {
	if err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	g.logger.Info("Deleted calendar event", zap.String("event_id", eventID))
	return nil
}

var _ ports.CalendarService = (*GoogleCalendar)(nil)
