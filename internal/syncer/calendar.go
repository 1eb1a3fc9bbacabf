package syncer

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/myconcall-sys/myconcall/pkg/common"
	"github.com/myconcall-sys/myconcall/pkg/logger"
)

// concallIDProperty is the out-of-band metadata key carrying the identity
// fingerprint on every published calendar record.
const concallIDProperty = "concall_id"

const calendarPageSize = 500

// GoogleCalendarStore implements CalendarStore against the Google Calendar
// API. One store serves both calendar targets; the calendar id is passed per
// call.
type GoogleCalendarStore struct {
	svc    *calendar.Service
	logger *logger.Logger
}

// NewGoogleCalendarStore creates a CalendarStore.
func NewGoogleCalendarStore(ctx context.Context, creds option.ClientOption, log *logger.Logger) (*GoogleCalendarStore, error) {
	svc, err := calendar.NewService(ctx, creds, option.WithScopes(calendar.CalendarScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendarStore{svc: svc, logger: log}, nil
}

// LoadIndex lists records starting at or after from and indexes them by
// concall_id. Records without the metadata key are not ours and are ignored.
func (s *GoogleCalendarStore) LoadIndex(ctx context.Context, calendarID string, from time.Time) (map[string]CalendarRecord, error) {
	idx := make(map[string]CalendarRecord)

	pageToken := ""
	for {
		call := s.svc.Events.List(calendarID).
			TimeMin(from.UTC().Format(time.RFC3339)).
			SingleEvents(true).
			MaxResults(calendarPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list calendar events: %w", err)
		}

		for _, item := range resp.Items {
			if item.ExtendedProperties == nil {
				continue
			}
			id := item.ExtendedProperties.Private[concallIDProperty]
			if id == "" {
				continue
			}
			idx[id] = CalendarRecord{
				RecordID:    item.Id,
				Summary:     item.Summary,
				Description: item.Description,
				ColorID:     item.ColorId,
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return idx, nil
}

// Insert creates a new calendar record carrying the concall_id metadata.
func (s *GoogleCalendarStore) Insert(ctx context.Context, calendarID string, entry CalendarEntry) error {
	_, err := s.svc.Events.Insert(calendarID, toGoogleEvent(entry)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to insert calendar event: %w", err)
	}
	return nil
}

// Update overwrites an existing record in place.
func (s *GoogleCalendarStore) Update(ctx context.Context, calendarID, recordID string, entry CalendarEntry) error {
	_, err := s.svc.Events.Update(calendarID, recordID, toGoogleEvent(entry)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update calendar event: %w", err)
	}
	return nil
}

func toGoogleEvent(entry CalendarEntry) *calendar.Event {
	return &calendar.Event{
		Summary:     entry.Summary,
		Description: entry.Description,
		ColorId:     entry.ColorID,
		Start: &calendar.EventDateTime{
			DateTime: entry.Start.Format(time.RFC3339),
			TimeZone: common.TimeZoneIST,
		},
		End: &calendar.EventDateTime{
			DateTime: entry.End.Format(time.RFC3339),
			TimeZone: common.TimeZoneIST,
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{concallIDProperty: entry.ConcallID},
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 15},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
	}
}
