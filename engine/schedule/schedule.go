// Package schedule accepts test drive requests and phrases their
// confirmations. Accepted requests are announced on NATS when configured.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/cascade"
	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/storage"
	"github.com/WessleyAI/showroom/pkg/metrics"
	"github.com/WessleyAI/showroom/pkg/natsutil"
	"github.com/google/uuid"
)

// Storage keys remembered for prefilling the quick form.
const (
	KeyUserName  = "userName"
	KeyUserEmail = "userEmail"
)

// Subject carries accepted bookings.
const Subject = "showroom.testdrive.requested"

// Booking kinds.
const (
	KindTestDrive = "test_drive"
	KindQuick     = "quick"
)

// TestDriveRequest is the cascade-driven form.
type TestDriveRequest struct {
	cascade.Selection
	Date  string `json:"date"`
	Time  string `json:"time"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes,omitempty"`
}

// QuickRequest is the free-text form.
type QuickRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Vehicle string `json:"vehicle"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// Confirmation acknowledges an accepted request.
type Confirmation struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Prefill holds the remembered contact details.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Booking is the event published for every accepted request.
type Booking struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Visitor     string    `json:"visitor"`
	Vehicle     string    `json:"vehicle"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Notes       string    `json:"notes,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Service handles both forms.
type Service struct {
	lookup  carquery.Lookup
	years   domain.YearRange
	store   storage.Storage
	events  natsutil.Publisher // nil disables events
	logger  *slog.Logger
	metrics *metrics.Showroom
	now     func() time.Time
}

// New creates a Service. events and m may be nil.
func New(lookup carquery.Lookup, years domain.YearRange, store storage.Storage, events natsutil.Publisher, logger *slog.Logger, m *metrics.Showroom) *Service {
	return &Service{
		lookup:  lookup,
		years:   years,
		store:   store,
		events:  events,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// TestDriveMessage phrases the test drive confirmation.
func TestDriveMessage(s cascade.Summary, date, tm, email string) string {
	return fmt.Sprintf("Request received for %d %s %s %s on %s at %s. We will email %s soon.",
		s.Year, s.Make, s.Model, s.Trim, date, tm, email)
}

// QuickMessage phrases the quick form confirmation.
func QuickMessage(name, vehicle, date, tm, email string) string {
	return fmt.Sprintf("Thank you, %s! Your request to test drive \"%s\" on %s at %s has been received. We will contact you at %s to confirm.",
		name, vehicle, date, tm, email)
}

// TestDrive validates the selection by replaying it through a fresh cascade
// and confirms the request.
func (s *Service) TestDrive(ctx context.Context, visitor string, req TestDriveRequest) (Confirmation, error) {
	if err := domain.Required("date", req.Date, "time", req.Time, "name", req.Name, "email", req.Email); err != nil {
		return Confirmation{}, err
	}
	c := cascade.New(s.lookup, cascade.TestDriveLabels, s.years)
	if err := c.Resolve(ctx, req.Selection); err != nil {
		return Confirmation{}, fmt.Errorf("schedule: %w", err)
	}
	sum, err := c.Summary()
	if err != nil {
		return Confirmation{}, err
	}

	b := s.booking(KindTestDrive, visitor)
	b.Vehicle = strings.Join([]string{fmt.Sprint(sum.Year), sum.Make, sum.Model, sum.Trim}, " ")
	b.Date, b.Time, b.Name, b.Email, b.Notes = req.Date, req.Time, req.Name, req.Email, strings.TrimSpace(req.Notes)
	s.announce(ctx, b)

	return Confirmation{ID: b.ID, Message: TestDriveMessage(sum, req.Date, req.Time, req.Email)}, nil
}

// Quick confirms a free-text request and remembers the contact details.
func (s *Service) Quick(ctx context.Context, visitor string, req QuickRequest) (Confirmation, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Vehicle = strings.TrimSpace(req.Vehicle)
	if err := domain.Required("name", req.Name, "email", req.Email, "vehicle", req.Vehicle, "date", req.Date, "time", req.Time); err != nil {
		return Confirmation{}, err
	}
	if err := s.store.SetItem(ctx, visitor, KeyUserName, req.Name); err != nil {
		return Confirmation{}, fmt.Errorf("schedule: remember name: %w", err)
	}
	if err := s.store.SetItem(ctx, visitor, KeyUserEmail, req.Email); err != nil {
		return Confirmation{}, fmt.Errorf("schedule: remember email: %w", err)
	}

	b := s.booking(KindQuick, visitor)
	b.Vehicle, b.Date, b.Time, b.Name, b.Email = req.Vehicle, req.Date, req.Time, req.Name, req.Email
	s.announce(ctx, b)

	return Confirmation{ID: b.ID, Message: QuickMessage(req.Name, req.Vehicle, req.Date, req.Time, req.Email)}, nil
}

// Prefill returns the contact details saved by the last quick request.
func (s *Service) Prefill(ctx context.Context, visitor string) (Prefill, error) {
	var p Prefill
	var err error
	if p.Name, _, err = s.store.GetItem(ctx, visitor, KeyUserName); err != nil {
		return Prefill{}, fmt.Errorf("schedule: prefill: %w", err)
	}
	if p.Email, _, err = s.store.GetItem(ctx, visitor, KeyUserEmail); err != nil {
		return Prefill{}, fmt.Errorf("schedule: prefill: %w", err)
	}
	return p, nil
}

func (s *Service) booking(kind, visitor string) Booking {
	return Booking{ID: uuid.NewString(), Kind: kind, Visitor: visitor, RequestedAt: s.now().UTC()}
}

// announce publishes b. Publishing never fails the request.
func (s *Service) announce(ctx context.Context, b Booking) {
	if s.metrics != nil {
		s.metrics.Bookings.Inc()
	}
	if s.events == nil {
		return
	}
	if err := natsutil.Publish(ctx, s.events, Subject, b); err != nil {
		s.logger.Warn("booking event not published", "id", b.ID, "err", err)
	}
}
