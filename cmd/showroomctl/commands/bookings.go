package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/WessleyAI/showroom/engine/schedule"
	"github.com/WessleyAI/showroom/pkg/natsutil"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var errNoNATS = errors.New("bookings: NATS_URL is not set")

func formatBooking(b schedule.Booking) string {
	return fmt.Sprintf("%s  %-10s  %s  %s %s  %s <%s>",
		b.RequestedAt.Local().Format(time.DateTime), b.Kind, b.Vehicle, b.Date, b.Time, b.Name, b.Email)
}

func bookingsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "Prints test drive requests as the server accepts them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if e.cfg.NATSURL == "" {
				return errNoNATS
			}
			nc, err := nats.Connect(e.cfg.NATSURL, nats.Name("showroomctl"))
			if err != nil {
				return err
			}
			defer nc.Close()
			return watchBookings(cmd.Context(), nc, cmd.OutOrStdout())
		},
	}
}

// watchBookings prints every booking until ctx ends.
func watchBookings(ctx context.Context, nc *nats.Conn, w io.Writer) error {
	var mu sync.Mutex
	sub, err := natsutil.Subscribe(nc, schedule.Subject, func(_ context.Context, b schedule.Booking) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(w, formatBooking(b))
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()
	<-ctx.Done()
	return nil
}
