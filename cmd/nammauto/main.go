// Command nammauto is a terminal client for the NammAuto server. It drives
// the same session store a UI would: log in as a rider or a driver, request
// and accept rides, and watch the polling loop keep both sides in sync.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"nammauto/internal/api"
	"nammauto/internal/session"
)

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "base URL of the NammAuto server")
	sessionPath := flag.String("session", ".namma_session.json", "path of the session file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := session.NewStore(api.NewClient(*serverURL), session.Options{
		Notifier:    session.LogNotifier{},
		SessionPath: *sessionPath,
	})

	if err := store.Restore(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "session restore failed: %v\n", err)
	}
	if user := store.CurrentUser(); user != nil {
		fmt.Printf("Resumed session as %s (%s)\n", user.Name, user.Role)
	}

	fmt.Println("Type 'help' for commands.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			break
		}
		run(ctx, store, args)
	}
}

func run(ctx context.Context, store *session.Store, args []string) {
	switch args[0] {
	case "help":
		fmt.Println(`commands:
  login <name> <phone> [user|driver]   log in (registers on first contact)
  logout                               clear the session
  status <online|busy|offline>         set driver availability
  drivers                              show the online-driver roster
  request <from> <to> [vehicle]        request a ride (passenger)
  pending                              show the pending-request queue (driver)
  accept <rideId> <price>              accept a pending ride (driver)
  complete <amount>                    finish the active ride (driver)
  cancel                               cancel the active ride
  review <rating> [text...]            submit feedback for a completed ride
  me                                   show session state
  quit`)

	case "login":
		if len(args) < 3 {
			fmt.Println("usage: login <name> <phone> [user|driver]")
			return
		}
		role := "user"
		if len(args) > 3 {
			role = args[3]
		}
		var vehicle *api.VehicleDetails
		if role == "driver" {
			vehicle = &api.VehicleDetails{Type: "Auto"}
		}
		_ = store.Login(ctx, args[1], role, "", args[2], vehicle)

	case "logout":
		store.Logout()
		fmt.Println("Logged out.")

	case "status":
		if len(args) < 2 {
			fmt.Println("usage: status <online|busy|offline>")
			return
		}
		_ = store.ToggleStatus(ctx, args[1])

	case "drivers":
		store.Sync(ctx)
		for _, d := range store.Drivers() {
			fmt.Printf("  %s  %s  ★%.1f\n", d.ID, d.Name, d.Rating)
		}

	case "request":
		if len(args) < 3 {
			fmt.Println("usage: request <from> <to> [vehicle]")
			return
		}
		vehicle := "Auto"
		if len(args) > 3 {
			vehicle = args[3]
		}
		_ = store.RequestRide(ctx, args[1], args[2], vehicle, "drop_off")

	case "pending":
		store.Sync(ctx)
		for _, r := range store.PendingRequests() {
			fmt.Printf("  %s  %s: %s -> %s (%s)\n", r.ID, r.PassengerName, r.From, r.To, r.Vehicle)
		}

	case "accept":
		if len(args) < 3 {
			fmt.Println("usage: accept <rideId> <price>")
			return
		}
		store.Sync(ctx)
		for _, r := range store.PendingRequests() {
			if r.ID == args[1] {
				_ = store.AcceptRide(ctx, r, args[2])
				return
			}
		}
		fmt.Println("ride not found in pending queue")

	case "complete":
		if len(args) < 2 {
			fmt.Println("usage: complete <amount>")
			return
		}
		if err := store.CompleteRide(ctx, args[1]); err == nil {
			stats := store.Stats()
			fmt.Printf("Session earnings: ₹%d across %d rides\n", stats.Earnings, stats.Rides)
		}

	case "cancel":
		_ = store.CancelRide(ctx)

	case "review":
		rating := 5
		var text string
		if len(args) > 1 {
			fmt.Sscanf(args[1], "%d", &rating)
		}
		if len(args) > 2 {
			text = strings.Join(args[2:], " ")
		}
		store.SubmitReview(rating, text)

	case "me":
		user := store.CurrentUser()
		if user == nil {
			fmt.Println("not logged in")
			return
		}
		fmt.Printf("%s (%s) phone=%s status=%s\n", user.Name, user.Role, user.Phone, user.Status)
		if booking := store.ActiveBooking(); booking != nil {
			fmt.Printf("booking: %s -> %s [%s] price=%s\n", booking.From, booking.To, booking.Status, booking.Price)
		}

	default:
		fmt.Printf("unknown command %q (try 'help')\n", args[0])
	}
}
