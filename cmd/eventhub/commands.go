package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/countdown"
	"eventhub/internal/validate"
	"eventhub/pkg/faults"
	"eventhub/pkg/models"
)

func printErr(err error) {
	label := "error"
	if kind, ok := faults.KindOf(err); ok {
		switch kind {
		case faults.Unauthenticated:
			label = "auth"
		case faults.Validation:
			label = "invalid"
		case faults.Network:
			label = "network"
		case faults.NotFound:
			label = "not found"
		case faults.ServerRejected:
			label = "rejected"
		}
	}
	fmt.Printf("  %s%s:%s %v\n", Red, label, Reset, err)
}

func (a *app) register(ctx context.Context, email, password string) {
	user, err := a.identity.SignUp(ctx, email, password)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %sregistered and signed in as %s%s\n", Green, user.Email, Reset)
}

func (a *app) login(ctx context.Context, email, password string) {
	user, err := a.identity.SignIn(ctx, email, password)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %ssigned in as %s%s\n", Green, user.Email, Reset)
	a.seedJoined(ctx)
}

func (a *app) loginWithGoogle(ctx context.Context, code string) {
	if code == "" {
		usage("google <code>")
		return
	}
	user, err := a.identity.SignInWithGoogle(ctx, code)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %ssigned in as %s%s\n", Green, user.Email, Reset)
	a.seedJoined(ctx)
}

// seedJoined pulls the server's joined list so local state refuses re-joins
// and listings carry the annotation.
func (a *app) seedJoined(ctx context.Context) {
	events, err := a.api.MyJoined(ctx)
	if err != nil {
		return
	}
	for _, e := range events {
		a.joins.MarkJoined(e.ID)
		a.view.MarkJoined(e.ID)
	}
}

func (a *app) whoami() {
	u := a.sess.Current()
	if u == nil {
		fmt.Printf("  %snot signed in%s\n", Dim, Reset)
		return
	}
	fmt.Printf("  uid:   %s\n", u.UID)
	fmt.Printf("  email: %s\n", u.Email)
	if u.DisplayName != "" {
		fmt.Printf("  name:  %s\n", u.DisplayName)
	}
	if u.PhotoURL != "" {
		fmt.Printf("  photo: %s\n", u.PhotoURL)
	}
}

func (a *app) updateProfile(ctx context.Context, name, photo string) {
	user, err := a.identity.UpdateProfile(ctx, name, photo)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %sprofile updated: %s%s\n", Green, user.DisplayName, Reset)
}

func (a *app) listEvents(ctx context.Context) {
	token := a.view.BeginLoad()
	events, err := a.api.Search(ctx, "")
	if err != nil {
		printErr(err)
		return
	}
	if !a.view.CompleteLoad(token, events) {
		return
	}
	a.printView()
}

func (a *app) setFilter(arg string) {
	t := models.EventType(arg)
	if t != "" && !models.ValidEventType(t) {
		fmt.Printf("  %sunknown event type %q%s (try types)\n", Red, arg, Reset)
		return
	}
	a.view.SetFilter(t)
	a.printView()
}

func (a *app) printView() {
	items := a.view.Events()
	if filter := a.view.Filter(); filter != "" {
		fmt.Printf("  %sfilter: %s%s\n", Dim, filter, Reset)
	}
	if len(items) == 0 {
		fmt.Printf("  %sno events%s\n", Dim, Reset)
		return
	}
	for _, it := range items {
		a.printRow(it.EventRecord, it.HasJoined)
	}
}

func (a *app) printRow(e models.EventRecord, hasJoined bool) {
	joinedTag := ""
	if hasJoined {
		joinedTag = fmt.Sprintf(" %s[joined]%s", Green, Reset)
	}
	remaining := countdown.Compute(e.Date, time.Now())
	fmt.Printf("  %s%-36s%s %s%-20s%s %s %s(%s)%s%s\n",
		Dim, e.ID, Reset,
		Bold, e.Title, Reset,
		e.EventType,
		Yellow, remaining, Reset,
		joinedTag)
}

func (a *app) showEvent(ctx context.Context, id string) {
	e, err := a.api.Get(ctx, id)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %s%s%s\n", Bold, e.Title, Reset)
	fmt.Printf("  type:      %s\n", e.EventType)
	fmt.Printf("  location:  %s\n", e.Location)
	fmt.Printf("  date:      %s\n", e.Date.Local().Format(time.RFC1123))
	fmt.Printf("  starts in: %s%s%s\n", Yellow, countdown.Compute(e.Date, time.Now()), Reset)
	fmt.Printf("  %s%s%s\n", Dim, e.Description, Reset)
	if a.view.HasJoined(e.ID) {
		fmt.Printf("  %syou have joined this event%s\n", Green, Reset)
	}
}

// watchEvent renders a live once-per-second countdown until the event starts
// or the user presses Enter.
func (a *app) watchEvent(ctx context.Context, id string) {
	e, err := a.api.Get(ctx, id)
	if err != nil {
		printErr(err)
		return
	}

	fmt.Printf("  %s%s%s (press Enter to stop)\n", Bold, e.Title, Reset)

	ticker := countdown.Start(e.Date, func(r countdown.Remaining) {
		fmt.Printf("\r  %s%-24s%s", Yellow, r, Reset)
	})
	a.scanner.Scan()
	ticker.Stop()
	fmt.Println()
}

func (a *app) joinEvent(ctx context.Context, id string) {
	if err := a.joins.Join(ctx, id, a.view); err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %sjoined%s\n", Green, Reset)
}

func (a *app) listJoined(ctx context.Context) {
	events, err := a.api.MyJoined(ctx)
	if err != nil {
		printErr(err)
		return
	}
	if len(events) == 0 {
		fmt.Printf("  %sno joined events%s\n", Dim, Reset)
		return
	}
	for _, e := range events {
		a.joins.MarkJoined(e.ID)
		a.view.MarkJoined(e.ID)
		a.printRow(e, true)
	}
}

// createEvent prompts for each field, validates locally, and submits.
func (a *app) createEvent(ctx context.Context) {
	req := models.CreateEventRequest{
		Title:       a.prompt("title"),
		Description: a.prompt("description"),
		Location:    a.prompt("location"),
		EventType:   models.EventType(a.prompt("type (see types)")),
		Thumbnail:   a.prompt("thumbnail url"),
	}

	dateStr := a.prompt("date (RFC3339, e.g. 2026-12-31T18:00:00Z)")
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		fmt.Printf("  %sinvalid date: %v%s\n", Red, err, Reset)
		return
	}
	req.Date = date

	// The gate runs at the submit instant, not when the form was opened.
	if err := validate.CreateEvent(req, time.Now()); err != nil {
		printErr(err)
		return
	}

	id, err := a.api.Create(ctx, req)
	if err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %screated %s%s\n", Green, id, Reset)
}

func (a *app) prompt(label string) string {
	fmt.Printf("  %s%s:%s ", Dim, label, Reset)
	if !a.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(a.scanner.Text())
}

func (a *app) listMine(ctx context.Context, eventType models.EventType) {
	if eventType != "" && !models.ValidEventType(eventType) {
		fmt.Printf("  %sunknown event type %q%s\n", Red, eventType, Reset)
		return
	}
	events, err := a.api.Mine(ctx, eventType)
	if err != nil {
		printErr(err)
		return
	}
	if len(events) == 0 {
		fmt.Printf("  %sno events of yours%s\n", Dim, Reset)
		return
	}
	for _, e := range events {
		a.printRow(e, a.view.HasJoined(e.ID))
	}
}

// updateEvent parses field=value pairs into a patch request.
func (a *app) updateEvent(ctx context.Context, id string, pairs []string) {
	var req models.UpdateEventRequest
	for _, pair := range pairs {
		field, value, ok := strings.Cut(pair, "=")
		if !ok {
			usage("update <event-id> <field>=<value> ...")
			return
		}
		switch field {
		case "title":
			req.Title = value
		case "description":
			req.Description = value
		case "location":
			req.Location = value
		case "type":
			req.EventType = models.EventType(value)
		case "thumbnail":
			req.Thumbnail = value
		case "date":
			date, err := time.Parse(time.RFC3339, value)
			if err != nil {
				fmt.Printf("  %sinvalid date: %v%s\n", Red, err, Reset)
				return
			}
			req.Date = date
		default:
			fmt.Printf("  %sunknown field %q%s\n", Red, field, Reset)
			return
		}
	}

	if err := validate.UpdateEvent(req, time.Now()); err != nil {
		printErr(err)
		return
	}

	if err := a.api.Patch(ctx, id, req); err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %supdated%s\n", Green, Reset)
}

func (a *app) deleteEvent(ctx context.Context, id string) {
	if err := a.api.Delete(ctx, id); err != nil {
		printErr(err)
		return
	}
	fmt.Printf("  %sdeleted%s\n", Green, Reset)
}
