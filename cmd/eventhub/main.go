// Command eventhub is an interactive shell over the community events
// platform: browse and filter listings, watch countdowns, join events, and
// manage your own events and profile.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"eventhub/internal/collection"
	"eventhub/internal/identity"
	"eventhub/internal/join"
	"eventhub/internal/platform"
	"eventhub/internal/session"
	"eventhub/pkg/config"
	"eventhub/pkg/models"
)

// ANSI
const (
	Reset    = "\033[0m"
	Bold     = "\033[1m"
	Dim      = "\033[2m"
	Black    = "\033[30m"
	Green    = "\033[32m"
	Yellow   = "\033[33m"
	Red      = "\033[31m"
	Cyan     = "\033[36m"
	BgGreen  = "\033[42m"
	BgCyan   = "\033[46m"
	BgDkGray = "\033[100m"
)

// app bundles everything a shell command needs.
type app struct {
	scanner  *bufio.Scanner
	sess     *session.Manager
	identity *identity.Client
	api      *platform.Client
	joins    *join.Coordinator
	view     *collection.View
}

func newApp() *app {
	config.LoadEnv()
	cfg := config.Load()

	// Keep client-side log noise out of the shell.
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	logger, err := logCfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	sess := session.NewManager()
	idc := identity.NewClient(cfg.IdentityBaseURL, cfg.IdentityAPIKey, sess, cfg.HTTPTimeout, logger)
	api := platform.NewClient(cfg.APIBaseURL, sess, cfg.HTTPTimeout, logger)

	a := &app{
		scanner:  bufio.NewScanner(os.Stdin),
		sess:     sess,
		identity: idc,
		api:      api,
		joins:    join.NewCoordinator(api, sess),
		view:     collection.NewView(),
	}

	sess.Subscribe(func(u *models.User) {
		if u == nil {
			fmt.Printf("  %ssigned out%s\n", Dim, Reset)
		}
	})

	return a
}

func main() {
	a := newApp()
	clearScreen()
	printBanner()
	a.shellLoop()
}

func (a *app) shellLoop() {
	for {
		fmt.Print(a.buildPrompt())

		if !a.scanner.Scan() {
			break
		}

		input := strings.TrimSpace(a.scanner.Text())
		if input == "" {
			continue
		}

		ctx := context.Background()

		switch {
		case input == "exit" || input == "quit" || input == "q":
			fmt.Printf("\n%s%s  Bye %s\n\n", BgCyan, Black, Reset)
			return

		case input == "help" || input == "?":
			printHelp()

		case input == "clear" || input == "cls":
			clearScreen()
			printBanner()

		case input == "types":
			for _, t := range models.EventTypes {
				fmt.Printf("  %s\n", t)
			}

		case strings.HasPrefix(input, "register "):
			parts := strings.Fields(input)
			if len(parts) != 3 {
				usage("register <email> <password>")
			} else {
				a.register(ctx, parts[1], parts[2])
			}

		case strings.HasPrefix(input, "login "):
			parts := strings.Fields(input)
			if len(parts) != 3 {
				usage("login <email> <password>")
			} else {
				a.login(ctx, parts[1], parts[2])
			}

		case strings.HasPrefix(input, "google "):
			a.loginWithGoogle(ctx, strings.TrimSpace(strings.TrimPrefix(input, "google ")))

		case input == "logout":
			a.identity.SignOut()

		case input == "whoami":
			a.whoami()

		case strings.HasPrefix(input, "profile "):
			parts := strings.Fields(input)
			photo := ""
			if len(parts) > 2 {
				photo = parts[2]
			}
			if len(parts) < 2 {
				usage("profile <display-name> [photo-url]")
			} else {
				a.updateProfile(ctx, parts[1], photo)
			}

		case input == "events":
			a.listEvents(ctx)

		case strings.HasPrefix(input, "filter"):
			a.setFilter(strings.TrimSpace(strings.TrimPrefix(input, "filter")))

		case strings.HasPrefix(input, "event "):
			a.showEvent(ctx, strings.TrimSpace(strings.TrimPrefix(input, "event ")))

		case strings.HasPrefix(input, "watch "):
			a.watchEvent(ctx, strings.TrimSpace(strings.TrimPrefix(input, "watch ")))

		case strings.HasPrefix(input, "join "):
			a.joinEvent(ctx, strings.TrimSpace(strings.TrimPrefix(input, "join ")))

		case input == "joined":
			a.listJoined(ctx)

		case input == "create":
			a.createEvent(ctx)

		case input == "mine":
			a.listMine(ctx, "")

		case strings.HasPrefix(input, "mine "):
			a.listMine(ctx, models.EventType(strings.TrimSpace(strings.TrimPrefix(input, "mine "))))

		case strings.HasPrefix(input, "update "):
			parts := strings.Fields(input)
			if len(parts) < 3 {
				usage("update <event-id> <field>=<value> ...")
			} else {
				a.updateEvent(ctx, parts[1], parts[2:])
			}

		case strings.HasPrefix(input, "delete "):
			a.deleteEvent(ctx, strings.TrimSpace(strings.TrimPrefix(input, "delete ")))

		default:
			fmt.Printf("  %sunknown command%s (try help)\n", Red, Reset)
		}

		fmt.Println()
	}
}

func (a *app) buildPrompt() string {
	barBg := BgDkGray
	who := "guest"
	if u := a.sess.Current(); u != nil {
		barBg = BgGreen
		who = u.Email
		if u.DisplayName != "" {
			who = u.DisplayName
		}
	}

	bar := fmt.Sprintf("%s%s eventhub | %s %s", barBg, Black, who, Reset)
	return fmt.Sprintf("%s\n%s>%s ", bar, Cyan, Reset)
}

func printBanner() {
	fmt.Printf("%s%s  eventhub %s community events shell, type %shelp%s for commands\n\n",
		BgCyan, Black, Reset, Bold, Reset)
}

func printHelp() {
	help := [][2]string{
		{"register <email> <password>", "create an account and sign in"},
		{"login <email> <password>", "sign in"},
		{"google <code>", "sign in with a federated authorization code"},
		{"logout", "sign out"},
		{"whoami", "show the current user"},
		{"profile <name> [photo-url]", "update display name and photo"},
		{"events", "fetch and show upcoming events"},
		{"filter [type]", "set or clear the listing's type filter"},
		{"types", "list the valid event types"},
		{"event <id>", "show one event"},
		{"watch <id>", "live countdown until the event starts"},
		{"join <id>", "join an event"},
		{"joined", "list events you have joined"},
		{"create", "create an event (prompts for fields)"},
		{"mine [type]", "list events you created"},
		{"update <id> <field>=<value>", "patch an event you created"},
		{"delete <id>", "delete an event you created"},
		{"clear", "clear the screen"},
		{"exit", "leave the shell"},
	}
	for _, h := range help {
		fmt.Printf("  %s%-34s%s %s\n", Cyan, h[0], Reset, h[1])
	}
}

func usage(s string) {
	fmt.Printf("  %sUsage: %s%s\n", Red, s, Reset)
}

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}
