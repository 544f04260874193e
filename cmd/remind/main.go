// Command remind runs the reminder dispatch from the command line, for hosts
// where an external cron entry is preferred over the in-process scheduler.
//
// Usage:
//
//	remind                    dispatch sessions two days ahead
//	remind "Session Name"     dispatch one session regardless of date
//	remind --list-sessions    print session names that have registrations
//	remind --dry-run [name]   tally without sending or recording
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/openhall/session-registration/internal/config"
	"github.com/openhall/session-registration/internal/database"
	"github.com/openhall/session-registration/internal/mail"
	"github.com/openhall/session-registration/internal/repository"
	"github.com/openhall/session-registration/internal/service"
)

func main() {
	listSessions := flag.Bool("list-sessions", false, "print session names that have registrations and exit")
	dryRun := flag.Bool("dry-run", false, "tally what would be sent without sending or recording")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sessionRepo := repository.NewSessionRepo(db)
	regRepo := repository.NewRegistrationRepo(db)

	if *listSessions {
		names, err := regRepo.SessionNames(ctx)
		if err != nil {
			log.Fatalf("list sessions: %v", err)
		}
		if len(names) == 0 {
			fmt.Println("no sessions have registrations")
			return
		}
		fmt.Println("sessions with registrations:")
		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}
		return
	}

	var mailer mail.Mailer
	if m := mail.NewSMTPMailer(cfg); m != nil {
		mailer = m
	} else if !*dryRun {
		log.Fatal("SMTP is not configured; set SMTP_HOST and MAIL_FROM or use --dry-run")
	}

	pace := time.Duration(cfg.ReminderPaceMs) * time.Millisecond
	dispatcher := service.NewReminderDispatcher(sessionRepo, regRepo, repository.NewReminderRepo(db), mailer, pace)

	var summaries []service.Summary
	if name := flag.Arg(0); name != "" {
		sum, err := dispatcher.RunForSession(ctx, name, *dryRun)
		if err != nil {
			log.Fatalf("reminders for %q: %v", name, err)
		}
		summaries = []service.Summary{sum}
	} else {
		if *dryRun {
			log.Fatal("--dry-run requires a session name")
		}
		summaries, err = dispatcher.Run(ctx)
		if err != nil {
			log.Fatalf("reminders: %v", err)
		}
	}

	if len(summaries) == 0 {
		fmt.Println("no sessions due for reminders")
		return
	}
	for _, s := range summaries {
		fmt.Printf("%s: %d sent, %d skipped, %d errors\n", s.Session, s.Sent, s.Skipped, s.Errors)
	}
	if *dryRun {
		fmt.Println("(dry run: nothing was sent or recorded)")
	}
}
