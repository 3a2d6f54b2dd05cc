package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daycare/internal/config"
	"daycare/internal/daycare"
	"daycare/internal/notify"
	"daycare/internal/queue"
	"daycare/internal/report"
	"daycare/internal/store"
)

// Worker consumes submitted-report messages and delivers summaries to
// the parent notification gateway.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "daycare:reports")
	}

	docs := store.NewDocuments(db.Client)
	gateway := notify.New(cfg.NotifyURL, cfg.NotifySkip)

	if !cfg.NotifySkip {
		if err := gateway.Health(ctx); err != nil {
			log.Printf("WARNING: notification gateway not available: %v", err)
			log.Println("Worker will retry delivery when reports arrive")
		} else {
			log.Println("Notification gateway connected")
		}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for submitted reports...")
	for msg := range messages {
		if msg.Type != "report" {
			continue
		}

		id := string(msg.Body)
		log.Printf("delivering report %s", id)

		doc, ok, err := docs.GetDocument(ctx, daycare.CollectionReports, id)
		if err != nil {
			log.Printf("fetch report %s failed: %v", id, err)
			continue
		}
		if !ok {
			log.Printf("report %s no longer exists, skipping", id)
			continue
		}

		r := report.ReportFromDocument(doc.ID, doc.Fields)
		if err := gateway.Send(ctx, noticeFor(r)); err != nil {
			log.Printf("notify failed for %s: %v", id, err)
			continue
		}

		log.Printf("report %s delivered for %s", id, r.ChildName)
		time.Sleep(10 * time.Millisecond)
	}

	log.Println("worker stopped")
}

func noticeFor(r report.DailyReport) notify.ReportNotice {
	var emails []string
	if r.Email != "" {
		emails = append(emails, r.Email)
	}
	if r.Email2 != "" {
		emails = append(emails, r.Email2)
	}
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format("2006-01-02")
	}
	return notify.ReportNotice{
		ChildName:         r.ChildName,
		Date:              date,
		Emails:            emails,
		InTime:            r.InTime,
		OutTime:           r.OutTime,
		Notes:             r.Notes,
		OuchReport:        r.OuchReport,
		CommonParentsNote: r.CommonParentsNote,
		Themes:            r.ThemeOfTheDay,
	}
}
