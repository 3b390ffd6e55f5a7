package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweep fails overdue challenge enrollments in the background so a
// user who stops sending events still sees their challenge expire.
func (s *ChallengeService) StartExpirySweep() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 10 minutes: fail expired enrollments
	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			failed, err := s.MarkExpired()
			if err != nil {
				log.Printf("[Scheduler] Expiry sweep error: %v", err)
				return
			}
			if failed > 0 {
				log.Printf("⏰ Expiry sweep: %d challenge enrollment(s) marked FAILED", failed)
			}
		}),
	)
}
