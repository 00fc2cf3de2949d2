// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

func (s *LeaderboardService) StartSnapshotScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 5 minutes: rebuild the leaderboard snapshot
	_, _ = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if err := s.RefreshSnapshot(); err != nil {
				log.Printf("[Scheduler] Leaderboard snapshot failed: %v", err)
				return
			}
			log.Println("✅ Leaderboard snapshot refreshed")
		}),
	)
}
