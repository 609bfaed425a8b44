package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"rpascribe/internal/recorder"
)

// Sessions idle longer than this are considered abandoned and stopped so
// their Chrome instances do not pile up.
const abandonedAfter = 30 * time.Minute

// JanitorService periodically sweeps abandoned recording sessions.
type JanitorService struct {
	cron *cron.Cron
}

var GlobalJanitor *JanitorService

func InitJanitor() error {
	GlobalJanitor = &JanitorService{
		cron: cron.New(cron.WithSeconds()),
	}

	// Every 5 minutes.
	_, err := GlobalJanitor.cron.AddFunc("0 */5 * * * *", func() {
		swept := recorder.Default.SweepIdle(abandonedAfter)
		if len(swept) > 0 {
			log.Printf("janitor: swept %d abandoned sessions: %v", len(swept), swept)
		}
	})
	if err != nil {
		return err
	}

	GlobalJanitor.cron.Start()
	log.Println("Janitor service initialized")
	return nil
}

func (j *JanitorService) Stop() {
	if j.cron != nil {
		j.cron.Stop()
	}
}
