package service

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"rps_web/internal/game"
)

// StartSweeper 以固定間隔執行引擎的過期清理。
// 回傳 scheduler 讓呼叫者在關機時 Shutdown
func StartSweeper(engine *game.Engine, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			engine.Sweep()
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
