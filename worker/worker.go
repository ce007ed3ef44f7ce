package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// IJob scheduled job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

// OnWork one round of work
type OnWork func(ctx context.Context) error

// BaseJob runs OnWork on a cron schedule, skipping a tick while the previous round is still running
type BaseJob struct {
	Name    string
	Cron    *cron.Cron
	OnWork  OnWork
	running int32
}

// NewBaseJob new job in location firing on spec
func NewBaseJob(name, location, spec string) (*BaseJob, error) {
	l, err := time.LoadLocation(location)
	if err != nil {
		return nil, err
	}

	job := &BaseJob{
		Name: name,
		Cron: cron.New(cron.WithLocation(l)),
	}

	if _, err := job.Cron.AddFunc(spec, job.Run); err != nil {
		return nil, err
	}

	return job, nil
}

// Start start the schedule
func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

// Stop stop the schedule and wait for the running round
func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

// Run run one round unless one is in progress
func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.running, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.running, 0)

	log := logger.FromContext(context.Background()).WithField("worker", job.Name)
	if err := job.OnWork(logger.WithContext(context.Background(), log)); err != nil {
		log.WithError(err).Debugln("round failed")
	}
}
