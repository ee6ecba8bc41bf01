package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type countingGenerator struct {
	calls chan time.Time
}

func (g *countingGenerator) GenerateDailySnapshot(_ context.Context, at time.Time) (models.ValuationSnapshot, error) {
	g.calls <- at
	return models.ValuationSnapshot{Date: at}, nil
}

func TestNewScheduler_RejectsUnknownTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Olympus"}, &countingGenerator{}, nil)
	require.Error(t, err)
}

func TestStart_RejectsInvalidSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every evening", Timezone: "UTC"}, &countingGenerator{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestRunValuationReport_UsesConfiguredTimezone(t *testing.T) {
	gen := &countingGenerator{calls: make(chan time.Time, 1)}
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Asia/Kolkata"}, gen, nil)
	require.NoError(t, err)

	s.runValuationReport()

	select {
	case at := <-gen.calls:
		assert.Equal(t, "Asia/Kolkata", at.Location().String())
	case <-time.After(time.Second):
		t.Fatal("valuation report was not generated")
	}
}
