package workflow

import (
	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/sse"
)

// EventStages is the SSE event name of a stage update.
const EventStages = "stages"

type hubPublisher struct {
	hub *sse.Hub
}

// NewHubPublisher publishes stage events on the period topic of hub.
func NewHubPublisher(hub *sse.Hub) workflow.Publisher {
	return &hubPublisher{hub: hub}
}

func (p *hubPublisher) Publish(companyID string, event workflow.StageEvent) {
	topic := sse.PeriodTopic(companyID, event.Period.Month, event.Period.Year)
	p.hub.Publish(topic, sse.Event{Event: EventStages, Data: event})
}
