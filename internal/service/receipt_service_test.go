package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coinbox/coinbox-mod-sales/internal/config"
	"github.com/coinbox/coinbox-mod-sales/internal/events"
)

func TestReceiptServiceLogsSettlements(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewReceiptService(dispatcher, nil, zap.New(core), config.SalesConfig{})
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventTicketClosed,
		TicketID:  "t1",
		SessionID: "till-1",
	}))
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCancelled,
		TicketID: "t2",
	}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "TicketClosed", entries[0].Message)
	assert.Equal(t, "t1", entries[0].ContextMap()["ticket_id"])
	assert.Equal(t, "TicketCancelled", entries[1].Message)
}

func TestReceiptServiceWithoutDispatcher(t *testing.T) {
	svc := NewReceiptService(nil, nil, zap.NewNop(), config.SalesConfig{})
	assert.NotPanics(t, svc.RegisterHandlers)
}
