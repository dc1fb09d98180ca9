package main

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/devsu/transaction-service/internal/infrastructure/config"
	"github.com/devsu/transaction-service/internal/infrastructure/eventpublisher"
)

func TestServerAddr(t *testing.T) {
	if got := serverAddr("8080"); got != ":8080" {
		t.Fatalf("expected :8080, got %s", got)
	}
}

func TestNewBrokerPublisher_FallsBackToLogging(t *testing.T) {
	p, closeFn, err := newBrokerPublisher(&config.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeFn()

	if _, ok := p.(*eventpublisher.LogPublisher); !ok {
		t.Fatalf("expected log publisher, got %T", p)
	}
}

func TestNewBrokerPublisher_InvalidURL(t *testing.T) {
	_, _, err := newBrokerPublisher(&config.Config{RabbitMQURL: "not-a-url", RabbitMQExchange: "x"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for invalid AMQP URL")
	}
}
