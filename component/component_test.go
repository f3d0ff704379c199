package component

import (
	"context"
	"fmt"
	"testing"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	c := &mockComponent{name: "pipeline", health: Health{Name: "pipeline", Status: StatusHealthy}}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got := r.Get("pipeline"); got == nil || got.Name() != "pipeline" {
		t.Errorf("expected to get registered component, got %v", got)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "pipeline"})

	if err := r.Register(&mockComponent{name: "pipeline"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry()
	if got := r.Get("missing"); got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAllOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "pipeline", startOrder: &order})
	r.Register(&mockComponent{name: "server", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "pipeline" || order[1] != "server" {
		t.Errorf("expected start order [pipeline, server], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "pipeline", startErr: fmt.Errorf("model load failed")})

	if err := r.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "pipeline", stopOrder: &order})
	r.Register(&mockComponent{name: "server", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "server" || order[1] != "pipeline" {
		t.Errorf("expected reverse stop order [server, pipeline], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "pipeline", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected no stops for unstarted components, got %v", order)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "pipeline", health: Health{Name: "pipeline", Status: StatusUnhealthy, Message: "not loaded"}})
	r.Register(&mockComponent{name: "server", health: Health{Name: "server", Status: StatusHealthy}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 health results, got %d", len(results))
	}
	if results[0].Status != StatusUnhealthy || results[1].Status != StatusHealthy {
		t.Errorf("unexpected health statuses: %v", results)
	}
}
