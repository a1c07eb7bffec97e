package server

import (
	"sync"
	"time"
)

// HealthStatus represents the health of a component.
type HealthStatus struct {
	Healthy     bool      `json:"healthy"`
	LastCheck   time.Time `json:"last_check"`
	LastSuccess time.Time `json:"last_success,omitzero"`
	LastError   error     `json:"-"`
	Message     string    `json:"message,omitempty"`
}

// Health tracks the health of the relay's dependencies.
type Health struct {
	mu         sync.RWMutex
	components map[string]*HealthStatus
}

// NewHealth creates a new health tracker.
func NewHealth() *Health {
	return &Health{
		components: make(map[string]*HealthStatus),
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	status := h.ensure(component)
	status.Healthy = true
	status.LastCheck = now
	status.LastSuccess = now
	status.LastError = nil
	status.Message = message
}

// SetUnhealthy marks a component as unhealthy.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.ensure(component)
	status.Healthy = false
	status.LastCheck = time.Now()
	status.LastError = err
	status.Message = err.Error()
}

func (h *Health) ensure(component string) *HealthStatus {
	status, exists := h.components[component]
	if !exists {
		status = &HealthStatus{}
		h.components[component] = status
	}
	return status
}

// GetStatus returns a copy of the status of a component, or nil.
func (h *Health) GetStatus(component string) *HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if status, exists := h.components[component]; exists {
		cp := *status
		return &cp
	}
	return nil
}

// GetAllStatuses returns copies of all component statuses.
func (h *Health) GetAllStatuses() map[string]*HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make(map[string]*HealthStatus, len(h.components))
	for name, status := range h.components {
		cp := *status
		result[name] = &cp
	}
	return result
}

// IsOverallHealthy returns true if all components are healthy.
func (h *Health) IsOverallHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, status := range h.components {
		if !status.Healthy {
			return false
		}
	}
	return true
}
