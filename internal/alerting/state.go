package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plantops/plantwatch/internal/severity"
)

// BreachState is the current breach state of a (site, parameter) pair.
// Absence of state means the parameter is in-band.
type BreachState struct {
	Severity    severity.Level `json:"severity"`
	Direction   string         `json:"direction"`
	StartedAt   time.Time      `json:"started_at"`
	LastChecked time.Time      `json:"last_checked"`
	LastValue   float64        `json:"last_value"`
	AlertID     int64          `json:"alert_id,omitempty"`
}

// stateTTL expires stale states so a site taken offline mid-breach does not
// leave residue behind.
const stateTTL = 7 * 24 * time.Hour

// StateManager manages breach states in Redis
type StateManager struct {
	redis *redis.Client
}

// NewStateManager creates a new state manager
func NewStateManager(redisClient *redis.Client) *StateManager {
	return &StateManager{redis: redisClient}
}

func stateKey(siteID int64, parameterKey string) string {
	return fmt.Sprintf("breach_state:%d:%s", siteID, parameterKey)
}

// GetState retrieves the breach state for a site and parameter. A nil
// result means no breach is in progress.
func (sm *StateManager) GetState(ctx context.Context, siteID int64, parameterKey string) (*BreachState, error) {
	data, err := sm.redis.Get(ctx, stateKey(siteID, parameterKey)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state from Redis: %w", err)
	}

	var state BreachState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// SetState saves the breach state for a site and parameter
func (sm *StateManager) SetState(ctx context.Context, siteID int64, parameterKey string, state *BreachState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := sm.redis.Set(ctx, stateKey(siteID, parameterKey), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("failed to set state in Redis: %w", err)
	}

	return nil
}

// DeleteState removes the breach state (the parameter is back in-band)
func (sm *StateManager) DeleteState(ctx context.Context, siteID int64, parameterKey string) error {
	return sm.redis.Del(ctx, stateKey(siteID, parameterKey)).Err()
}

// GetAllStates returns all live breach states (for monitoring)
func (sm *StateManager) GetAllStates(ctx context.Context) (map[string]*BreachState, error) {
	keys, err := sm.redis.Keys(ctx, "breach_state:*").Result()
	if err != nil {
		return nil, err
	}

	states := make(map[string]*BreachState)
	for _, key := range keys {
		data, err := sm.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}

		var state BreachState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			continue
		}

		states[key] = &state
	}

	return states, nil
}
