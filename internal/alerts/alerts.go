// Package alerts manages portfolio price alerts: creation, persistence, and
// evaluation against fresh quotes.
package alerts

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/AkhilBod/portfolioAdvisor/internal/metrics"
	"github.com/AkhilBod/portfolioAdvisor/internal/stocks"
	"github.com/AkhilBod/portfolioAdvisor/internal/storage"
)

type AlertType string

const (
	TypeStopLoss        AlertType = "stop_loss"
	TypeProfitTarget    AlertType = "profit_target"
	TypePriceTarget     AlertType = "price_target"
	TypeSignificantMove AlertType = "significant_move"
	TypeEarnings        AlertType = "earnings"
)

type Condition string

const (
	ConditionAbove         Condition = "above"
	ConditionBelow         Condition = "below"
	ConditionChangePercent Condition = "change_percent"
)

type PriceAlert struct {
	ID           string     `json:"id"`
	Symbol       string     `json:"symbol"`
	Type         AlertType  `json:"type"`
	Condition    Condition  `json:"condition"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	TriggeredAt  *time.Time `json:"triggeredAt,omitempty"`
	Message      string     `json:"message,omitempty"`
}

type Settings struct {
	EnablePushNotifications  bool    `json:"enablePushNotifications"`
	EnableEmailNotifications bool    `json:"enableEmailNotifications"`
	SignificantMoveThreshold float64 `json:"significantMoveThreshold"`
	DefaultStopLoss          float64 `json:"defaultStopLoss"`
	DefaultProfitTarget      float64 `json:"defaultProfitTarget"`
	CheckIntervalMinutes     int     `json:"checkInterval"`
}

func DefaultSettings() Settings {
	return Settings{
		EnablePushNotifications:  true,
		EnableEmailNotifications: false,
		SignificantMoveThreshold: 5,
		DefaultStopLoss:          15,
		DefaultProfitTarget:      20,
		CheckIntervalMinutes:     5,
	}
}

const (
	alertsKey   = "portfolio_alerts"
	settingsKey = "alert_settings"
)

type Service struct {
	mu       sync.Mutex
	store    *storage.FileStore
	metrics  *metrics.Metrics
	alerts   []PriceAlert
	settings Settings
	now      func() time.Time
	nextID   func() string
}

// NewService loads persisted alerts and settings from the store. A missing
// or fresh store just starts empty with default settings.
func NewService(store *storage.FileStore, m *metrics.Metrics) (*Service, error) {
	if m == nil {
		m = metrics.Global
	}
	s := &Service{
		store:    store,
		metrics:  m,
		settings: DefaultSettings(),
		now:      time.Now,
	}
	s.nextID = func() string {
		return strconv.FormatInt(s.now().UnixMilli(), 10)
	}

	if err := store.Load(); err != nil {
		return nil, err
	}
	if _, err := store.Get(alertsKey, &s.alerts); err != nil {
		return nil, err
	}
	if _, err := store.Get(settingsKey, &s.settings); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) create(alert PriceAlert) PriceAlert {
	alert.ID = s.nextID()
	alert.IsActive = true
	alert.CreatedAt = s.now().UTC()
	s.alerts = append(s.alerts, alert)
	return alert
}

// Create registers a custom alert and persists it.
func (s *Service) Create(symbol string, alertType AlertType, condition Condition, targetValue float64, message string) (PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert := s.create(PriceAlert{
		Symbol:      symbol,
		Type:        alertType,
		Condition:   condition,
		TargetValue: targetValue,
		Message:     message,
	})
	return alert, s.save()
}

// CreateStopLoss derives the trigger price from the cost basis.
func (s *Service) CreateStopLoss(symbol string, costBasis, stopLossPercent float64) (PriceAlert, error) {
	target := costBasis * (1 - stopLossPercent/100)
	message := fmt.Sprintf("%s stop-loss at $%.2f (-%g%%)", symbol, target, stopLossPercent)
	return s.Create(symbol, TypeStopLoss, ConditionBelow, target, message)
}

// CreateProfitTarget derives the trigger price from the cost basis.
func (s *Service) CreateProfitTarget(symbol string, costBasis, profitPercent float64) (PriceAlert, error) {
	target := costBasis * (1 + profitPercent/100)
	message := fmt.Sprintf("%s profit target at $%.2f (+%g%%)", symbol, target, profitPercent)
	return s.Create(symbol, TypeProfitTarget, ConditionAbove, target, message)
}

// CreatePriceTarget registers a plain above/below price alert.
func (s *Service) CreatePriceTarget(symbol string, targetPrice float64, condition Condition) (PriceAlert, error) {
	message := fmt.Sprintf("%s %s $%.2f", symbol, condition, targetPrice)
	return s.Create(symbol, TypePriceTarget, condition, targetPrice, message)
}

// Check evaluates every active alert against the supplied quotes and
// deactivates the ones that fire. It also raises one significant-move alert
// per symbol per day when the daily change crosses the configured threshold.
func (s *Service) Check(quotes []stocks.Quote) ([]PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bySymbol := make(map[string]stocks.Quote, len(quotes))
	for _, quote := range quotes {
		bySymbol[quote.Symbol] = quote
	}

	var triggered []PriceAlert
	for i := range s.alerts {
		alert := &s.alerts[i]
		if !alert.IsActive {
			continue
		}
		quote, ok := bySymbol[alert.Symbol]
		if !ok {
			continue
		}

		fired := false
		switch alert.Condition {
		case ConditionAbove:
			fired = quote.Price >= alert.TargetValue
		case ConditionBelow:
			fired = quote.Price <= alert.TargetValue
		case ConditionChangePercent:
			fired = math.Abs(quote.ChangePercent) >= alert.TargetValue
		}

		if fired {
			now := s.now().UTC()
			alert.IsActive = false
			alert.TriggeredAt = &now
			alert.CurrentValue = quote.Price
			triggered = append(triggered, *alert)
			s.metrics.IncrementAlertsTriggered()
		}
	}

	for _, quote := range quotes {
		if math.Abs(quote.ChangePercent) < s.settings.SignificantMoveThreshold {
			continue
		}
		if s.hasSignificantMoveToday(quote.Symbol) {
			continue
		}

		direction := "up"
		if quote.ChangePercent < 0 {
			direction = "down"
		}
		alert := s.create(PriceAlert{
			Symbol:       quote.Symbol,
			Type:         TypeSignificantMove,
			Condition:    ConditionChangePercent,
			TargetValue:  s.settings.SignificantMoveThreshold,
			CurrentValue: quote.Price,
			Message: fmt.Sprintf("%s %s %.1f%%", quote.Symbol, direction,
				math.Abs(quote.ChangePercent)),
		})
		triggered = append(triggered, alert)
		s.metrics.IncrementAlertsTriggered()
	}

	return triggered, s.save()
}

// hasSignificantMoveToday guards against re-alerting the same daily move on
// every check cycle.
func (s *Service) hasSignificantMoveToday(symbol string) bool {
	today := s.now().UTC().Truncate(24 * time.Hour)
	for _, alert := range s.alerts {
		if alert.Symbol != symbol || alert.Type != TypeSignificantMove || !alert.IsActive {
			continue
		}
		if alert.CreatedAt.UTC().Truncate(24 * time.Hour).Equal(today) {
			return true
		}
	}
	return false
}

func (s *Service) All() []PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PriceAlert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func (s *Service) Active() []PriceAlert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PriceAlert
	for _, alert := range s.alerts {
		if alert.IsActive {
			out = append(out, alert)
		}
	}
	return out
}

// Delete removes an alert by ID. Unknown IDs are a no-op.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.alerts[:0]
	for _, alert := range s.alerts {
		if alert.ID != id {
			kept = append(kept, alert)
		}
	}
	s.alerts = kept
	return s.save()
}

func (s *Service) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings and persists them.
func (s *Service) UpdateSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	if err := s.store.Put(settingsKey, s.settings); err != nil {
		return err
	}
	return nil
}

func (s *Service) save() error {
	return s.store.Put(alertsKey, s.alerts)
}
