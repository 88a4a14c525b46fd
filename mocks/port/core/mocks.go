// Package core provides testify mocks for the domain core ports.
package core

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// MockLogger is a mock implementation of core.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) SetLevel(level core.LogLevel) {
	m.Called(level)
}

func (m *MockLogger) GetLevel() core.LogLevel {
	args := m.Called()
	return args.Get(0).(core.LogLevel)
}

func (m *MockLogger) Debug(message string, fields map[string]any) {
	m.Called(message, fields)
}

func (m *MockLogger) Info(message string, fields map[string]any) {
	m.Called(message, fields)
}

func (m *MockLogger) Warn(message string, fields map[string]any) {
	m.Called(message, fields)
}

func (m *MockLogger) Error(message string, fields map[string]any) {
	m.Called(message, fields)
}

func (m *MockLogger) Flush() error {
	args := m.Called()
	return args.Error(0)
}

// MockTimeProvider is a mock implementation of core.TimeProvider
type MockTimeProvider struct {
	mock.Mock
}

func (m *MockTimeProvider) Now() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

func (m *MockTimeProvider) Since(t time.Time) core.Duration {
	args := m.Called(t)
	return args.Get(0).(core.Duration)
}

func (m *MockTimeProvider) Until(t time.Time) core.Duration {
	args := m.Called(t)
	return args.Get(0).(core.Duration)
}

func (m *MockTimeProvider) Sleep(d core.Duration) {
	m.Called(d)
}

func (m *MockTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	args := m.Called(ctx, timeout)
	return args.Get(0).(context.Context), args.Get(1).(context.CancelFunc)
}

func (m *MockTimeProvider) ParseDuration(s string) (core.Duration, error) {
	args := m.Called(s)
	return args.Get(0).(core.Duration), args.Error(1)
}

// MockRandomSource is a mock implementation of core.RandomSource
type MockRandomSource struct {
	mock.Mock
}

func (m *MockRandomSource) Intn(n int) int {
	args := m.Called(n)
	return args.Int(0)
}

// FixedRandomSource always returns the same value, clamped to [0, n).
// Convenient when a test needs a pinned draw without mock expectations.
type FixedRandomSource struct {
	Value int
}

func (f *FixedRandomSource) Intn(n int) int {
	if f.Value >= n {
		return n - 1
	}
	return f.Value
}
