package llm

import (
	"context"
	"sync"
	"testing"
	"time"
)

// MockProvider is a test provider that records calls and returns canned responses.
type MockProvider struct {
	mu       sync.Mutex
	Calls    []CompletionRequest
	Response *CompletionResponse
	Err      error
	PingErr  error
	ProvName string
	HasCreds bool
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{
		ProvName: name,
		HasCreds: true,
		Response: &CompletionResponse{
			Content:      "mock response",
			InputTokens:  10,
			OutputTokens: 20,
			Model:        "mock-model",
			FinishReason: "stop",
		},
	}
}

func (m *MockProvider) Name() string {
	return m.ProvName
}

func (m *MockProvider) Configured() bool {
	return m.HasCreds
}

func (m *MockProvider) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// --- Tests ---

func TestMockProviderRecordsCalls(t *testing.T) {
	mock := NewMockProvider("test")
	ctx := context.Background()

	req := CompletionRequest{
		Model:    "test-model",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}

	resp, err := mock.Complete(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != "mock response" {
		t.Errorf("expected 'mock response', got %q", resp.Content)
	}

	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}

	if mock.Calls[0].Model != "test-model" {
		t.Errorf("expected model 'test-model', got %q", mock.Calls[0].Model)
	}
}

func TestFactoryReturnsUnconfiguredForMissingAPIKey(t *testing.T) {
	// Ensure env vars are not set for this test.
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	for _, name := range []string{"anthropic", "openai", "google"} {
		p, err := NewProvider(name, "some-model")
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", name, err)
		}
		if p.Configured() {
			t.Errorf("expected provider %q to be unconfigured with missing API key", name)
		}
	}
}

func TestRequireProviderErrorsForMissingAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	if _, err := RequireProvider("anthropic", "some-model"); err == nil {
		t.Error("expected error for anthropic with missing API key")
	}
}

func TestFactoryReturnsErrorForUnknownProvider(t *testing.T) {
	_, err := NewProvider("unknown", "some-model")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestFactoryCreatesOllamaWithDefaultHost(t *testing.T) {
	t.Setenv("OLLAMA_HOST", "")
	provider, err := NewProvider("ollama", "llama3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ollamaP, ok := provider.(*OllamaProvider)
	if !ok {
		t.Fatalf("expected *OllamaProvider, got %T", provider)
	}
	if ollamaP.baseURL != "http://localhost:11434" {
		t.Errorf("expected default host, got %q", ollamaP.baseURL)
	}
	if !provider.Configured() {
		t.Error("ollama with a host should report configured")
	}
}

func TestRateLimiterAllowsBurstUpToRPM(t *testing.T) {
	mock := NewMockProvider("test")
	limited := NewRateLimitedProvider(mock, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := limited.Complete(ctx, CompletionRequest{}); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	if mock.CallCount() != 5 {
		t.Errorf("expected 5 calls, got %d", mock.CallCount())
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	mock := NewMockProvider("test")
	limited := NewRateLimitedProvider(mock, 1)

	if _, err := limited.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The bucket is empty; the next call should block until the context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := limited.Complete(ctx, CompletionRequest{}); err == nil {
		t.Error("expected context deadline error with exhausted bucket")
	}
}

func TestRateLimiterPingBypassesBucket(t *testing.T) {
	mock := NewMockProvider("test")
	limited := NewRateLimitedProvider(mock, 1)

	if _, err := limited.Complete(context.Background(), CompletionRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Ping must succeed immediately even with an empty bucket.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := limited.Ping(ctx); err != nil {
		t.Errorf("ping should bypass the rate limiter: %v", err)
	}
}

func TestEstimateCostKnownModel(t *testing.T) {
	cost := EstimateCost("gpt-4o", 1_000_000, 1_000_000)
	if cost != 12.50 {
		t.Errorf("expected 12.50, got %f", cost)
	}
}

func TestEstimateCostUnknownModelIsZero(t *testing.T) {
	if cost := EstimateCost("no-such-model", 1000, 1000); cost != 0 {
		t.Errorf("expected 0 for unknown model, got %f", cost)
	}
}
