package process

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/shopkeep/pkg/domain"
	"github.com/aretw0/shopkeep/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It is re-executed as the intent
// command by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("SHOPKEEP_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	var req ports.TurnRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		fmt.Fprintln(os.Stderr, "bad request:", err)
		os.Exit(2)
	}

	switch os.Getenv("SHOPKEEP_HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "model unavailable")
		os.Exit(3)
	case "garbage":
		fmt.Fprint(os.Stdout, "not json")
	case "slow":
		time.Sleep(10 * time.Second)
	default:
		resp := ports.TurnResponse{
			Reply: fmt.Sprintf("heard %q from %s with %d prior messages (%s)",
				req.Message, req.SessionID, len(req.History), os.Getenv("SHOPKEEP_SESSION_ID")),
			ToolCalls: []domain.ToolCall{
				{ToolName: "add_card", Args: map[string]any{"name": "banana", "color": "yellow", "quantity": 2}},
			},
		}
		_ = json.NewEncoder(os.Stdout).Encode(resp)
	}
}

func helperConfig(mode string) Config {
	return Config{
		Command: os.Args[0],
		Args:    []string{"-test.run=TestHelperProcess"},
		Environment: map[string]string{
			"SHOPKEEP_HELPER_PROCESS": "1",
			"SHOPKEEP_HELPER_MODE":    mode,
		},
	}
}

func TestSource_Interpret(t *testing.T) {
	src, err := NewSource(helperConfig("echo"))
	require.NoError(t, err)

	resp, err := src.Interpret(context.Background(), ports.TurnRequest{
		SessionID: "s1",
		Message:   "two bananas please",
		History: []domain.Message{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "hello"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, `heard "two bananas please" from s1 with 2 prior messages (s1)`, resp.Reply)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "add_card", resp.ToolCalls[0].ToolName)

	intents := domain.DecodeToolCalls(resp.ToolCalls)
	require.Len(t, intents, 1)
	add, ok := intents[0].(domain.AddItem)
	require.True(t, ok, "expected AddItem, got %T", intents[0])
	assert.Equal(t, "banana", add.Name)
	assert.Equal(t, 2, add.Quantity)
}

func TestSource_NonZeroExitIncludesStderr(t *testing.T) {
	src, err := NewSource(helperConfig("fail"))
	require.NoError(t, err)

	_, err = src.Interpret(context.Background(), ports.TurnRequest{SessionID: "s1", Message: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intent process failed")
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestSource_InvalidResponse(t *testing.T) {
	src, err := NewSource(helperConfig("garbage"))
	require.NoError(t, err)

	_, err = src.Interpret(context.Background(), ports.TurnRequest{SessionID: "s1", Message: "x"})
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestSource_Timeout(t *testing.T) {
	src, err := NewSource(helperConfig("slow"), WithTimeout(200*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = src.Interpret(context.Background(), ports.TurnRequest{SessionID: "s1", Message: "x"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSource_MissingBinary(t *testing.T) {
	src, err := NewSource(Config{Command: filepath.Join(t.TempDir(), "does-not-exist")})
	require.NoError(t, err)

	_, err = src.Interpret(context.Background(), ports.TurnRequest{SessionID: "s1", Message: "x"})
	assert.Error(t, err)
}

func TestNewSource_Validation(t *testing.T) {
	_, err := NewSource(Config{})
	assert.Error(t, err)

	_, err = NewSource(Config{Command: "true", Timeout: "soon"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "intent.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
intent:
  command: python3
  args: ["agent.py"]
  dir: agents
  timeout: 5s
  env:
    MODEL: small
`), 0644))

	cfg, err := LoadConfig(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "python3", cfg.Command)
	assert.Equal(t, []string{"agent.py"}, cfg.Args)
	assert.Equal(t, filepath.Join(dir, "agents"), cfg.Dir)
	assert.Equal(t, "small", cfg.Environment["MODEL"])

	d, err := cfg.TimeoutDuration(DefaultTimeout)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	jsonPath := filepath.Join(dir, "intent.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"intent": {"command": "node", "args": ["bot.js"]}}`), 0644))

	cfg, err = LoadConfig(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "node", cfg.Command)
	d, err = cfg.TimeoutDuration(DefaultTimeout)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, d)

	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte("intent: {}\n"), 0644))
	_, err = LoadConfig(emptyPath)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
