//go:build integration

// Package testutil starts model backends in containers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// OllamaImage is the Ollama server image used by integration tests.
const OllamaImage = "ollama/ollama:0.12.6"

// OllamaContainer represents an Ollama server container for testing
type OllamaContainer struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// NewOllamaContainer starts an Ollama server and pulls the given models.
// Pulling needs network access and can take minutes on first run.
func NewOllamaContainer(ctx context.Context, t *testing.T, models ...string) *OllamaContainer {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        OllamaImage,
		ExposedPorts: []string{"11434/tcp"},
		WaitingFor: wait.ForHTTP("/api/tags").
			WithPort("11434/tcp").
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to create ollama container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate ollama container: %v", err)
		}
	})

	for _, model := range models {
		code, out, err := container.Exec(ctx, []string{"ollama", "pull", model})
		if err != nil {
			t.Fatalf("failed to pull %s: %v", model, err)
		}
		if code != 0 {
			msg, _ := io.ReadAll(out)
			t.Fatalf("pulling %s exited with %d: %s", model, code, msg)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "11434")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	return &OllamaContainer{
		Container: container,
		Host:      host,
		Port:      port.Port(),
	}
}

// BaseURL returns the Ollama API base URL
func (oc *OllamaContainer) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", oc.Host, oc.Port)
}
