package cli

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestWaitForShutdown(t *testing.T) {
	sigChan := WaitForShutdown()

	if sigChan == nil {
		t.Fatal("WaitForShutdown() returned nil channel")
	}

	select {
	case sig := <-sigChan:
		t.Errorf("Expected empty channel before any signal, got %v", sig)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestWaitForShutdown_ReceivesSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping signal test in short mode")
	}

	sigChan := WaitForShutdown()

	go func() {
		time.Sleep(50 * time.Millisecond)
		p, _ := os.FindProcess(os.Getpid())
		_ = p.Signal(syscall.SIGTERM)
	}()

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGTERM {
			t.Errorf("Expected SIGTERM, got %v", sig)
		}
	case <-time.After(200 * time.Millisecond):
		t.Skip("Signal not received within timeout (this is okay)")
	}
}
