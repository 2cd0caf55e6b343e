package golem

import (
	"bytes"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/germtb/golem/dom"
)

// lockedBuffer guards the capture buffer: diagnostics may arrive from
// fetch goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// captureLog redirects the standard logger for the duration of the test
// and returns a reader for what has been logged so far.
func captureLog(t *testing.T) func() string {
	t.Helper()
	buf := &lockedBuffer{}
	prev := log.Writer()
	log.SetOutput(buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return buf.String
}

func TestRedefinitionLogsADiagnostic(t *testing.T) {
	logged := captureLog(t)
	r := NewRegistry()
	mustDefine(t, r, "x-dup", Definition{Template: textTemplate("<p>one</p>")})
	if _, err := r.Define("x-dup", Definition{Template: textTemplate("<p>two</p>")}); err != nil {
		t.Fatalf("redefinition should not error, got %v", err)
	}
	if !strings.Contains(logged(), "already defined") {
		t.Errorf("log = %q, want a redefinition diagnostic", logged())
	}
}

func TestUnknownPropertyAssignmentLogsADiagnostic(t *testing.T) {
	logged := captureLog(t)
	r := NewRegistry()
	mustDefine(t, r, "x-nolog", Definition{Template: textTemplate("<p></p>")})
	_, _, inst := mountNew(t, r, "x-nolog")

	inst.Set("bogus", 1)
	if !strings.Contains(logged(), `has no property "bogus"`) {
		t.Errorf("log = %q, want an unknown-property diagnostic", logged())
	}
}

func TestMissingMethodLogsADiagnosticAtAttachTime(t *testing.T) {
	logged := captureLog(t)
	r := NewRegistry()
	mustDefine(t, r, "x-nomethod", Definition{
		Template: textTemplate("<button>go</button>"),
		Events:   map[string]map[string]string{"button": {dom.ClickEvent: "vanish"}},
	})
	if strings.Contains(logged(), "vanish") {
		t.Fatal("registration must not reject names with no method yet")
	}
	mountNew(t, r, "x-nomethod")
	if !strings.Contains(logged(), `has no method "vanish"`) {
		t.Errorf("log = %q, want a missing-method diagnostic at attach time", logged())
	}
}

func TestPanickingTemplateLogsADiagnostic(t *testing.T) {
	logged := captureLog(t)
	r := NewRegistry()
	mustDefine(t, r, "x-logboom", Definition{
		Template: func(state any, props map[string]any) string {
			panic("kaboom")
		},
	})
	mountNew(t, r, "x-logboom")

	if !strings.Contains(logged(), "template") || !strings.Contains(logged(), "kaboom") {
		t.Errorf("log = %q, want the template panic surfaced", logged())
	}
}
