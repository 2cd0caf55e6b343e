package golem

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"regexp"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    any
	}{
		{"float", float64(41)},
		{"string", "hello"},
		{"bool", true},
		{"nil", nil},
		{"map", map[string]any{"open": true, "query": "x"}},
		{"slice", []any{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := encodeSnapshot(tt.v)
			if err != nil {
				t.Fatalf("encodeSnapshot: %v", err)
			}
			got, err := decodeSnapshot(raw)
			if err != nil {
				t.Fatalf("decodeSnapshot: %v", err)
			}
			if !reflect.DeepEqual(got, tt.v) {
				t.Errorf("round trip = %#v, want %#v", got, tt.v)
			}
		})
	}
}

func TestSnapshotTextIsAttributeSafe(t *testing.T) {
	raw, err := encodeSnapshot(map[string]any{"text": "a&b <c> \"d\"", "n": float64(3)})
	if err != nil {
		t.Fatalf("encodeSnapshot: %v", err)
	}
	if ok, _ := regexp.MatchString(`^[A-Za-z0-9_-]+$`, raw); !ok {
		t.Errorf("snapshot %q must stay in the URL-safe alphabet", raw)
	}
}

func TestDecodeSnapshotRejectsGarbage(t *testing.T) {
	if _, err := decodeSnapshot("not base64 at all!!!"); err == nil {
		t.Error("bad base64 should error")
	}
	// 0xc1 is the one byte the packing format never produces.
	bogus := base64.RawURLEncoding.EncodeToString([]byte{0xc1})
	if _, err := decodeSnapshot(bogus); err == nil {
		t.Error("bad packed payload should error")
	}
}

func snapshotDef(t *testing.T, r *Registry, tag string) {
	t.Helper()
	mustDefine(t, r, tag, Definition{
		Template: func(state any, props map[string]any) string {
			return fmt.Sprintf("<p>%v</p>", state)
		},
		InitialState:  float64(0),
		SnapshotState: true,
	})
}

func TestStateWritesUpdateTheSnapshotAttribute(t *testing.T) {
	r := NewRegistry()
	snapshotDef(t, r, "x-snap")
	_, el, inst := mountNew(t, r, "x-snap")

	first, ok := el.Attr(snapshotAttr)
	if !ok {
		t.Fatal("connected element should carry a state snapshot")
	}
	inst.SetState(float64(5))
	second, _ := el.Attr(snapshotAttr)
	if second == first {
		t.Error("state write should rewrite the snapshot")
	}
	if v, err := decodeSnapshot(second); err != nil || v != float64(5) {
		t.Errorf("snapshot decodes to %v, %v; want 5", v, err)
	}
}

func TestSnapshotHydratesAcrossDocuments(t *testing.T) {
	r := NewRegistry()
	snapshotDef(t, r, "x-hydra")
	_, el, inst := mountNew(t, r, "x-hydra")
	inst.SetState(float64(7))
	raw, _ := el.Attr(snapshotAttr)

	// A second document receives the serialized element: same tag, same
	// snapshot attribute, no shared state.
	doc2 := r.NewDocument()
	el2 := doc2.CreateElement("x-hydra")
	el2.SetAttr(snapshotAttr, raw)
	doc2.Mount(el2)

	inst2, _ := InstanceOf(el2)
	if got := inst2.StateValue(); got != float64(7) {
		t.Errorf("hydrated state = %v, want 7", got)
	}
	if got := shadowHTML(t, el2); got != "<p>7</p>" {
		t.Errorf("hydrated shadow = %q", got)
	}
}

func TestSnapshotSeedsOnlyTheFirstConnection(t *testing.T) {
	r := NewRegistry()
	snapshotDef(t, r, "x-once-seed")
	doc, el, inst := mountNew(t, r, "x-once-seed")
	inst.SetState(float64(3))

	doc.Root().Remove(el)
	// A stale snapshot written while disconnected must not reseed.
	stale, err := encodeSnapshot(float64(99))
	if err != nil {
		t.Fatalf("encodeSnapshot: %v", err)
	}
	el.SetAttr(snapshotAttr, stale)
	doc.Mount(el)

	if got := inst.StateValue(); got != float64(3) {
		t.Errorf("state after reconnect = %v, want 3 (store survives)", got)
	}
	// Reconnection rewrites the attribute from the live store.
	raw, _ := el.Attr(snapshotAttr)
	if v, _ := decodeSnapshot(raw); v != float64(3) {
		t.Errorf("snapshot after reconnect decodes to %v, want 3", v)
	}
}

func TestUndecodableSnapshotFallsBackToSeed(t *testing.T) {
	r := NewRegistry()
	snapshotDef(t, r, "x-broken-snap")
	doc := r.NewDocument()
	el := doc.CreateElement("x-broken-snap")
	el.SetAttr(snapshotAttr, "@@@not-a-snapshot@@@")
	doc.Mount(el)

	inst, _ := InstanceOf(el)
	if got := inst.StateValue(); got != float64(0) {
		t.Errorf("state = %v, want the definition seed", got)
	}
	raw, ok := el.Attr(snapshotAttr)
	if !ok {
		t.Fatal("connect should rewrite the snapshot attribute")
	}
	if v, err := decodeSnapshot(raw); err != nil || v != float64(0) {
		t.Errorf("rewritten snapshot decodes to %v, %v; want 0", v, err)
	}
}

func TestSnapshotOffByDefault(t *testing.T) {
	r := NewRegistry()
	mustDefine(t, r, "x-nosnap", Definition{
		Template:     textTemplate("<p></p>"),
		InitialState: float64(0),
	})
	_, el, inst := mountNew(t, r, "x-nosnap")
	inst.SetState(float64(4))

	if _, ok := el.Attr(snapshotAttr); ok {
		t.Error("definitions without SnapshotState must not write the attribute")
	}
}
