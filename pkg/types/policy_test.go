package types

import (
	"encoding/json"
	"testing"
)

func TestPolicyResolve(t *testing.T) {
	var p Policy
	items := p.Resolve(DefaultShippingPolicy)
	if len(items) != len(DefaultShippingPolicy) {
		t.Fatalf("empty policy should resolve to defaults, got %d items", len(items))
	}

	custom := Policy{Custom: true, Items: []PolicyItem{{Icon: "fas fa-truck", Text: "Same-day delivery"}}}
	items = custom.Resolve(DefaultShippingPolicy)
	if len(items) != 1 || items[0].Text != "Same-day delivery" {
		t.Fatalf("custom policy should win, got %+v", items)
	}

	// Custom flag without items still falls back.
	flagged := Policy{Custom: true}
	if got := flagged.Resolve(DefaultReturnsPolicy); len(got) != len(DefaultReturnsPolicy) {
		t.Fatalf("custom flag without items should fall back to defaults")
	}
}

func TestPolicyScanRoundTrip(t *testing.T) {
	src := Policy{Custom: true, Items: []PolicyItem{{Icon: "fas fa-box", Text: "Pickup only"}}}
	raw, err := src.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var dst Policy
	if err := dst.Scan(raw); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !dst.Custom || len(dst.Items) != 1 || dst.Items[0].Text != "Pickup only" {
		t.Fatalf("round trip mismatch: %+v", dst)
	}

	var empty Policy
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if empty.Custom {
		t.Fatal("nil column should scan to zero policy")
	}
}

func TestPolicyScanString(t *testing.T) {
	var p Policy
	payload, _ := json.Marshal(Policy{Custom: true, Items: []PolicyItem{{Icon: "i", Text: "t"}}})
	if err := p.Scan(string(payload)); err != nil {
		t.Fatalf("Scan(string) failed: %v", err)
	}
	if !p.Custom || len(p.Items) != 1 {
		t.Fatalf("unexpected policy %+v", p)
	}
}
