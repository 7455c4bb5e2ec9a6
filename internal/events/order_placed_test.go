package events

import (
	"encoding/json"
	"testing"
	"time"
)

// Downstream consumers depend on these exact field names; a rename here is a
// breaking contract change, not a refactor.
func TestOrderPlacedSchema(t *testing.T) {
	ev := OrderPlaced{
		EventType: EventTypeOrderPlaced,
		OrderID:   "order-1",
		UserID:    "u1",
		Total:     27,
		Items:     []OrderPlacedItem{{ProductID: "p1", Quantity: 2}},
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"eventType", "orderId", "userId", "total", "items", "timestamp"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing field %q in %s", key, body)
		}
	}

	items := raw["items"].([]any)
	item := items[0].(map[string]any)
	if item["productId"] != "p1" || item["quantity"].(float64) != 2 {
		t.Fatalf("unexpected item payload: %v", item)
	}
	if raw["eventType"] != "OrderPlaced" {
		t.Fatalf("unexpected eventType %v", raw["eventType"])
	}
}
