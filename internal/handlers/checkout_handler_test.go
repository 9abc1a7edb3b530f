package handlers

import "testing"

func TestMergeCheckoutItems(t *testing.T) {
	items := []CheckoutItem{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	}

	merged := mergeCheckoutItems(items)

	want := []CheckoutItem{
		{ProductID: 1, Quantity: 6},
		{ProductID: 2, Quantity: 3},
	}
	if len(merged) != len(want) {
		t.Fatalf("merged %d items, want %d", len(merged), len(want))
	}
	for i, item := range merged {
		if item != want[i] {
			t.Errorf("merged[%d] = %+v, want %+v", i, item, want[i])
		}
	}
}

func TestMergeCheckoutItemsKeepsDistinctOrder(t *testing.T) {
	items := []CheckoutItem{
		{ProductID: 7, Quantity: 1},
		{ProductID: 3, Quantity: 2},
		{ProductID: 5, Quantity: 1},
	}

	merged := mergeCheckoutItems(items)

	if len(merged) != 3 {
		t.Fatalf("merged %d items, want 3", len(merged))
	}
	for i, item := range merged {
		if item != items[i] {
			t.Errorf("merged[%d] = %+v, want %+v", i, item, items[i])
		}
	}
}
