package catalog

import (
	"testing"
	"time"

	"voxstock/internal/domain"
)

func TestPriceByNameIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, time.Minute)
	c.Update([]domain.Product{
		{Name: "Riz", Price: 500},
		{Name: "Savon de Marseille", Price: 250},
	})

	for _, name := range []string{"Riz", "riz", "RIZ", " riz "} {
		price, ok := c.PriceByName(name)
		if !ok || price != 500 {
			t.Fatalf("lookup %q: got %v, %v", name, price, ok)
		}
	}

	if price, ok := c.PriceByName("savon de marseille"); !ok || price != 250 {
		t.Fatalf("multi-word lookup failed: %v, %v", price, ok)
	}
}

func TestPriceByNameRequiresExactName(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, time.Minute)
	c.Update([]domain.Product{{Name: "Riz", Price: 500}})

	if _, ok := c.PriceByName("Riz parfumé"); ok {
		t.Fatalf("partial names must not match")
	}
	if _, ok := c.PriceByName(""); ok {
		t.Fatalf("empty name must not match")
	}
}

func TestUpdateReplacesSnapshot(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, time.Minute)

	if _, ok := c.Products(); ok {
		t.Fatalf("expected empty cache before first update")
	}

	c.Update([]domain.Product{{Name: "Riz", Price: 500}})
	c.Update([]domain.Product{{Name: "Riz", Price: 650}, {Name: "Sel", Price: 100}})

	products, ok := c.Products()
	if !ok || len(products) != 2 {
		t.Fatalf("unexpected snapshot: %v, %v", products, ok)
	}
	if price, _ := c.PriceByName("riz"); price != 650 {
		t.Fatalf("expected refreshed price 650, got %v", price)
	}
}

func TestUpdateDropsRemovedProducts(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, time.Minute)
	c.Update([]domain.Product{{Name: "Riz", Price: 500}})
	c.Update([]domain.Product{{Name: "Sel", Price: 100}})

	if price, ok := c.PriceByName("Riz"); ok {
		t.Fatalf("product absent from the newest list must not resolve, got %v", price)
	}
	if price, ok := c.PriceByName("Sel"); !ok || price != 100 {
		t.Fatalf("current product must resolve: %v, %v", price, ok)
	}

	products, ok := c.Products()
	if !ok || len(products) != 1 || products[0].Name != "Sel" {
		t.Fatalf("unexpected snapshot: %v, %v", products, ok)
	}
}

func TestSnapshotExpires(t *testing.T) {
	t.Parallel()

	c := New(20*time.Millisecond, 10*time.Millisecond)
	c.Update([]domain.Product{{Name: "Riz", Price: 500}})

	time.Sleep(50 * time.Millisecond)

	if _, ok := c.Products(); ok {
		t.Fatalf("expected snapshot to expire")
	}
	if _, ok := c.PriceByName("Riz"); ok {
		t.Fatalf("expected price entries to expire")
	}
}

func TestUpdateCopiesInput(t *testing.T) {
	t.Parallel()

	c := New(time.Minute, time.Minute)
	input := []domain.Product{{Name: "Riz", Price: 500}}
	c.Update(input)
	input[0].Name = "mutated"

	products, _ := c.Products()
	if products[0].Name != "Riz" {
		t.Fatalf("cache must not alias caller's slice")
	}
}
