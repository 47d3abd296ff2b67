package catalog

import "testing"

func TestLookups(t *testing.T) {
	c := Default()

	d, ok := c.ByID("P01")
	if !ok || d.Name != "Phở bò" || d.Price != 55000 {
		t.Errorf("ByID(P01) = %+v, %v", d, ok)
	}
	if _, ok := c.ByID("ZZ99"); ok {
		t.Error("ByID must miss on unknown codes")
	}

	d, ok = c.ByName("Bún chả")
	if !ok || d.ID != "B01" {
		t.Errorf("ByName(Bún chả) = %+v, %v", d, ok)
	}
}

func TestNameForFallsBackToID(t *testing.T) {
	c := Default()
	if got := c.NameFor("P01"); got != "Phở bò" {
		t.Errorf("NameFor(P01) = %q", got)
	}
	if got := c.NameFor("ZZ99"); got != "ZZ99" {
		t.Errorf("NameFor on unknown ID = %q, want the ID back", got)
	}
}

func TestPlaceholder(t *testing.T) {
	d := Placeholder("Món cũ")
	if d.ID != "Món cũ" || d.Name != "Món cũ" || d.Price != 0 {
		t.Errorf("Placeholder = %+v", d)
	}
}

func TestAllReturnsACopy(t *testing.T) {
	c := Default()
	all := c.All()
	if len(all) == 0 {
		t.Fatal("menu is empty")
	}
	all[0].Name = "mutated"
	if c.All()[0].Name == "mutated" {
		t.Error("All must return a copy")
	}
}
