package theme_test

import (
	"context"
	"errors"
	"testing"

	"briefly/internal/store"
	"briefly/internal/theme"
)

func TestFind(t *testing.T) {
	bg, ok := theme.Find(" black-red ")
	if !ok {
		t.Fatalf("expected black-red to be found")
	}
	if bg.CSS != "linear-gradient(-11deg, #9a0f0ff2 40%, #121213ed 62%)" {
		t.Fatalf("unexpected css %q", bg.CSS)
	}

	if _, ok = theme.Find("purple"); ok {
		t.Fatalf("expected purple to be unknown")
	}
}

func TestDescribe(t *testing.T) {
	bg, _ := theme.Find("yellow-green")
	if got := theme.Describe(bg.CSS); got != "Yellow & green" {
		t.Fatalf("unexpected title %q", got)
	}

	if got := theme.Describe("red"); got != "red" {
		t.Fatalf("expected raw css back, got %q", got)
	}
}

func TestPrimaryColor(t *testing.T) {
	cases := []struct {
		name string
		css  string
		want theme.RGB
		ok   bool
	}{
		{"hex with alpha", "linear-gradient(-11deg, #1c1c1cf2 37%, #2c2c2eed 76%)", theme.RGB{R: 0x1c, G: 0x1c, B: 0x1c}, true},
		{"short hex", "#fa0", theme.RGB{R: 0xff, G: 0xaa, B: 0x00}, true},
		{"rgba", "linear-gradient(90deg, rgba(2, 0, 36, 1) 0%, rgba(9, 9, 121, 1) 35%)", theme.RGB{R: 2, G: 0, B: 36}, true},
		{"rgb first", "linear-gradient(to left, rgb(16, 193, 16), rgb(214, 228, 5))", theme.RGB{R: 16, G: 193, B: 16}, true},
		{"out of range", "rgb(300, 0, 0)", theme.RGB{}, false},
		{"named colour", "red", theme.RGB{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := theme.PrimaryColor(tc.css)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("PrimaryColor(%q) = %v, %v; want %v, %v", tc.css, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestControllerSaveWithoutApply(t *testing.T) {
	local := store.NewMemoryArea()
	c := theme.NewController(local)

	if err := c.Save(context.Background(), 1, 10); !errors.Is(err, theme.ErrNothingApplied) {
		t.Fatalf("expected ErrNothingApplied, got %v", err)
	}

	if _, ok, _ := local.Get(context.Background(), 10, store.KeyCustomBackground); ok {
		t.Fatalf("expected nothing to be persisted")
	}
}

func TestControllerApplySaveRestore(t *testing.T) {
	ctx := context.Background()
	local := store.NewMemoryArea()
	c := theme.NewController(local)

	bg, err := c.Apply(1, "red-pink")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if css, state := c.Current(1); css != bg.CSS || state != theme.StateApplied {
		t.Fatalf("unexpected current %q %s", css, state)
	}

	if err = c.Save(ctx, 1, 10); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, state := c.Current(1); state != theme.StateSaved {
		t.Fatalf("expected saved state, got %s", state)
	}

	stored, ok, _ := local.Get(ctx, 10, store.KeyCustomBackground)
	if !ok || stored != bg.CSS {
		t.Fatalf("unexpected stored value %q", stored)
	}

	other := theme.NewController(local)
	css, err := other.Restore(ctx, 2, 10)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if css != bg.CSS {
		t.Fatalf("unexpected restored css %q", css)
	}
	if _, state := other.Current(2); state != theme.StateSaved {
		t.Fatalf("expected saved state after restore, got %s", state)
	}
}

func TestControllerApplyUnknown(t *testing.T) {
	c := theme.NewController(store.NewMemoryArea())

	if _, err := c.Apply(1, "plaid"); !errors.Is(err, theme.ErrUnknownBackground) {
		t.Fatalf("expected ErrUnknownBackground, got %v", err)
	}
	if _, state := c.Current(1); state != theme.StateNone {
		t.Fatalf("expected none state, got %s", state)
	}
}

func TestControllerRestoreNothingSaved(t *testing.T) {
	c := theme.NewController(store.NewMemoryArea())

	css, err := c.Restore(context.Background(), 1, 10)
	if err != nil || css != "" {
		t.Fatalf("expected empty restore, got %q %v", css, err)
	}
}
