package share_test

import (
	"briefly/internal/share"
	"errors"
	"testing"
)

func TestLink(t *testing.T) {
	text := "Gophers & moles: 100% (mostly) underground!"
	pageURL := "https://example.com/a?b=c"

	tests := []struct {
		platform share.Platform
		want     string
	}{
		{share.WhatsApp, "https://wa.me/?text=Gophers%20%26%20moles%3A%20100%25%20(mostly)%20underground!"},
		{share.Twitter, "https://twitter.com/intent/tweet?text=Gophers%20%26%20moles%3A%20100%25%20(mostly)%20underground!"},
		{
			share.Facebook,
			"https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc" +
				"&quote=Gophers%20%26%20moles%3A%20100%25%20(mostly)%20underground!",
		},
		{
			share.LinkedIn,
			"https://www.linkedin.com/sharing/share-offsite/?url=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc" +
				"&summary=Gophers%20%26%20moles%3A%20100%25%20(mostly)%20underground!",
		},
	}

	for _, test := range tests {
		t.Run(string(test.platform), func(t *testing.T) {
			got, err := share.Link(test.platform, text, pageURL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != test.want {
				t.Fatalf("unexpected link:\n got %s\nwant %s", got, test.want)
			}
		})
	}
}

func TestLinkRequiresText(t *testing.T) {
	if _, err := share.Link(share.Twitter, "   ", ""); !errors.Is(err, share.ErrNothingToShare) {
		t.Fatalf("expected ErrNothingToShare, got %v", err)
	}
}

func TestLinkUnsupportedPlatform(t *testing.T) {
	if _, err := share.Link("myspace", "text", ""); !errors.Is(err, share.ErrUnsupportedPlatform) {
		t.Fatalf("expected ErrUnsupportedPlatform, got %v", err)
	}
}

func TestEncodeURIComponent(t *testing.T) {
	if got := share.EncodeURIComponent("a+b c/ж"); got != "a%2Bb%20c%2F%D0%B6" {
		t.Fatalf("unexpected encoding: %s", got)
	}
}
