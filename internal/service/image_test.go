package service

import (
	"context"
	"testing"
)

func TestExtractPublicID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{
			"https://res.cloudinary.com/demo/image/upload/v1712345678/goingmarry_products/abc123.jpg",
			"goingmarry_products/abc123",
		},
		{
			"https://res.cloudinary.com/demo/image/upload/goingmarry_products/abc123.png",
			"goingmarry_products/abc123",
		},
		// Unmanaged hosts are never touched.
		{"https://images.unsplash.com/photo-123", ""},
		{"https://example.com/upload/v1/x.jpg", ""},
		// Malformed managed URLs yield nothing rather than a bad public id.
		{"https://res.cloudinary.com/demo/image/upload", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ExtractPublicID(tc.url); got != tc.want {
			t.Errorf("ExtractPublicID(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestPassthroughResolve(t *testing.T) {
	svc := PassthroughImageService{}
	ctx := context.Background()

	// Hosted URLs pass through unchanged, so resolving twice is a no-op.
	url := "https://example.com/gown.jpg"
	got, err := svc.Resolve(ctx, url)
	if err != nil || got != url {
		t.Errorf("Resolve(%q) = %q, %v", url, got, err)
	}
	again, _ := svc.Resolve(ctx, got)
	if again != url {
		t.Errorf("Resolve must be idempotent on hosted URLs, got %q", again)
	}

	if _, err := svc.Resolve(ctx, "base64,AAAA"); err == nil {
		t.Error("expected embedded payloads to be rejected without an image host")
	}
}
