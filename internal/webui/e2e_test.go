package webui

import (
	"context"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

// TestE2E drives the wizard in headless Chrome. Set CAREPATH_E2E=1 to run it.
func TestE2E(t *testing.T) {
	if os.Getenv("CAREPATH_E2E") == "" {
		t.Skip("CAREPATH_E2E not set, skipping browser test")
	}

	r, _ := newTestRouter(t)
	ts := httptest.NewServer(r)
	defer ts.Close()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	t.Run("EmergencyWalk", func(t *testing.T) {
		var headline string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL+"/"),
			chromedp.Click(`#start button[type="submit"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`[data-step="intro"]`, chromedp.ByQuery),
			chromedp.Click(`button[value="next"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`#symptoms`, chromedp.ByQuery),
			chromedp.SendKeys(`#symptoms`, "sharp chest pain", chromedp.ByQuery),
			chromedp.Click(`button[value="next"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`[data-step="severity"]`, chromedp.ByQuery),
			chromedp.Click(`#severity-mild`, chromedp.ByQuery),
			chromedp.Click(`button[value="next"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`[data-step="duration"]`, chromedp.ByQuery),
			chromedp.Click(`#duration-today`, chromedp.ByQuery),
			chromedp.Click(`button[value="next"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`#headline`, chromedp.ByQuery),
			chromedp.Text(`#headline`, &headline, chromedp.ByQuery),
		)
		if err != nil {
			t.Fatalf("walk failed: %v", err)
		}
		if !strings.Contains(headline, "Seek Emergency Care Now") {
			t.Errorf("headline = %q, want emergency guidance", headline)
		}
	})

	t.Run("BlankSymptomsShowsToast", func(t *testing.T) {
		var notice string
		err := chromedp.Run(ctx,
			chromedp.Navigate(ts.URL+"/"),
			chromedp.Click(`#start button[type="submit"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`[data-step="intro"]`, chromedp.ByQuery),
			chromedp.Click(`button[value="next"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`#symptoms`, chromedp.ByQuery),
			chromedp.Click(`button[value="next"]`, chromedp.ByQuery),
			chromedp.WaitVisible(`#notice`, chromedp.ByQuery),
			chromedp.Text(`#notice`, &notice, chromedp.ByQuery),
		)
		if err != nil {
			t.Fatalf("blank submit failed: %v", err)
		}
		if notice != "Please describe your symptoms" {
			t.Errorf("notice = %q", notice)
		}
	})
}
