//go:build browser

package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBrowser starts headless Chrome; the test is skipped when none is installed.
func newBrowser(t *testing.T) context.Context {
	t.Helper()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	ctx, cancel := context.WithTimeout(browserCtx, 30*time.Second)
	t.Cleanup(func() {
		cancel()
		cancelBrowser()
		cancelAlloc()
	})

	if err := chromedp.Run(ctx); err != nil {
		t.Skipf("headless Chrome unavailable: %v", err)
	}
	return ctx
}

// choose selects value in the select matching sel and fires its change event.
func choose(sel, value string) chromedp.Action {
	return chromedp.Evaluate(`(() => {
		const el = document.querySelector(`+quote(sel)+`);
		el.value = `+quote(value)+`;
		el.dispatchEvent(new Event('change', { bubbles: true }));
	})()`, nil)
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func signIn(ctx context.Context, baseURL string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(baseURL+ListingPath),
		chromedp.WaitVisible(`#loginform`),
		chromedp.SendKeys(`#user_login`, "editor"),
		chromedp.SendKeys(`#user_pass`, testPassword),
		chromedp.Click(`#wp-submit`),
		chromedp.WaitVisible(`#the-list`),
	)
}

func TestBrowser_BulkActionGuard(t *testing.T) {
	env := newTestEnv(t, nil, samplePosts()...)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	ctx := newBrowser(t)
	require.NoError(t, signIn(ctx, ts.URL))

	var (
		disabledInitially bool
		targetHidden      bool
		disabledNoTarget  bool
		targetShown       bool
		enabledWithTarget bool
		disabledAgain     bool
	)
	require.NoError(t, chromedp.Run(ctx,
		chromedp.Evaluate(`document.querySelector('#doaction').disabled`, &disabledInitially),
		chromedp.Evaluate(`document.querySelector('.tablenav.top .bulkactions-post-type').classList.contains('hidden')`, &targetHidden),

		choose(`#bulk-action-selector-top`, "change_type"),
		chromedp.Evaluate(`document.querySelector('#doaction').disabled`, &disabledNoTarget),
		chromedp.Evaluate(`!document.querySelector('.tablenav.top .bulkactions-post-type').classList.contains('hidden')`, &targetShown),

		choose(`.tablenav.top select[name="target_post_type"]`, "page"),
		chromedp.Evaluate(`document.querySelector('#doaction').disabled`, &enabledWithTarget),

		choose(`#bulk-action-selector-top`, "-1"),
		chromedp.Evaluate(`document.querySelector('#doaction').disabled`, &disabledAgain),
	))

	assert.True(t, disabledInitially)
	assert.True(t, targetHidden)
	assert.True(t, disabledNoTarget, "change_type without a target stays disabled")
	assert.True(t, targetShown)
	assert.False(t, enabledWithTarget, "apply is enabled once a target is chosen")
	assert.True(t, disabledAgain)

	var deleteEnabled bool
	require.NoError(t, chromedp.Run(ctx,
		choose(`#bulk-action-selector-bottom`, "delete"),
		chromedp.Evaluate(`!document.querySelector('#doaction2').disabled`, &deleteEnabled),
	))
	assert.True(t, deleteEnabled, "toolbars are guarded independently")
}

func TestBrowser_SelectAll(t *testing.T) {
	env := newTestEnv(t, nil, samplePosts()...)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	ctx := newBrowser(t)
	require.NoError(t, signIn(ctx, ts.URL))

	var checked int
	require.NoError(t, chromedp.Run(ctx,
		chromedp.Click(`#cb-select-all-1`),
		chromedp.Evaluate(`document.querySelectorAll('#the-list input[name="post[]"]:checked').length`, &checked),
	))
	assert.Equal(t, 3, checked)
}

func TestBrowser_RowTypeChangeSubmits(t *testing.T) {
	env := newTestEnv(t, nil, samplePosts()...)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	ctx := newBrowser(t)
	require.NoError(t, signIn(ctx, ts.URL))

	var message string
	require.NoError(t, chromedp.Run(ctx,
		choose(`#post-4 td.post-type select`, "page"),
		chromedp.WaitVisible(`.notice-success`),
		chromedp.Text(`.notice-success p`, &message),
	))
	assert.Equal(t, "Post type changed for 1 post", strings.TrimSpace(message))

	postType, ok := env.store.typeOf(4)
	require.True(t, ok)
	assert.Equal(t, "page", postType)
}
