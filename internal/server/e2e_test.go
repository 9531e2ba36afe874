package server

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestE2E_RepairOrphanedPosts walks an operator through signing in, retyping
// one orphaned post and deleting the rest.
func TestE2E_RepairOrphanedPosts(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	env := newTestEnv(t, nil, samplePosts()...)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	defer client.CloseIdleConnections()

	get := func(path string) *goquery.Document {
		t.Helper()
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		require.NoError(t, err)
		return doc
	}
	post := func(path string, form url.Values) *goquery.Document {
		t.Helper()
		resp, err := client.PostForm(ts.URL+path, form)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		doc, err := goquery.NewDocumentFromReader(resp.Body)
		require.NoError(t, err)
		return doc
	}

	// Unauthenticated visits land on the sign-in form, remembering the target.
	doc := get(ListingPath)
	redirect, _ := doc.Find(`input[name="redirect_to"]`).Attr("value")
	assert.Equal(t, ListingPath, redirect)

	doc = post(LoginPath, url.Values{"log": {"editor"}, "pwd": {testPassword}, "redirect_to": {redirect}})
	assert.Equal(t, 3, doc.Find("#the-list tr").Length())

	var targets []string
	doc.Find(`.tablenav.top select[name="target_post_type"] option`).Each(func(_ int, s *goquery.Selection) {
		if v, _ := s.Attr("value"); v != "" {
			targets = append(targets, v)
		}
	})
	assert.Equal(t, []string{"post", "page", "attachment"}, targets)

	doc = post(ListingPath, url.Values{
		"action":           {"change_type"},
		"target_post_type": {"page"},
		"post[]":           {"4"},
	})
	assert.Equal(t, "Post type changed for 1 post", strings.TrimSpace(doc.Find(".notice-success p").Text()))
	assert.Equal(t, 2, doc.Find("#the-list tr").Length())

	doc = post(ListingPath, url.Values{
		"action":  {"-1"},
		"action2": {"delete"},
		"post[]":  {"2", "3"},
	})
	assert.Equal(t, "Deleted 2 posts", strings.TrimSpace(doc.Find(".notice-success p").Text()))
	assert.Equal(t, "No orphaned posts found.", strings.TrimSpace(doc.Find("#the-list .no-items").Text()))

	postType, ok := env.store.typeOf(4)
	require.True(t, ok)
	assert.Equal(t, "page", postType)
	_, ok = env.store.typeOf(1)
	assert.True(t, ok, "registered posts are untouched")

	doc = post(LogoutPath, nil)
	assert.Equal(t, 1, doc.Find("#loginform").Length())
}
