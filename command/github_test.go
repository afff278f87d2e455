package command

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v80/github"
)

func githubServer(t *testing.T) *github.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/kessoku/setlist", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "setlist",
			"html_url": "https://github.com/kessoku/setlist",
			"description": "Songs for the Shimokitazawa live house show on Saturday night",
			"stargazers_count": 12,
			"forks_count": 3,
			"owner": {"login": "kessoku"}
		}`))
	})
	mux.HandleFunc("GET /search/repositories", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nothing" {
			w.Write([]byte(`{"total_count": 0, "items": []}`))
			return
		}
		w.Write([]byte(`{"total_count": 2, "items": [
			{"name": "setlist", "html_url": "https://github.com/kessoku/setlist", "description": "songs", "stargazers_count": 12, "forks_count": 3, "owner": {"login": "kessoku"}},
			{"name": "setlist", "html_url": "https://github.com/sick/setlist", "stargazers_count": 4, "forks_count": 0, "owner": {"login": "sick"}}
		]}`))
	})
	mux.HandleFunc("GET /repos/kessoku/setlist/issues/7", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"number": 7,
			"title": "Amp is too quiet",
			"body": "Turn it up.",
			"html_url": "https://github.com/kessoku/setlist/issues/7",
			"user": {"login": "nijika"}
		}`))
	})
	mux.HandleFunc("GET /repos/kessoku/setlist/labels", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "bug"}, {"name": "loud"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	gh := github.NewClient(srv.Client())
	u, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	gh.BaseURL = u
	return gh
}

func TestGitHubRepo(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.GitHub = githubServer(t)
	chat := newChat()

	GitHubRepo(ctx, robo, invocation(chat, map[string]string{"owner": "kessoku", "name": "setlist"}))
	e := chat.last(t).Embed
	if e == nil {
		t.Fatal("no embed")
	}
	if got, want := e.Title, "Name : setlist"; got != want {
		t.Errorf("title: want %q, got %q", want, got)
	}
	want := "**:star:12/:fork_and_knife:3**\n\n**Owner:** kessoku\n**Description:** Songs for the Shimokitazawa live house show on Sat..."
	if e.Description != want {
		t.Errorf("description: want %q, got %q", want, e.Description)
	}

	GitHubRepo(ctx, robo, invocation(chat, map[string]string{"owner": "kessoku", "name": "missing"}))
	if got, want := chat.last(t).Text, "Invalid Repository name or owner name!"; got != want {
		t.Errorf("missing: want %q, got %q", want, got)
	}

	// Without an owner, the top search result is shown.
	GitHubRepo(ctx, robo, invocation(chat, map[string]string{"name": "setlist"}))
	e = chat.last(t).Embed
	if e == nil {
		t.Fatal("no embed")
	}
	if len(e.Fields) != 1 || e.Fields[0].Name != "Owner: kessoku" {
		t.Errorf("wrong search result: %+v", e.Fields)
	}
	if e.URL != "https://github.com/kessoku/setlist" {
		t.Errorf("wrong url %q", e.URL)
	}
}

func TestGitHubSearch(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.GitHub = githubServer(t)
	chat := newChat()

	GitHubSearch(ctx, robo, invocation(chat, map[string]string{"name": "setlist"}))
	e := chat.last(t).Embed
	if e == nil {
		t.Fatal("no embed")
	}
	if got, want := e.Title, "Search results for setlist"; got != want {
		t.Errorf("title: want %q, got %q", want, got)
	}
	if got, want := e.URL, "https://github.com/search?q=setlist"; got != want {
		t.Errorf("url: want %q, got %q", want, got)
	}
	if len(e.Fields) != 2 {
		t.Fatalf("want 2 results, got %+v", e.Fields)
	}
	if got, want := e.Fields[1].Name, "Repo: sick/setlist"; got != want {
		t.Errorf("name: want %q, got %q", want, got)
	}
	if !strings.Contains(e.Fields[1].Value, "No description available.") {
		t.Errorf("missing description placeholder: %q", e.Fields[1].Value)
	}

	GitHubSearch(ctx, robo, invocation(chat, map[string]string{"name": "nothing"}))
	e = chat.last(t).Embed
	if e == nil || e.Title != "Repository not found!" {
		t.Errorf("wrong empty result: %+v", e)
	}
}

func TestGitHubIssue(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.GitHub = githubServer(t)
	chat := newChat()

	GitHubIssue(ctx, robo, invocation(chat, map[string]string{"owner": "kessoku", "repo": "setlist", "number": "7"}))
	e := chat.last(t).Embed
	if e == nil {
		t.Fatal("no embed")
	}
	if e.Title != "Amp is too quiet" || e.Description != "Turn it up." {
		t.Errorf("wrong issue: %+v", e)
	}
	if got, want := e.Footer, "Issue opened by nijika and is assigned to None"; got != want {
		t.Errorf("footer: want %q, got %q", want, got)
	}

	GitHubIssue(ctx, robo, invocation(chat, map[string]string{"owner": "kessoku", "repo": "setlist", "number": "8"}))
	if got, want := chat.last(t).Text, "Invalid Repository name or owner name or issue number!"; got != want {
		t.Errorf("missing: want %q, got %q", want, got)
	}
}

func TestGitHubLabels(t *testing.T) {
	ctx := context.Background()
	robo := testRobot(t)
	robo.GitHub = githubServer(t)
	chat := newChat()

	GitHubLabels(ctx, robo, invocation(chat, map[string]string{"owner": "kessoku", "repo": "setlist"}))
	e := chat.last(t).Embed
	if e == nil {
		t.Fatal("no embed")
	}
	if got, want := e.Description, "1. **bug**\n2. **loud**\n"; got != want {
		t.Errorf("labels: want %q, got %q", want, got)
	}
}

func TestClip(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"", 5, ""},
		{"bocchi", 6, "bocchi"},
		{"bocchi", 3, "boc..."},
		{"ぼっちちゃん", 3, "ぼっち..."},
	}
	for _, c := range cases {
		if got := clip(c.in, c.n); got != c.want {
			t.Errorf("clip(%q, %d): want %q, got %q", c.in, c.n, c.want, got)
		}
	}
}
