package command

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v80/github"

	"github.com/ChomusukeBot/Chomusuke/message"
)

// blue is the color of GitHub embeds.
const blue = 0x3498db

// GitHubRepo shows information about a repository. Without an owner, the
// most starred repository with the name is shown.
//   - name: Repository name.
//   - owner: Repository owner. Optional.
func GitHubRepo(ctx context.Context, robo *Robot, call *Invocation) {
	name, owner := call.Args["name"], call.Args["owner"]
	if owner == "" {
		call.Reply(ctx, robo, searchRepos(ctx, robo, name, 1))
		return
	}
	r, _, err := robo.GitHub.Repositories.Get(ctx, owner, name)
	if err != nil {
		robo.Log.WarnContext(ctx, "couldn't get repository", slog.String("owner", owner), slog.String("name", name), slog.Any("err", err))
		call.Reply(ctx, robo, message.Text("Invalid Repository name or owner name!"))
		return
	}
	var desc strings.Builder
	fmt.Fprintf(&desc, "**:star:%d/:fork_and_knife:%d**\n\n", r.GetStargazersCount(), r.GetForksCount())
	fmt.Fprintf(&desc, "**Owner:** %s\n", r.GetOwner().GetLogin())
	fmt.Fprintf(&desc, "**Description:** %s", clip(r.GetDescription(), 50))
	call.Reply(ctx, robo, message.Rich(&message.Embed{
		Title:       "Name : " + r.GetName(),
		URL:         r.GetHTMLURL(),
		Description: desc.String(),
		Color:       blue,
	}))
}

// GitHubSearch searches for repositories by name, showing up to five.
//   - name: Search query.
func GitHubSearch(ctx context.Context, robo *Robot, call *Invocation) {
	call.Reply(ctx, robo, searchRepos(ctx, robo, call.Args["name"], 5))
}

func searchRepos(ctx context.Context, robo *Robot, name string, n int) message.Content {
	opts := &github.SearchOptions{
		Sort:        "stars",
		ListOptions: github.ListOptions{PerPage: n},
	}
	r, _, err := robo.GitHub.Search.Repositories(ctx, name, opts)
	if err != nil {
		robo.Log.WarnContext(ctx, "couldn't search repositories", slog.String("query", name), slog.Any("err", err))
		return message.Text("Something went wrong while searching GitHub.")
	}
	e := &message.Embed{Color: blue}
	if r.GetTotal() == 0 || len(r.Repositories) == 0 {
		e.Title = "Repository not found!"
		return message.Rich(e)
	}
	e.URL = "https://github.com/search?q=" + url.QueryEscape(name)
	if n == 1 {
		e.Title = "Name: " + name
	} else {
		e.Title = "Search results for " + name
	}
	for _, x := range r.Repositories[:min(n, len(r.Repositories))] {
		f := message.Field{Name: fmt.Sprintf("Repo: %s/%s", x.GetOwner().GetLogin(), x.GetName())}
		if n == 1 {
			f.Name = "Owner: " + x.GetOwner().GetLogin()
			e.URL = x.GetHTMLURL()
		}
		d := "No description available."
		if x.Description != nil {
			d = clip(x.GetDescription(), 50)
		}
		f.Value = fmt.Sprintf("**:star:%d/:fork_and_knife:%d\nDescription :** %s\nLink : %s\n", x.GetStargazersCount(), x.GetForksCount(), d, x.GetHTMLURL())
		e.Fields = append(e.Fields, f)
	}
	return message.Rich(e)
}

// GitHubIssue shows an issue.
//   - owner: Repository owner.
//   - repo: Repository name.
//   - number: Issue number.
func GitHubIssue(ctx context.Context, robo *Robot, call *Invocation) {
	owner, repo := call.Args["owner"], call.Args["repo"]
	n, err := strconv.Atoi(call.Args["number"])
	if err != nil {
		call.Reply(ctx, robo, message.Text("Invalid arguments."))
		return
	}
	is, _, err := robo.GitHub.Issues.Get(ctx, owner, repo, n)
	if err != nil {
		robo.Log.WarnContext(ctx, "couldn't get issue", slog.String("owner", owner), slog.String("repo", repo), slog.Int("number", n), slog.Any("err", err))
		call.Reply(ctx, robo, message.Text("Invalid Repository name or owner name or issue number!"))
		return
	}
	assignee := "None"
	if is.Assignee != nil {
		assignee = is.GetAssignee().GetLogin()
	}
	e := &message.Embed{
		Title:       is.GetTitle(),
		URL:         is.GetHTMLURL(),
		Description: is.GetBody(),
		Footer:      fmt.Sprintf("Issue opened by %s and is assigned to %s", is.GetUser().GetLogin(), assignee),
		Color:       blue,
	}
	// Discord rejects long embeds.
	if len(e.Title)+len(e.Description)+len(e.Footer) > 2000 {
		e.Description = clip(e.Description, 1900)
	}
	call.Reply(ctx, robo, message.Rich(e))
}

// GitHubLabels lists the labels of a repository.
//   - owner: Repository owner.
//   - repo: Repository name.
func GitHubLabels(ctx context.Context, robo *Robot, call *Invocation) {
	owner, repo := call.Args["owner"], call.Args["repo"]
	labels, _, err := robo.GitHub.Issues.ListLabels(ctx, owner, repo, &github.ListOptions{PerPage: 100})
	if err != nil {
		robo.Log.WarnContext(ctx, "couldn't list labels", slog.String("owner", owner), slog.String("repo", repo), slog.Any("err", err))
		call.Reply(ctx, robo, message.Text("Invalid Repository name or owner name!"))
		return
	}
	var desc strings.Builder
	for i, l := range labels {
		fmt.Fprintf(&desc, "%d. **%s**\n", i+1, l.GetName())
	}
	call.Reply(ctx, robo, message.Rich(&message.Embed{
		Title:       "Labels",
		Description: desc.String(),
		Color:       blue,
	}))
}

// clip shortens s to at most n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
