package provider

import (
	"fmt"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/repo"
)

// GitHub returns the GitHub repository provider. GitHub has no builds.
func GitHub() *repo.Provider {
	return &repo.Provider{
		Name:    "github",
		Title:   "GitHub",
		Scheme:  "token",
		Headers: headers("Accept", "application/vnd.github+json"),
		Endpoints: repo.Endpoints{
			Image:    "https://github.githubassets.com/images/modules/logos_page/GitHub-Mark.png",
			RepoURL:  "https://github.com/{0}",
			Validity: "https://api.github.com/user",
			Repos:    "https://api.github.com/user/repos?per_page=100",
		},
		UserToken: true,
		Body:      repo.JSON,
		Color:     oxideBlue,
		Formatter: github{},
	}
}

type github struct{}

func (github) FormatRepositories(raw []byte) (repo.Listing, error) {
	var repos []struct {
		FullName string  `json:"full_name"`
		Language *string `json:"language"`
	}
	if err := json.Unmarshal(raw, &repos); err != nil {
		return nil, fmt.Errorf("couldn't decode GitHub repositories: %w", err)
	}
	l := make(repo.Listing, 0, len(repos))
	for _, r := range repos {
		lang := "Unknown"
		if r.Language != nil {
			lang = *r.Language
		}
		l = append(l, repo.Entry{Name: r.FullName, Descriptor: lang})
	}
	return l, nil
}
