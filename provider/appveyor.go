package provider

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/go-json-experiment/json"

	"github.com/ChomusukeBot/Chomusuke/repo"
)

// AppVeyor returns the AppVeyor CI provider.
func AppVeyor() *repo.Provider {
	return &repo.Provider{
		Name:    "appveyor",
		Title:   "AppVeyor",
		Scheme:  "Bearer",
		Headers: headers(),
		Endpoints: repo.Endpoints{
			Image:     "https://upload.wikimedia.org/wikipedia/commons/thumb/b/bc/Appveyor_logo.svg/600px-Appveyor_logo.svg.png",
			RepoURL:   "https://ci.appveyor.com/project/{0}",
			BuildURL:  "https://ci.appveyor.com/project/{0}/builds/{1}",
			BuildsURL: "https://ci.appveyor.com/project/{0}/history",
			Validity:  "https://ci.appveyor.com/api/users",
			Repos:     "https://ci.appveyor.com/api/projects",
			Trigger:   "https://ci.appveyor.com/api/builds",
			Builds:    "https://ci.appveyor.com/api/projects/{0}/{1}/history?recordsNumber=10",
		},
		UserToken: true,
		Body:      repo.Form,
		Color:     oxideBlue,
		Formatter: appveyor{},
	}
}

type appveyor struct{}

func (appveyor) FormatRepositories(raw []byte) (repo.Listing, error) {
	var projects []struct {
		RepositoryName   string `json:"repositoryName"`
		RepositoryBranch string `json:"repositoryBranch"`
	}
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("couldn't decode AppVeyor projects: %w", err)
	}
	l := make(repo.Listing, 0, len(projects))
	for _, p := range projects {
		l = append(l, repo.Entry{Name: p.RepositoryName, Descriptor: p.RepositoryBranch})
	}
	return l, nil
}

func (appveyor) FormatBuilds(raw []byte, slug string) (iter.Seq[repo.Build], error) {
	var history struct {
		Builds []struct {
			Version string `json:"version"`
			BuildID int64  `json:"buildId"`
			Status  string `json:"status"`
		} `json:"builds"`
	}
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("couldn't decode AppVeyor history of %s: %w", slug, err)
	}
	f := func(yield func(repo.Build) bool) {
		for _, b := range history.Builds {
			r := repo.Build{Label: b.Version, ID: strconv.FormatInt(b.BuildID, 10), State: b.Status}
			if !yield(r) {
				return
			}
		}
	}
	return f, nil
}
