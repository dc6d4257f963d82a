package git

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// RepoInfo identifies the VCS state of an analysed directory.
type RepoInfo struct {
	Branch string
	Commit string
	Remote string
}

// ErrNotRepository is returned when no repository encloses the path.
var ErrNotRepository = errors.New("not a git repository")

// Inspect opens the repository enclosing dir and reads HEAD and the origin
// remote. An empty repository yields a zero RepoInfo without error.
func Inspect(dir string) (RepoInfo, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return RepoInfo{}, ErrNotRepository
		}
		return RepoInfo{}, fmt.Errorf("open repository: %w", err)
	}

	var info RepoInfo
	head, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// No commits yet.
	case err != nil:
		return RepoInfo{}, fmt.Errorf("read HEAD: %w", err)
	default:
		info.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
	}

	remote, err := repo.Remote("origin")
	if err == nil && len(remote.Config().URLs) > 0 {
		info.Remote = RedactURL(remote.Config().URLs[0])
	}
	return info, nil
}

// RedactURL strips credentials from an http(s) remote URL. SCP-style
// remotes are returned unchanged.
func RedactURL(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}
