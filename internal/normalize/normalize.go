// Package normalize canonicalizes repository and homepage URLs into a stable
// GitHub repository identity used to match packages across ecosystems.
package normalize

import (
	"regexp"
	"strings"
)

// Key is a canonical repository identity of the form github.com/{owner}/{repo}.
// The zero value means "absent".
type Key string

const host = "github.com"

var (
	repoPathPattern = regexp.MustCompile(`github\.com[:/]([^/]+/[^/\s]+)`)
	pathTerminators = "\t\n\v\f\r #?"
)

var protocolRewrites = []struct{ from, to string }{
	{"git+https://", "https://"},
	{"git+ssh://", "ssh://"},
	{"git://", "https://"},
}

// IsZero reports whether k is absent.
func (k Key) IsZero() bool { return k == "" }

func (k Key) String() string { return string(k) }

// OwnerRepo splits k into its owner and repository names.
func (k Key) OwnerRepo() (owner, repo string, ok bool) {
	path, found := strings.CutPrefix(string(k), host+"/")
	if !found {
		return "", "", false
	}
	owner, repo, ok = strings.Cut(path, "/")
	return owner, repo, ok && owner != "" && repo != ""
}

// URL normalizes a single repository or homepage URL.
//
// Accepted forms include https://, http://, ssh://, git://, git+https://,
// git+ssh:// and scp-like git@github.com:owner/repo. Anything that does not
// reference github.com, or does not carry an owner/repo pair, yields "".
// Normalizing an already normalized key returns the key unchanged.
func URL(raw string) Key {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" || !strings.Contains(u, host) {
		return ""
	}

	u = strings.TrimSuffix(u, ".git")
	u = strings.TrimSuffix(u, "/")
	for _, r := range protocolRewrites {
		u = strings.ReplaceAll(u, r.from, r.to)
	}

	m := repoPathPattern.FindStringSubmatch(u)
	if m == nil {
		return ""
	}

	p := m[1]
	if i := strings.IndexAny(p, pathTerminators); i >= 0 {
		p = p[:i]
	}
	p = trimRepoSuffixes(p)

	owner, repo, ok := strings.Cut(p, "/")
	if !ok || owner == "" || repo == "" {
		return ""
	}
	return Key(host + "/" + p)
}

// trimRepoSuffixes strips trailing ".git" and "/" until neither remains, so
// that a produced key is a fixed point of URL.
func trimRepoSuffixes(p string) string {
	for {
		next := strings.TrimRight(strings.TrimSuffix(p, ".git"), "/")
		if next == p {
			return p
		}
		p = next
	}
}

// WithFallback normalizes the repository URL and falls back to the homepage
// URL only when the repository URL does not yield a key.
func WithFallback(repositoryURL, homepageURL string) Key {
	if k := URL(repositoryURL); !k.IsZero() {
		return k
	}
	return URL(homepageURL)
}
