package web

import (
	"context"
	"strings"
	"sync"
)

// robotsRule is one user-agent block's allow/disallow path prefixes.
type robotsRule struct {
	allow    []string
	disallow []string
}

// robotsTxt is a parsed robots.txt, cached per host by RobotsGuard.
type robotsTxt struct {
	rules map[string][]robotsRule
}

func parseRobotsTxt(content string) *robotsTxt {
	robots := &robotsTxt{rules: make(map[string][]robotsRule)}
	var currentAgent string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		directive := strings.ToLower(parts[0])
		value := parts[1]

		switch directive {
		case "user-agent:":
			currentAgent = strings.ToLower(value)
			robots.rules[currentAgent] = append(robots.rules[currentAgent], robotsRule{})
		case "allow:":
			if currentAgent != "" {
				appendToLastRule(robots.rules, currentAgent, value, false)
			}
		case "disallow:":
			if currentAgent != "" {
				appendToLastRule(robots.rules, currentAgent, value, true)
			}
		}
	}
	return robots
}

func appendToLastRule(rules map[string][]robotsRule, agent, value string, disallow bool) {
	set := rules[agent]
	if len(set) == 0 {
		set = append(set, robotsRule{})
	}
	last := &set[len(set)-1]
	if disallow {
		last.disallow = append(last.disallow, value)
	} else {
		last.allow = append(last.allow, value)
	}
	rules[agent] = set
}

func (r *robotsTxt) isAllowed(agent, path string) bool {
	if rules, ok := r.rules[strings.ToLower(agent)]; ok {
		if allowed, decided := evalRules(rules, path); decided {
			return allowed
		}
		return true
	}
	if rules, ok := r.rules["*"]; ok {
		if allowed, decided := evalRules(rules, path); decided {
			return allowed
		}
	}
	return true
}

func evalRules(rules []robotsRule, path string) (allowed bool, decided bool) {
	for _, rule := range rules {
		for _, disallow := range rule.disallow {
			if disallow != "" && strings.HasPrefix(path, disallow) {
				return false, true
			}
		}
		for _, allow := range rule.allow {
			if allow != "" && strings.HasPrefix(path, allow) {
				return true, true
			}
		}
	}
	return false, false
}

// RobotsGuard fetches and caches robots.txt per host and answers whether
// a URL may be crawled, fetching lazily per host instead of once up
// front, since the crawl frontier's hosts aren't known ahead of time.
type RobotsGuard struct {
	fetcher Fetcher
	agent   string

	mu    sync.Mutex
	cache map[string]*robotsTxt
}

// NewRobotsGuard returns a guard that fetches robots.txt through fetcher,
// identifying itself as agent when evaluating user-agent blocks.
func NewRobotsGuard(fetcher Fetcher, agent string) *RobotsGuard {
	return &RobotsGuard{fetcher: fetcher, agent: agent, cache: make(map[string]*robotsTxt)}
}

// Allowed reports whether path on scheme://host may be fetched. A failure
// to retrieve robots.txt (a fetch error or any status other than 200) is
// treated as permissive — the absence of a robots.txt does not forbid
// crawling.
func (g *RobotsGuard) Allowed(ctx context.Context, scheme, host, path string) bool {
	g.mu.Lock()
	robots, cached := g.cache[host]
	g.mu.Unlock()

	if !cached {
		robots = g.fetch(ctx, scheme, host)
		g.mu.Lock()
		g.cache[host] = robots
		g.mu.Unlock()
	}

	if robots == nil {
		return true
	}
	return robots.isAllowed(g.agent, path)
}

func (g *RobotsGuard) fetch(ctx context.Context, scheme, host string) *robotsTxt {
	res, err := g.fetcher.Fetch(ctx, scheme+"://"+host+"/robots.txt")
	if err != nil || res.StatusCode != 200 {
		return nil
	}
	return parseRobotsTxt(res.Body)
}
