// Package health runs reachability checks against the endpoints and
// stores a run depends on.
package health

import (
	"context"
	"sort"
	"time"
)

// NewChecker creates a checker with no checks
func NewChecker() *Checker {
	return &Checker{
		checks:  make(map[string]CheckFunc),
		started: time.Now(),
		now:     time.Now,
	}
}

// Register adds a check under name, replacing any previous one
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names returns the registered check names, sorted
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every check in name order. The worst status wins.
func (c *Checker) Check(ctx context.Context) Response {
	c.mu.RLock()
	defer c.mu.RUnlock()

	response := Response{
		Status:    StatusHealthy,
		Timestamp: c.now(),
		Checks:    make(map[string]Check, len(c.checks)),
		Uptime:    c.now().Sub(c.started),
	}

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		start := c.now()
		check := c.checks[name](ctx)
		check.Name = name
		check.Duration = c.now().Sub(start)
		check.LastChecked = start
		if ctx.Err() != nil && check.Status == StatusHealthy {
			check.Status = StatusUnhealthy
			check.Message = ctx.Err().Error()
		}
		response.Checks[name] = check
		response.Status = worst(response.Status, check.Status)
	}

	return response
}

func worst(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
