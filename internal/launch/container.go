package launch

import (
	"fmt"
	"log/slog"
)

// Failure is an agent that could not be built or failed while running.
type Failure struct {
	Agent string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("launch agent %s: %v", f.Agent, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

type namedAgent struct {
	name string
	Agent
}

// Container runs the launch agents of one container. Failures, panics
// included, are logged and collected; they never reach the caller.
type Container struct {
	src      Source
	logger   *slog.Logger
	agents   []namedAgent
	failures []Failure
}

// NewContainer builds the agents named in names, in order, from factories.
func NewContainer(src Source, factories *Factories, names []string, logger *slog.Logger) *Container {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{src: src, logger: logger}

	for _, name := range names {
		factory, ok := factories.Lookup(name)
		if !ok {
			c.fail(name, ErrUnknownAgent)
			continue
		}

		var agent Agent
		err := c.guard(name, func() error {
			var err error
			agent, err = factory(src, logger)

			return err
		})
		if err != nil {
			c.fail(name, err)
			continue
		}

		if agent != nil {
			c.agents = append(c.agents, namedAgent{name: name, Agent: agent})
		}
	}

	return c
}

// URI returns the container URI.
func (c *Container) URI() string {
	return c.src.URI
}

// Agents returns the names of the agents that were built.
func (c *Container) Agents() []string {
	out := make([]string, 0, len(c.agents))
	for _, a := range c.agents {
		out = append(out, a.name)
	}

	return out
}

// Prepare runs every agent against reg.
func (c *Container) Prepare(reg *Registry) {
	for _, a := range c.agents {
		if err := c.guard(a.name, func() error { a.Prepare(reg); return nil }); err != nil {
			c.fail(a.name, err)
		}
	}
}

// LaunchTarget returns the first launch target an agent names, "" if none.
func (c *Container) LaunchTarget() string {
	for _, a := range c.agents {
		var target string
		if err := c.guard(a.name, func() error { target = a.LaunchTarget(); return nil }); err != nil {
			c.fail(a.name, err)
			continue
		}

		if target != "" {
			return target
		}
	}

	return ""
}

// Failures returns the failures collected so far.
func (c *Container) Failures() []Failure {
	return append([]Failure(nil), c.failures...)
}

func (c *Container) fail(name string, err error) {
	c.logger.Warn("launch agent failed", "agent", name, "container", c.src.URI, "error", err)
	c.failures = append(c.failures, Failure{Agent: name, Err: err})
}

func (c *Container) guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()

	return fn()
}
