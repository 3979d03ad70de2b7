package flashloan

import (
	"fmt"

	"github.com/ethereum-optimism/xchain-flashloan/system"
)

// Route is a flash loan taken on Source, with liquidity borrowed from the pool on Destination.
type Route struct {
	Source      system.Chain
	Destination system.Chain
}

func (r Route) String() string {
	return r.Source.Name() + "->" + r.Destination.Name()
}

// Description names the route the way the test cases read.
func (r Route) Description() string {
	return fmt.Sprintf("loan tokens from %s to %s", r.Destination.ID(), r.Source.ID())
}

// Routes returns every ordered pair of distinct chains, in chain order.
func Routes(chains []system.Chain) []Route {
	var routes []Route
	for _, src := range chains {
		for _, dst := range chains {
			if src.Name() == dst.Name() {
				continue
			}
			routes = append(routes, Route{Source: src, Destination: dst})
		}
	}
	return routes
}

// FindRoute returns the route between two named chains.
func FindRoute(sys *system.System, source, destination string) (Route, error) {
	if source == destination {
		return Route{}, fmt.Errorf("source and destination are both %q", source)
	}
	src, err := sys.Chain(source)
	if err != nil {
		return Route{}, err
	}
	dst, err := sys.Chain(destination)
	if err != nil {
		return Route{}, err
	}
	return Route{Source: src, Destination: dst}, nil
}
