package bootstrap

import (
	"sort"
	"sync"
)

var (
	routesMu sync.Mutex
	routes   = map[string]RouteModule{}
)

// RegisterRoutes adds a module to the autoload set, usually from an init
// function in the package that defines it. Create uses the autoload set,
// in lexical name order, when Routing names no modules. Registering the
// same name twice replaces the module.
func RegisterRoutes(name string, module RouteModule) {
	routesMu.Lock()
	defer routesMu.Unlock()
	routes[name] = module
}

// RegisteredRoutes lists the autoloaded module names in load order.
func RegisteredRoutes() []string {
	routesMu.Lock()
	defer routesMu.Unlock()

	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func registeredRoutes() []RouteModule {
	names := RegisteredRoutes()

	routesMu.Lock()
	defer routesMu.Unlock()
	out := make([]RouteModule, 0, len(names))
	for _, name := range names {
		if m := routes[name]; m != nil {
			out = append(out, m)
		}
	}
	return out
}
