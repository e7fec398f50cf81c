package registry

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
)

// Method pairs a registered name with its handler.
type Method struct {
	Name    string
	Handler jsonrpc.Handler
}

// Provider contributes a set of methods under its own names. The builtin
// packs implement it, as does anything returned by Service.
type Provider interface {
	Methods() []Method
}

/*
Registry is the method table a dispatcher resolves against. It is
populated during startup and must not be mutated once serving begins;
that contract is what lets Lookup run lock-free on the hot path.
*/
type Registry struct {
	methods map[string]jsonrpc.Handler
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{methods: make(map[string]jsonrpc.Handler)}
}

/*
Register binds a handler under a method name and returns the Registry for
chaining. Registering the same name twice keeps the newest handler, which
lets an application override a builtin deliberately; the replacement is
logged so an accidental collision does not pass silently.
*/
func (registry *Registry) Register(method string, handler jsonrpc.Handler) *Registry {
	if _, exists := registry.methods[method]; exists {
		log.Warn("method replaced", "method", method)
	}

	registry.methods[method] = handler
	return registry
}

// RegisterProvider registers every method a Provider exposes.
func (registry *Registry) RegisterProvider(provider Provider) *Registry {
	for _, method := range provider.Methods() {
		registry.Register(method.Name, method.Handler)
	}

	return registry
}

// RegisterFunc adapts a typed function through Func and registers it
// under name. It shares Func's panics on unusable functions.
func (registry *Registry) RegisterFunc(name string, fn any, params ...string) *Registry {
	return registry.Register(name, Func(fn, params...))
}

// RegisterService scans recv through Service and registers the
// resulting method pack.
func (registry *Registry) RegisterService(recv any) error {
	pack, err := Service(recv)
	if err != nil {
		return err
	}

	registry.RegisterProvider(pack)
	return nil
}

// Lookup implements jsonrpc.Resolver.
func (registry *Registry) Lookup(method string) (jsonrpc.Handler, bool) {
	handler, ok := registry.methods[method]
	return handler, ok
}

// Names returns every registered method name, sorted, for listings and
// the service descriptor.
func (registry *Registry) Names() []string {
	names := make([]string, 0, len(registry.methods))

	for name := range registry.methods {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
