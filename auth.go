package castgrab2

import "fmt"

// AuthProvider answers a device authenticity challenge exchanged over the
// tp.deviceauth namespace. No implementation ships by default — the
// original left this as a bare request/response relay with no signature
// generation of its own, so DeviceAuth only proceeds once a caller
// registers one.
type AuthProvider interface {
	Name() string
	Respond(challenge []byte) (response []byte, err error)
}

var authProviders = map[string]AuthProvider{}

// RegisterAuthProvider makes a provider available to session.DeviceAuth by
// name, refusing a duplicate registration the same way the module command
// registry refuses a duplicate scan name.
func RegisterAuthProvider(p AuthProvider) {
	name := p.Name()
	if _, exists := authProviders[name]; exists {
		panic(fmt.Sprintf("castgrab2: auth provider %q already registered", name))
	}
	authProviders[name] = p
}

// LookupAuthProvider retrieves a previously registered provider.
func LookupAuthProvider(name string) (AuthProvider, bool) {
	p, ok := authProviders[name]
	return p, ok
}
