package runtime

import "declmap/internal/model"

// Class binds a resolved contract to its generated method set. Classes are
// stateless beyond the contract and the identity generator; instances are
// created through New or NewKwargs.
type Class struct {
	contract *model.ResolvedClassContract
	identity IdentityGenerator
	postInit func(*model.Instance) error
}

// Option configures a Class at bind time.
type Option func(*Class)

// WithIdentityGenerator overrides the identity token source. Tests use a
// FixedGenerator for deterministic identity representations.
func WithIdentityGenerator(g IdentityGenerator) Option {
	return func(c *Class) { c.identity = g }
}

// WithPostInit installs a hook that runs after the generated initializer
// has assigned all attribute values.
func WithPostInit(f func(*model.Instance) error) Option {
	return func(c *Class) { c.postInit = f }
}

// Bind wraps a resolved contract in its generated method set.
func Bind(contract *model.ResolvedClassContract, opts ...Option) *Class {
	c := &Class{
		contract: contract,
		identity: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contract returns the bound contract.
func (c *Class) Contract() *model.ResolvedClassContract {
	return c.contract
}

// Name returns the class's registry name.
func (c *Class) Name() string {
	return c.contract.ClassName
}
