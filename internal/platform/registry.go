package platform

import (
	"fmt"

	"github.com/postlinehq/postline/internal/models"
)

// Constructor builds an adapter bound to one user's credentials.
type Constructor func(creds *Credentials) Publisher

// Registry maps a platform tag to its adapter constructor. Adding a platform
// means one adapter implementation plus one Register call.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry(bioServiceURL string) *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register(models.PlatformTwitter, func(c *Credentials) Publisher { return NewTwitterAdapter(c) })
	r.Register(models.PlatformLinkedin, func(c *Credentials) Publisher { return NewLinkedinAdapter(c) })
	r.Register(models.PlatformInstagram, func(c *Credentials) Publisher { return NewInstagramAdapter(c) })
	r.Register(models.PlatformFacebook, func(c *Credentials) Publisher { return NewFacebookAdapter(c) })
	r.Register(models.PlatformTiktok, func(c *Credentials) Publisher { return NewTiktokAdapter(c) })
	r.Register(models.PlatformEmail, func(c *Credentials) Publisher { return NewEmailAdapter(c) })
	r.Register(models.PlatformLinkInBio, func(c *Credentials) Publisher { return NewLinkInBioAdapter(c, bioServiceURL) })
	return r
}

func (r *Registry) Register(platform string, c Constructor) {
	r.constructors[platform] = c
}

// Adapter resolves the adapter for a platform tag. An unregistered tag is a
// configuration error, distinct from a registered-but-unsupported platform
// whose adapter fails every publish (tiktok).
func (r *Registry) Adapter(platform string, creds *Credentials) (Publisher, error) {
	c, ok := r.constructors[platform]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %s", platform)
	}
	return c(creds), nil
}
