package models

// Channel roles recognized by the admin configuration.
const (
	RoleDM            = "dm"
	RolePublish       = "publish"
	RoleNotifications = "notifications"
)

// Channels maps logical channel roles to channel names. Empty values
// mean the role is unconfigured.
type Channels struct {
	DM            string `yaml:"dm"`
	Publish       string `yaml:"publish"`
	Notifications string `yaml:"notifications"`
}

// ByRole returns the channel name bound to a logical role.
func (c Channels) ByRole(role string) (string, bool) {
	switch role {
	case RoleDM:
		return c.DM, true
	case RolePublish:
		return c.Publish, true
	case RoleNotifications:
		return c.Notifications, true
	}
	return "", false
}

// SetRole binds a channel name to a logical role.
func (c *Channels) SetRole(role, name string) bool {
	switch role {
	case RoleDM:
		c.DM = name
	case RolePublish:
		c.Publish = name
	case RoleNotifications:
		c.Notifications = name
	default:
		return false
	}
	return true
}

// Campaign holds free-form campaign metadata, independent of the
// decision lifecycle.
type Campaign struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Theme       []string `yaml:"theme"`
}

// AdminConfig is the process-wide admin document: channel role bindings
// plus campaign metadata. Seeded from a template on first run and
// mutated by admin commands; never deleted.
type AdminConfig struct {
	Channels Channels `yaml:"channels"`
	Campaign Campaign `yaml:"campaign"`
}
