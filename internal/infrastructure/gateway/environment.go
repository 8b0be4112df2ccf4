package gateway

// ConfigEnvironmentChecker reports site-level conditions from configuration.
// A staging site forces every subscription to manual renewal so duplicated
// data never triggers live charges.
type ConfigEnvironmentChecker struct {
	staging bool
}

func NewConfigEnvironmentChecker(staging bool) *ConfigEnvironmentChecker {
	return &ConfigEnvironmentChecker{staging: staging}
}

func (c *ConfigEnvironmentChecker) IsStagingSite() bool {
	return c.staging
}
