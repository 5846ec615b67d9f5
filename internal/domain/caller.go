package domain

import "slices"

// CapabilityAdmin даёт право на все операции интеграции с поставщиками.
const CapabilityAdmin = "dropship.admin"

// Caller — идентичность вызывающего, полученная из внешней системы аутентификации.
type Caller struct {
	Subject      string
	Capabilities []string
}

func (c Caller) HasCapability(capability string) bool {
	return slices.Contains(c.Capabilities, capability)
}

func (c Caller) IsAdmin() bool {
	return c.HasCapability(CapabilityAdmin)
}
