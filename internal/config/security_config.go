// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic        SecurityLevel = iota // No authentication
	SecurityAuthenticated                      // Any valid access token
	SecurityStaff                              // Admin or Manager
	SecurityManager                            // Manager only
)

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"Health":        SecurityPublic,
	"CustomerLogin": SecurityPublic,
	"StaffLogin":    SecurityPublic,
	"ListServices":  SecurityPublic,
	"ListLocations": SecurityPublic,

	// Any signed-in caller; ownership is checked by the booking service
	"LookupVehicle":  SecurityAuthenticated,
	"CreateBooking":  SecurityAuthenticated,
	"GetBooking":     SecurityAuthenticated,
	"ConfirmBooking": SecurityAuthenticated,
	"CancelBooking":  SecurityAuthenticated,
	"ListMyBookings": SecurityAuthenticated,

	// Staff
	"ListLocationBookings": SecurityStaff,
	"ListInventory":        SecurityStaff,

	// Manager
	"RestockItem": SecurityManager,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityManager
}
