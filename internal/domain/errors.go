package domain

import "errors"

// ValidationError is a rejected input, reported back to the caller field by field.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Booking guards, checked in this order.
var (
	ErrMissingService  = &ValidationError{Field: "services", Code: "missing_service", Message: "please select a service"}
	ErrMissingLocation = &ValidationError{Field: "location_id", Code: "missing_location", Message: "please select a location"}
	ErrMissingDate     = &ValidationError{Field: "booking_date", Code: "missing_date", Message: "please select a date"}
	ErrMissingTime     = &ValidationError{Field: "start_time", Code: "missing_time", Message: "please select a time"}
)

var (
	ErrMissingVehicle       = &ValidationError{Field: "vehicle.registration", Code: "missing_vehicle", Message: "please enter a vehicle registration"}
	ErrMissingCustomer      = &ValidationError{Field: "customer_id", Code: "missing_customer", Message: "please select a customer"}
	ErrInvalidDate          = &ValidationError{Field: "booking_date", Code: "invalid_date", Message: "booking date must be YYYY-MM-DD"}
	ErrInvalidTime          = &ValidationError{Field: "start_time", Code: "invalid_time", Message: "start time must look like 9:00 AM or 13:00"}
	ErrInvalidSlot          = &ValidationError{Field: "start_time", Code: "invalid_slot", Message: "selected services do not fit on the booking date"}
	ErrServiceNotFound      = &ValidationError{Field: "services", Code: "service_not_found", Message: "selected service does not exist"}
	ErrInvalidPaymentMethod = &ValidationError{Field: "payment_method", Code: "invalid_payment_method", Message: "payment method must be Cash or Card"}
	ErrInvalidQuantity      = &ValidationError{Field: "quantity", Code: "invalid_quantity", Message: "quantity must be greater than zero"}
	ErrDiscountNotFound     = &ValidationError{Field: "discount_id", Code: "discount_not_found", Message: "discount does not exist"}
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrCustomerNotFound   = errors.New("customer not found")
	ErrStaffNotFound      = errors.New("staff member not found")
	ErrItemNotFound       = errors.New("inventory item not found")
	ErrLocationNotFound   = errors.New("location not found")
	ErrInvalidTransition  = errors.New("booking status does not allow this operation")
	ErrAlreadyCancelled   = errors.New("booking is already cancelled")
	ErrForbidden          = errors.New("not allowed to act on this booking")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
