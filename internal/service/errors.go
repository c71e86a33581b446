package service

import "errors"

var (
	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidTripCode is returned when a trip has no trip code.
	ErrInvalidTripCode = errors.New("trip code is required")

	// ErrInvalidVehicleNumber is returned when a trip has no vehicle number.
	ErrInvalidVehicleNumber = errors.New("vehicle number is required")

	// ErrInvalidLoadingDate is returned when a trip has no loading date.
	ErrInvalidLoadingDate = errors.New("loading date is required")

	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrUnloadingBeforeLoading is returned when the unloading date precedes the loading date.
	ErrUnloadingBeforeLoading = errors.New("unloading date is before loading date")

	// ErrNegativeAmount is returned when a trip amount other than profit is negative.
	ErrNegativeAmount = errors.New("amount must not be negative")

	// ErrInvalidStatus is returned for status strings outside the known values.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPODURL is returned when a POD upload carries no URLs.
	ErrInvalidPODURL = errors.New("at least one pod url is required")

	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPaymentAmount is returned when payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentMode is returned when payment mode is not one of the known modes.
	ErrInvalidPaymentMode = errors.New("invalid payment mode")

	// ErrInvalidTransactionType is returned when transaction type is neither Credit nor Debit.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidTransactionDate is returned when a payment has no transaction date.
	ErrInvalidTransactionDate = errors.New("transaction date is required")

	// ErrInvalidExpenseID is returned when expense ID is empty.
	ErrInvalidExpenseID = errors.New("invalid expense id")

	// ErrInvalidExpense is returned when an expense misses its date or category,
	// or has a non-positive amount.
	ErrInvalidExpense = errors.New("invalid expense")

	// ErrInvalidMasterKind is returned for an unknown master directory.
	ErrInvalidMasterKind = errors.New("invalid master kind")

	// ErrInvalidDeviceToken is returned when a device registration has no token.
	ErrInvalidDeviceToken = errors.New("invalid device token")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when a new password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidEmail is returned when an email address is empty or malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidToken is returned when an access token cannot be verified.
	ErrInvalidToken = errors.New("invalid token")

	// ErrSnapshotNotReady is returned before the first dashboard snapshot is computed.
	ErrSnapshotNotReady = errors.New("dashboard snapshot not ready")
)
