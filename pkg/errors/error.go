package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// ErrInsufficientFunds represents a rejected order creation because the
	// user's available balance could not cover the reservation.
	ErrInsufficientFunds ErrorCode = "insufficient_funds"
	// ErrOrderNotFound represents a lookup or cancellation referencing an
	// order that is no longer active.
	ErrOrderNotFound ErrorCode = "order_not_found"

	// ErrOrderIndexCorrupted represents an order present in one registry
	// index but absent in another. Integrity fault.
	ErrOrderIndexCorrupted ErrorCode = "order_index_corrupted"
	// ErrUnfreezeExceedsFrozen represents an unfreeze larger than the frozen
	// balance. Integrity fault.
	ErrUnfreezeExceedsFrozen ErrorCode = "unfreeze_exceeds_frozen"
	// ErrTransferSourceInsufficient represents a transfer whose source
	// sub-balance cannot cover the amount. Integrity fault.
	ErrTransferSourceInsufficient ErrorCode = "transfer_source_insufficient"
	// ErrInvalidDirection represents a corrupted direction value on a
	// command or order. Integrity fault.
	ErrInvalidDirection ErrorCode = "invalid_direction"
	// ErrInvalidTransferKind represents a corrupted transfer kind. Integrity fault.
	ErrInvalidTransferKind ErrorCode = "invalid_transfer_kind"
	// ErrSequenceGap represents a gap or duplicate in the sequenced command
	// stream. Integrity fault.
	ErrSequenceGap ErrorCode = "sequence_gap"
	// ErrInvalidCommand represents a command payload that fails validation.
	ErrInvalidCommand ErrorCode = "invalid_command"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
)

// IntegrityFault reports whether the error carries one of the codes that
// indicate engine/ledger divergence rather than an expected business
// rejection. Processing must stop on these.
func IntegrityFault(err error) bool {
	details, ok := err.(*ErrorDetails)
	if !ok {
		return false
	}
	switch ErrorCode(details.Code) {
	case ErrOrderIndexCorrupted,
		ErrUnfreezeExceedsFrozen,
		ErrTransferSourceInsufficient,
		ErrInvalidDirection,
		ErrInvalidTransferKind,
		ErrSequenceGap:
		return true
	}
	return false
}
